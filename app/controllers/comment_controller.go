package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"feedgram/app/services"
	"feedgram/app/views"

	"go.uber.org/zap"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	base
	commentService *services.CommentService
	postService    *services.PostService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, postService *services.PostService, renderer *views.Renderer, logger *zap.Logger) *CommentController {
	return &CommentController{
		base:           base{views: renderer, logger: logger},
		commentService: commentService,
		postService:    postService,
	}
}

// Create adds a comment to the post in the path. An invalid comment is
// dropped and the feed is shown again with an empty form.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		cc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		cc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := cc.commentService.CreateComment(postID, currentUser(r), r.FormValue("content"))
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalid) && !wantsJSON(r):
		cc.showFeed(w, r)
		return
	default:
		cc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		cc.sendJSON(w, http.StatusCreated, serializeComment(comment, currentUser(r)))
		return
	}
	cc.redirect(w, r, fmt.Sprintf("/feed#comment-%d", comment.ID))
}

// Delete removes a comment when the caller wrote it. Other callers are
// redirected all the same.
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		cc.sendError(w, r, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	deleted := true
	err = cc.commentService.DeleteComment(id, currentUser(r))
	if errors.Is(err, services.ErrForbidden) {
		deleted = false
		err = nil
	}
	if err != nil {
		cc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		cc.sendJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
		return
	}
	cc.redirect(w, r, "/feed")
}

func (cc *CommentController) showFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := cc.postService.Feed()
	if err != nil {
		cc.fail(w, r, err)
		return
	}
	user := currentUser(r)
	liked, err := cc.postService.LikedBy(user)
	if err != nil {
		cc.fail(w, r, err)
		return
	}
	cc.render(w, r, http.StatusOK, "feed", views.Page{
		Title:   "Feed",
		Content: FeedContent{Posts: serializePosts(posts, user, liked, cc.postService.StrictOwnership())},
	})
}
