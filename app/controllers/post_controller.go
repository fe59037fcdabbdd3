package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"feedgram/app/media"
	"feedgram/app/models"
	"feedgram/app/services"
	"feedgram/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// defaultMaxMemory is what ParseMultipartForm keeps in memory before
// spilling uploads to temporary files.
const defaultMaxMemory = 32 << 20

// PostController handles HTTP requests for feed posts, likes and tags
type PostController struct {
	base
	postService *services.PostService
	media       *media.Store
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, mediaStore *media.Store, renderer *views.Renderer, logger *zap.Logger) *PostController {
	return &PostController{
		base:        base{views: renderer, logger: logger},
		postService: postService,
		media:       mediaStore,
	}
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, "new", views.Page{
		Title:   "New post",
		Content: postForm{Action: "/write-post", Submit: "Share"},
	})
}

// Create handles the post form. Invalid submissions are sent to the signup page.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	in, err := pc.readPostForm(r)
	if err == nil {
		var post *models.Post
		post, err = pc.postService.CreatePost(currentUser(r), in)
		if err == nil {
			if wantsJSON(r) {
				pc.sendJSON(w, http.StatusCreated, serializePost(post, currentUser(r), nil, pc.postService.StrictOwnership()))
				return
			}
			pc.redirect(w, r, "/feed")
			return
		}
		pc.discardMedia(in.Media)
	}

	if !errors.Is(err, services.ErrInvalid) {
		pc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		pc.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	pc.redirect(w, r, "/signup")
}

// Edit displays the form pre-filled from an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, serializePost(post, currentUser(r), nil, pc.postService.StrictOwnership()))
		return
	}
	pc.render(w, r, http.StatusOK, "edit", views.Page{
		Title:   "Edit post",
		Content: editForm(id, post.Caption, post.TagString(), post.Media),
	})
}

// Update overwrites a post from the edit form and returns to it in the feed.
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	in, err := pc.readPostForm(r)
	var post *models.Post
	if err == nil {
		post, err = pc.postService.EditPost(id, currentUser(r), in)
		if err != nil {
			pc.discardMedia(in.Media)
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalid) && !wantsJSON(r):
		pc.render(w, r, http.StatusBadRequest, "edit", views.Page{
			Title:   "Edit post",
			Error:   err.Error(),
			Content: editForm(id, in.Caption, r.FormValue("tags"), nil),
		})
		return
	default:
		pc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, serializePost(post, currentUser(r), nil, pc.postService.StrictOwnership()))
		return
	}
	pc.redirect(w, r, fmt.Sprintf("/feed#post-%d", post.ID))
}

// Delete handles deleting a post. Any method is accepted.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := pc.postService.DeletePost(id, currentUser(r)); err != nil {
		pc.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	pc.redirect(w, r, "/feed")
}

// Feed lists every post, newest first
func (pc *PostController) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.Feed()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.showPosts(w, r, http.StatusOK, "Feed", posts, FeedContent{})
}

// Search lists posts whose caption or author name contains q
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	posts, err := pc.postService.Search(query)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.showPosts(w, r, http.StatusOK, "Search", posts, FeedContent{Query: query, Searching: true})
}

// ByTag lists the posts carrying the tag in the path
func (pc *PostController) ByTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	posts, err := pc.postService.ByTag(tag)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.showPosts(w, r, http.StatusOK, "#"+tag, posts, FeedContent{Tag: tag})
}

// TagCloud lists every tag with its post count
func (pc *PostController) TagCloud(w http.ResponseWriter, r *http.Request) {
	tags, err := pc.postService.Tags()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		pc.sendJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
		return
	}
	pc.render(w, r, http.StatusOK, "tags", views.Page{Title: "Tags", Content: tags})
}

// Like toggles the caller's like. Only POST gets a response body.
func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := pathID(r, "postId")
	if err != nil {
		pc.sendJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid post ID"})
		return
	}

	result, err := pc.postService.ToggleLike(id, currentUser(r))
	if err != nil {
		status, message := pc.classify(r, err)
		pc.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	pc.sendJSON(w, http.StatusOK, result)
}

// showPosts renders posts with the feed template, or as JSON.
func (pc *PostController) showPosts(w http.ResponseWriter, r *http.Request, status int, title string, posts []*models.Post, content FeedContent) {
	user := currentUser(r)
	liked, err := pc.postService.LikedBy(user)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	content.Posts = serializePosts(posts, user, liked, pc.postService.StrictOwnership())

	if wantsJSON(r) {
		pc.sendJSON(w, status, content)
		return
	}
	pc.render(w, r, status, "feed", views.Page{Title: title, Content: content})
}

// readPostForm parses a multipart or urlencoded post form and stores any
// uploaded media. Problems with the submission are ErrInvalid.
func (pc *PostController) readPostForm(r *http.Request) (services.PostInput, error) {
	err := r.ParseMultipartForm(defaultMaxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return services.PostInput{}, fmt.Errorf("%w: %v", services.ErrInvalid, err)
	}

	in := services.PostInput{
		Caption: r.FormValue("caption"),
		Tags:    models.ParseTags(r.FormValue("tags")),
	}
	if r.MultipartForm != nil && len(r.MultipartForm.File["media"]) > 0 {
		urls, err := pc.media.SaveAll(r.MultipartForm.File["media"])
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedType) || errors.Is(err, media.ErrTooLarge) {
				return in, fmt.Errorf("%w: %v", services.ErrInvalid, err)
			}
			return in, err
		}
		in.Media = urls
	}
	return in, nil
}

func (pc *PostController) discardMedia(urls []string) {
	for _, url := range urls {
		if err := pc.media.Remove(url); err != nil {
			pc.logger.Warn("failed to remove media", zap.String("url", url), zap.Error(err))
		}
	}
}

func editForm(id int, caption, tags string, media []string) postForm {
	return postForm{
		Action:  fmt.Sprintf("/edit-post/%d", id),
		Caption: caption,
		Tags:    tags,
		Media:   media,
		Submit:  "Save",
	}
}
