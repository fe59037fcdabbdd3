package controllers

import (
	"time"

	"feedgram/app/models"
)

type AuthorView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type CommentView struct {
	ID        int        `json:"id"`
	PostID    int        `json:"post_id"`
	Author    AuthorView `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Mine      bool       `json:"-"`
}

// PostView is the display form of a post, used by templates and the JSON API.
type PostView struct {
	ID        int           `json:"id"`
	Caption   string        `json:"caption"`
	Author    AuthorView    `json:"author"`
	Tags      []string      `json:"tags"`
	Media     []string      `json:"media"`
	LikeCount int           `json:"like_count"`
	Liked     bool          `json:"liked"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	CanEdit   bool          `json:"-"`
}

// FeedContent backs the feed template, which also renders search and tag results.
type FeedContent struct {
	Posts     []PostView `json:"posts"`
	Tag       string     `json:"tag,omitempty"`
	Query     string     `json:"query,omitempty"`
	Searching bool       `json:"-"`
}

type postForm struct {
	Action  string
	Caption string
	Tags    string
	Media   []string
	Submit  string
}

func serializeComment(c *models.Comment, viewer *models.User) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    AuthorView{ID: c.AuthorID, Username: c.AuthorName},
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Mine:      c.IsAuthoredBy(viewer),
	}
}

func serializePost(p *models.Post, viewer *models.User, liked map[int]bool, strict bool) PostView {
	view := PostView{
		ID:        p.ID,
		Caption:   p.Caption,
		Author:    AuthorView{ID: p.AuthorID, Username: p.AuthorName},
		Tags:      append([]string{}, p.Tags...),
		Media:     append([]string{}, p.Media...),
		LikeCount: p.LikeCount,
		Liked:     liked[p.ID],
		Comments:  make([]CommentView, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		CanEdit:   !strict || (viewer != nil && viewer.ID == p.AuthorID),
	}
	for _, c := range p.Comments {
		view.Comments = append(view.Comments, serializeComment(c, viewer))
	}
	return view
}

func serializePosts(posts []*models.Post, viewer *models.User, liked map[int]bool, strict bool) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, serializePost(p, viewer, liked, strict))
	}
	return views
}
