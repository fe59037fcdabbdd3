package models

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	tagPattern      = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// User is an account that can author posts, comments and likes.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,min=3,max=30,username"`
	PasswordHash string    `json:"password_hash" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a captioned entry in the feed with optional media and tags.
// LikeCount and Comments are derived when a post is loaded and never stored.
type Post struct {
	ID         int        `json:"id" validate:"gte=0"`
	Caption    string     `json:"caption" validate:"required,max=2200"`
	AuthorID   int        `json:"author_id" validate:"gt=0"`
	AuthorName string     `json:"author_name" validate:"required"`
	Tags       []string   `json:"tags" validate:"max=30,dive,tag"`
	Media      []string   `json:"media" validate:"max=10,dive,required"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LikeCount  int        `json:"-" validate:"-"`
	Comments   []*Comment `json:"-" validate:"-"`
}

// Comment is a short text attached to a post.
type Comment struct {
	ID         int       `json:"id" validate:"gte=0"`
	PostID     int       `json:"post_id" validate:"gt=0"`
	AuthorID   int       `json:"author_id" validate:"gt=0"`
	AuthorName string    `json:"author_name" validate:"required"`
	Content    string    `json:"content" validate:"required,max=500"`
	CreatedAt  time.Time `json:"created_at"`
}

// TagCount is one entry of the tag cloud.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const (
	LikeResultLike    = "like"
	LikeResultDislike = "dislike"
)

// LikeResult is the outcome of toggling a like.
type LikeResult struct {
	Result    string `json:"result"`
	LikeCount int    `json:"like_count"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("tag", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return utf8.RuneCountInString(s) <= 50 && tagPattern.MatchString(s)
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}
