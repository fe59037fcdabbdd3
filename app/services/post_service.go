package services

import (
	"fmt"
	"strings"
	"time"

	"feedgram/app/models"
	"feedgram/app/repositories"
)

// PostInput carries the user supplied fields of a post form.
type PostInput struct {
	Caption string
	Tags    []string
	Media   []string
}

// PostService handles business logic for feed posts
type PostService struct {
	postRepo        repositories.PostRepository
	commentRepo     repositories.CommentRepository
	strictOwnership bool
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

// SetStrictOwnership restricts edit and delete to the post author and stops
// edits from reassigning the author.
func (s *PostService) SetStrictOwnership(strict bool) {
	s.strictOwnership = strict
}

// StrictOwnership reports whether only authors may edit or delete posts.
func (s *PostService) StrictOwnership() bool {
	return s.strictOwnership
}

// CreatePost validates the input and stores a post owned by author.
func (s *PostService) CreatePost(author *models.User, in PostInput) (*models.Post, error) {
	post := &models.Post{
		Caption: strings.TrimSpace(in.Caption),
		Tags:    in.Tags,
		Media:   in.Media,
	}
	if err := post.SetAuthor(author); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	post.BeforeCreate()

	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid post: %v", ErrInvalid, err)
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.attachComments(post); err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost overwrites caption and tags of an existing post, and its media
// when new media was uploaded. The id and creation time are kept. Unless
// strict ownership is on, the editor becomes the author.
func (s *PostService) EditPost(id int, editor *models.User, in PostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if editor == nil {
		return nil, fmt.Errorf("%w: editor is required", ErrInvalid)
	}
	if s.strictOwnership && post.AuthorID != editor.ID {
		return nil, ErrForbidden
	}

	post.Caption = strings.TrimSpace(in.Caption)
	post.Tags = in.Tags
	if len(in.Media) > 0 {
		post.Media = in.Media
	}
	if !s.strictOwnership {
		post.SetAuthor(editor)
	}
	post.UpdatedAt = time.Now()

	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid post: %v", ErrInvalid, err)
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost deletes a post and everything hanging off it
func (s *PostService) DeletePost(id int, caller *models.User) error {
	if s.strictOwnership {
		post, err := s.postRepo.GetByID(id)
		if err != nil {
			return err
		}
		if caller == nil || post.AuthorID != caller.ID {
			return ErrForbidden
		}
	}
	return s.postRepo.Delete(id)
}

// Feed returns every post, newest first.
func (s *PostService) Feed() ([]*models.Post, error) {
	return s.withComments(s.postRepo.ListNewest())
}

// Search returns posts whose caption or author name contains query.
// The empty query matches everything.
func (s *PostService) Search(query string) ([]*models.Post, error) {
	return s.withComments(s.postRepo.Search(query))
}

// ByTag returns the posts tagged exactly tag.
func (s *PostService) ByTag(tag string) ([]*models.Post, error) {
	return s.withComments(s.postRepo.ListByTag(tag))
}

// Tags returns the tag cloud.
func (s *PostService) Tags() ([]models.TagCount, error) {
	return s.postRepo.Tags()
}

// ToggleLike likes the post for user, or removes the like when it exists.
func (s *PostService) ToggleLike(postID int, user *models.User) (*models.LikeResult, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user is required", ErrInvalid)
	}
	liked, count, err := s.postRepo.ToggleLike(postID, user.ID)
	if err != nil {
		return nil, err
	}
	result := &models.LikeResult{Result: models.LikeResultDislike, LikeCount: count}
	if liked {
		result.Result = models.LikeResultLike
	}
	return result, nil
}

// LikedBy returns the set of post ids user likes.
func (s *PostService) LikedBy(user *models.User) (map[int]bool, error) {
	if user == nil {
		return map[int]bool{}, nil
	}
	return s.postRepo.LikedBy(user.ID)
}

func (s *PostService) withComments(posts []*models.Post, err error) ([]*models.Post, error) {
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if err := s.attachComments(post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *PostService) attachComments(post *models.Post) error {
	comments, err := s.commentRepo.ListByPost(post.ID)
	if err != nil {
		return fmt.Errorf("failed to get comments for post %d: %w", post.ID, err)
	}
	post.Comments = nil
	for _, comment := range comments {
		if err := post.AddComment(comment); err != nil {
			return err
		}
	}
	return nil
}
