package services

import (
	"fmt"
	"strings"

	"feedgram/app/models"
	"feedgram/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment stores content as a comment by author on postID.
// A missing post is reported before the content is validated.
func (s *CommentService) CreateComment(postID int, author *models.User, content string) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: strings.TrimSpace(content)}
	comment.SetPost(post)
	if err := comment.SetAuthor(author); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	comment.BeforeCreate()

	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid comment: %v", ErrInvalid, err)
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// DeleteComment deletes the comment when caller wrote it and returns
// ErrForbidden otherwise.
func (s *CommentService) DeleteComment(id int, caller *models.User) error {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !comment.IsAuthoredBy(caller) {
		return ErrForbidden
	}
	return s.commentRepo.Delete(id)
}
