package repositories

import "feedgram/app/models"

// UserRepository defines the interface for account data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

// PostRepository defines the interface for post data access.
// Listing methods return posts with LikeCount populated.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	// ListNewest returns every post, highest id first.
	ListNewest() ([]*models.Post, error)
	// Search returns posts whose caption or author name contains query,
	// in storage order (ascending id).
	Search(query string) ([]*models.Post, error)
	ListByTag(tag string) ([]*models.Post, error)
	Update(post *models.Post) error
	// Delete removes the post together with its comments, likes and tag index.
	Delete(id int) error
	// ToggleLike adds userID to the like set of the post when absent and
	// removes it when present. It reports the new membership and count.
	ToggleLike(postID, userID int) (liked bool, count int, err error)
	// LikedBy returns the ids of the posts userID currently likes.
	LikedBy(userID int) (map[int]bool, error)
	Tags() ([]models.TagCount, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Delete(id int) error
}

var (
	_ UserRepository    = (*BadgerUserRepository)(nil)
	_ PostRepository    = (*BadgerPostRepository)(nil)
	_ CommentRepository = (*BadgerCommentRepository)(nil)
)
