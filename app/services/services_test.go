package services

import (
	"testing"

	"feedgram/app/models"
	"feedgram/app/repositories/mock"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users    *mock.UserRepository
	posts    *mock.PostRepository
	comments *mock.CommentRepository
	postSvc  *PostService
	commSvc  *CommentService
	userSvc  *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := mock.NewUserRepository()
	posts := mock.NewPostRepository()
	comments := mock.NewCommentRepository(posts)
	userSvc := NewUserService(users)
	userSvc.SetHashCost(bcrypt.MinCost)
	return &fixture{
		users:    users,
		posts:    posts,
		comments: comments,
		postSvc:  NewPostService(posts, comments),
		commSvc:  NewCommentService(comments, posts),
		userSvc:  userSvc,
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.userSvc.Register(name, "password123")
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, caption string, tags ...string) *models.Post {
	t.Helper()
	p, err := f.postSvc.CreatePost(author, PostInput{Caption: caption, Tags: tags})
	require.NoError(t, err)
	return p
}
