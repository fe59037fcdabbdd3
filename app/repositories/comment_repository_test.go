package repositories

import (
	"testing"

	"feedgram/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Comments()
	alice := newTestUser(t, store, "alice")
	first := newTestPost(t, store, alice, "first")
	second := newTestPost(t, store, alice, "second")

	newComment := func(postID int, content string) *models.Comment {
		c := &models.Comment{PostID: postID, AuthorID: alice.ID, AuthorName: alice.Username, Content: content}
		c.BeforeCreate()
		return c
	}

	t.Run("create and get comment", func(t *testing.T) {
		comment := newComment(first.ID, "nice shot")
		require.NoError(t, repo.Create(comment))
		assert.Equal(t, 1, comment.ID)

		got, err := repo.GetByID(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "nice shot", got.Content)
		assert.Equal(t, first.ID, got.PostID)
	})

	t.Run("create on missing post", func(t *testing.T) {
		err := repo.Create(newComment(404, "into the void"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list by post", func(t *testing.T) {
		require.NoError(t, repo.Create(newComment(second.ID, "a")))
		require.NoError(t, repo.Create(newComment(first.ID, "b")))

		comments, err := repo.ListByPost(first.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "nice shot", comments[0].Content)
		assert.Equal(t, "b", comments[1].Content)

		comments, err = repo.ListByPost(second.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)

		comments, err = repo.ListByPost(404)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("delete comment", func(t *testing.T) {
		require.NoError(t, repo.Delete(1))
		_, err := repo.GetByID(1)
		assert.ErrorIs(t, err, ErrNotFound)

		comments, err := repo.ListByPost(first.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)

		assert.ErrorIs(t, repo.Delete(1), ErrNotFound)
	})
}
