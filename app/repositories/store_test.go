package repositories

import (
	"bytes"
	"testing"
	"time"

	"feedgram/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, store.Users().Create(user))
	return user
}

func newTestPost(t *testing.T, store *Store, author *models.User, caption string, tags ...string) *models.Post {
	t.Helper()
	post := &models.Post{
		Caption:    caption,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		Tags:       tags,
	}
	post.BeforeCreate()
	require.NoError(t, store.Posts().Create(post))
	return post
}

func TestStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(Options{Path: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, store.Path())

	alice := newTestUser(t, store, "alice")
	newTestPost(t, store, alice, "persisted")
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "closing twice is a no-op")

	reopened, err := Open(Options{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	posts, err := reopened.Posts().Search("")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "persisted", posts[0].Caption)
}

func TestStoreBackupRestore(t *testing.T) {
	source := newTestStore(t)
	alice := newTestUser(t, source, "alice")
	post := newTestPost(t, source, alice, "backed up", "keep")

	var buf bytes.Buffer
	_, err := source.Backup(&buf)
	require.NoError(t, err)

	target := newTestStore(t)
	require.NoError(t, target.Restore(&buf))

	restored, err := target.Posts().GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "backed up", restored.Caption)

	tagged, err := target.Posts().ListByTag("keep")
	require.NoError(t, err)
	assert.Len(t, tagged, 1)

	user, err := target.Users().GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)
	alice := newTestUser(t, store, "alice")
	newTestPost(t, store, alice, "gone soon")

	require.NoError(t, store.Clear())

	posts, err := store.Posts().Search("")
	require.NoError(t, err)
	assert.Empty(t, posts)
	_, err = store.Users().GetByID(alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
