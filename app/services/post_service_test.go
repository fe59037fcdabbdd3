package services

import (
	"strings"
	"testing"

	"feedgram/app/models"
	"feedgram/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	t.Run("CreatePost", func(t *testing.T) {
		tests := []struct {
			name    string
			author  *models.User
			input   PostInput
			wantErr error
		}{
			{
				name:   "valid post",
				author: alice,
				input:  PostInput{Caption: "  sunset  ", Tags: []string{"beach"}, Media: []string{"/media/a.jpg"}},
			},
			{
				name:    "empty caption",
				author:  alice,
				input:   PostInput{Caption: "   "},
				wantErr: ErrInvalid,
			},
			{
				name:    "caption too long",
				author:  alice,
				input:   PostInput{Caption: strings.Repeat("x", 2201)},
				wantErr: ErrInvalid,
			},
			{
				name:    "bad tag",
				author:  alice,
				input:   PostInput{Caption: "hi", Tags: []string{"no spaces allowed"}},
				wantErr: ErrInvalid,
			},
			{
				name:    "no author",
				input:   PostInput{Caption: "hi"},
				wantErr: ErrInvalid,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				post, err := f.postSvc.CreatePost(tt.author, tt.input)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					assert.Nil(t, post)
					return
				}
				require.NoError(t, err)
				assert.NotZero(t, post.ID)
				assert.Equal(t, "sunset", post.Caption)
				assert.Equal(t, tt.author.ID, post.AuthorID)
				assert.Equal(t, tt.author.Username, post.AuthorName)
				assert.False(t, post.CreatedAt.IsZero())

				feed, err := f.postSvc.Feed()
				require.NoError(t, err)
				require.NotEmpty(t, feed)
				assert.Equal(t, post.ID, feed[0].ID)
				assert.Equal(t, "alice", feed[0].AuthorName)
			})
		}
	})

	t.Run("EditPost reassigns author", func(t *testing.T) {
		post := f.post(t, alice, "original", "one")
		created := post.CreatedAt

		edited, err := f.postSvc.EditPost(post.ID, bob, PostInput{Caption: "changed", Tags: []string{"two"}})
		require.NoError(t, err)
		assert.Equal(t, post.ID, edited.ID)
		assert.Equal(t, bob.ID, edited.AuthorID)
		assert.Equal(t, "bob", edited.AuthorName)
		assert.Equal(t, []string{"two"}, edited.Tags)
		assert.True(t, created.Equal(edited.CreatedAt))

		stored, err := f.postSvc.GetPost(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "changed", stored.Caption)
	})

	t.Run("EditPost keeps media without upload", func(t *testing.T) {
		post, err := f.postSvc.CreatePost(alice, PostInput{Caption: "pic", Media: []string{"/media/1.png"}})
		require.NoError(t, err)

		edited, err := f.postSvc.EditPost(post.ID, alice, PostInput{Caption: "pic 2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/media/1.png"}, edited.Media)

		edited, err = f.postSvc.EditPost(post.ID, alice, PostInput{Caption: "pic 3", Media: []string{"/media/2.png"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"/media/2.png"}, edited.Media)
	})

	t.Run("EditPost errors", func(t *testing.T) {
		_, err := f.postSvc.EditPost(9999, alice, PostInput{Caption: "x"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		post := f.post(t, alice, "keep me")
		_, err = f.postSvc.EditPost(post.ID, alice, PostInput{Caption: ""})
		assert.ErrorIs(t, err, ErrInvalid)

		stored, err := f.postSvc.GetPost(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "keep me", stored.Caption)
	})

	t.Run("DeletePost", func(t *testing.T) {
		post := f.post(t, alice, "doomed")
		require.NoError(t, f.postSvc.DeletePost(post.ID, bob))

		_, err := f.postSvc.GetPost(post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, f.postSvc.DeletePost(post.ID, bob), repositories.ErrNotFound)
	})
}

func TestPostServiceStrictOwnership(t *testing.T) {
	f := newFixture(t)
	f.postSvc.SetStrictOwnership(true)
	assert.True(t, f.postSvc.StrictOwnership())
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	post := f.post(t, alice, "mine")

	_, err := f.postSvc.EditPost(post.ID, bob, PostInput{Caption: "yours"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.postSvc.DeletePost(post.ID, bob), ErrForbidden)

	edited, err := f.postSvc.EditPost(post.ID, alice, PostInput{Caption: "still mine"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, edited.AuthorID)

	require.NoError(t, f.postSvc.DeletePost(post.ID, alice))
}

func TestPostServiceQueries(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	p1 := f.post(t, alice, "Hello world", "greeting")
	p2 := f.post(t, bob, "Goodbye", "greeting", "farewell")
	p3 := f.post(t, alice, "Lunch at noon")

	ids := func(posts []*models.Post) []int {
		out := []int{}
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("Feed is newest first", func(t *testing.T) {
		feed, err := f.postSvc.Feed()
		require.NoError(t, err)
		assert.Equal(t, []int{p3.ID, p2.ID, p1.ID}, ids(feed))
	})

	t.Run("Search", func(t *testing.T) {
		tests := []struct {
			query string
			want  []int
		}{
			{"", []int{p1.ID, p2.ID, p3.ID}},
			{"o", []int{p1.ID, p2.ID, p3.ID}},
			{"Hello", []int{p1.ID}},
			{"hello", []int{}},
			{"bob", []int{p2.ID}},
			{"alice", []int{p1.ID, p3.ID}},
			{"zzz", []int{}},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				got, err := f.postSvc.Search(tt.query)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(got))
			})
		}
	})

	t.Run("ByTag", func(t *testing.T) {
		got, err := f.postSvc.ByTag("greeting")
		require.NoError(t, err)
		assert.Equal(t, []int{p1.ID, p2.ID}, ids(got))

		got, err = f.postSvc.ByTag("Greeting")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Tags", func(t *testing.T) {
		tags, err := f.postSvc.Tags()
		require.NoError(t, err)
		assert.Equal(t, []models.TagCount{{Name: "farewell", Count: 1}, {Name: "greeting", Count: 2}}, tags)
	})

	t.Run("comments are attached", func(t *testing.T) {
		_, err := f.commSvc.CreateComment(p1.ID, bob, "nice")
		require.NoError(t, err)

		post, err := f.postSvc.GetPost(p1.ID)
		require.NoError(t, err)
		require.Len(t, post.Comments, 1)
		assert.Equal(t, "nice", post.Comments[0].Content)
		assert.Equal(t, p1.ID, post.Comments[0].PostID)
	})
}

func TestPostServiceToggleLike(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.post(t, alice, "like me")

	result, err := f.postSvc.ToggleLike(post.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Result: models.LikeResultLike, LikeCount: 1}, result)

	result, err = f.postSvc.ToggleLike(post.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, result.LikeCount)

	liked, err := f.postSvc.LikedBy(bob)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{post.ID: true}, liked)

	result, err = f.postSvc.ToggleLike(post.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Result: models.LikeResultDislike, LikeCount: 1}, result)

	_, err = f.postSvc.ToggleLike(9999, alice)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = f.postSvc.ToggleLike(post.ID, nil)
	assert.ErrorIs(t, err, ErrInvalid)
}
