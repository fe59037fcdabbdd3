package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedgram/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type author struct {
	ID       int
	Username string
}

type comment struct {
	ID      int
	Author  author
	Content string
	Mine    bool
}

type post struct {
	ID        int
	Caption   string
	Author    author
	Tags      []string
	Media     []string
	LikeCount int
	Liked     bool
	CanEdit   bool
	Comments  []comment
	CreatedAt time.Time
}

type feed struct {
	Posts     []post
	Tag       string
	Query     string
	Searching bool
}

type form struct {
	Action  string
	Caption string
	Tags    string
	Media   []string
	Submit  string
}

func TestRenderPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	user := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name     string
		page     Page
		contains []string
	}{
		{
			name: "feed",
			page: Page{Title: "Feed", User: user, Content: feed{Posts: []post{{
				ID: 7, Caption: "<b>sunset</b>", Author: author{1, "alice"},
				Tags: []string{"beach", "été"}, Media: []string{"/media/a.png", "/media/b.mp4"},
				LikeCount: 2, Liked: true, CanEdit: true,
				Comments: []comment{{ID: 3, Author: author{2, "bob"}, Content: "nice", Mine: false}},
			}}}},
			contains: []string{
				`id="post-7"`, "&lt;b&gt;sunset&lt;/b&gt;", `href="/tag/beach"`, `href="/tag/%C3%A9t%C3%A9"`,
				`<video src="/media/b.mp4"`, `<img src="/media/a.png"`, `action="/like/7"`,
				`id="comment-3"`, `action="/comment/7"`, `href="/edit-post/7"`, "@alice",
			},
		},
		{
			name:     "feed by tag",
			page:     Page{User: user, Content: feed{Tag: "beach"}},
			contains: []string{"#beach", "No posts yet."},
		},
		{
			name:     "new",
			page:     Page{User: user, Content: form{Action: "/write-post", Submit: "Share"}},
			contains: []string{`action="/write-post"`, `enctype="multipart/form-data"`, "Share"},
		},
		{
			name:     "edit",
			page:     Page{User: user, Error: "caption is required", Content: form{Action: "/edit-post/4", Caption: "old", Tags: "a, b", Submit: "Save"}},
			contains: []string{`action="/edit-post/4"`, ">old</textarea>", `value="a, b"`, "caption is required"},
		},
		{
			name:     "tags",
			page:     Page{User: user, Content: []models.TagCount{{Name: "beach", Count: 2}}},
			contains: []string{`href="/tag/beach"`, "font-size: 120%"},
		},
		{
			name:     "signup",
			page:     Page{Content: struct{ Username string }{"carol"}},
			contains: []string{`action="/signup"`, `value="carol"`, `href="/login"`},
		},
		{
			name:     "login",
			page:     Page{Content: struct{ Username, Next string }{"", "/tag/go"}},
			contains: []string{`action="/login"`, `value="/tag/go"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := tt.name
			if name == "feed by tag" {
				name = "feed"
			}
			rec := httptest.NewRecorder()
			require.NoError(t, r.Render(rec, http.StatusOK, name, tt.page))
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	r := MustNew()

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "missing", Page{}))

	// a content value without the fields the template needs fails before
	// anything is written
	rec = httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "signup", Page{Content: 42}))
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Type"))
}
