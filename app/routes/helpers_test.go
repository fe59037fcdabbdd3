package routes

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"feedgram/app/auth"
	"feedgram/app/media"
	"feedgram/app/repositories"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "routes-test-secret-0123456789"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type testApp struct {
	handler  http.Handler
	store    *repositories.Store
	media    *media.Store
	sessions *auth.Sessions
}

func setupTestApp(t *testing.T, mutate func(*Deps)) *testApp {
	t.Helper()
	store, err := repositories.Open(repositories.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mediaStore, err := media.NewStore(media.Options{Dir: filepath.Join(t.TempDir(), "media")})
	require.NoError(t, err)
	sessions, err := auth.NewSessions(auth.SessionOptions{Secret: testSecret})
	require.NoError(t, err)

	deps := Deps{
		Store:        store,
		Media:        mediaStore,
		Sessions:     sessions,
		Logger:       zap.NewNop(),
		PasswordCost: bcrypt.MinCost,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testApp{
		handler:  SetupRoutes(deps),
		store:    store,
		media:    mediaStore,
		sessions: sessions,
	}
}

// client is a browser stand-in that carries the session cookie.
type client struct {
	t      *testing.T
	app    *testApp
	cookie *http.Cookie
	accept string
}

func (a *testApp) anonymous(t *testing.T) *client {
	return &client{t: t, app: a}
}

// signup registers username and returns a logged in client.
func (a *testApp) signup(t *testing.T, username string) *client {
	t.Helper()
	c := a.anonymous(t)
	w := c.postForm("/signup", url.Values{"username": {username}, "password": {username + "-password"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == a.sessions.CookieName() {
			c.cookie = cookie
		}
	}
	require.NotNil(t, c.cookie, "signup did not set a session cookie")
	return c
}

func (c *client) json() *client {
	copied := *c
	copied.accept = "application/json"
	return &copied
}

func (c *client) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.app.handler.ServeHTTP(rec, req)
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil, "")
}

func (c *client) post(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, nil, "")
}

func (c *client) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

func (c *client) postMultipart(target string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	for name, data := range files {
		part, err := w.CreateFormFile("media", name)
		require.NoError(c.t, err)
		_, err = part.Write(data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())
	return c.do(http.MethodPost, target, &body, w.FormDataContentType())
}
