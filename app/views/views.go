// Package views holds the embedded HTML templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"feedgram/app/models"
)

//go:embed layout.html posts/*.html tags/*.html users/*.html
var files embed.FS

// Page is the data every template receives. Content carries the page
// specific values.
type Page struct {
	Title   string
	User    *models.User
	Error   string
	Content interface{}
}

// pageFiles lists, per page, the files parsed after the layout.
var pageFiles = map[string][]string{
	"feed":   {"posts/feed.html", "posts/_post.html"},
	"new":    {"posts/_form.html", "posts/new.html"},
	"edit":   {"posts/_form.html", "posts/edit.html"},
	"tags":   {"tags/cloud.html"},
	"signup": {"users/signup.html"},
	"login":  {"users/login.html"},
}

var funcs = template.FuncMap{
	"tagURL": func(tag string) string {
		return "/tag/" + url.PathEscape(tag)
	},
	"isVideo": func(src string) bool {
		switch strings.ToLower(path.Ext(src)) {
		case ".mp4", ".webm", ".mov":
			return true
		}
		return false
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
	"tagSize": func(count int) int {
		if count > 5 {
			count = 5
		}
		return 90 + count*15
	},
}

// Renderer executes one template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page against the layout.
func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for name, extra := range pageFiles {
		patterns := append([]string{"layout.html"}, extra...)
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s templates: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// MustNew is New for package initialisation.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes page into a buffer so a template error never leaves a
// half written response, then writes it with status.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
