// Package media keeps uploaded post attachments on local disk.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrTooLarge        = errors.New("media file too large")
)

// DefaultAllowedTypes are accepted when Options.AllowedTypes is empty.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4"}

type Options struct {
	Dir          string
	URLPrefix    string
	MaxBytes     int64
	AllowedTypes []string
}

// Store writes uploads under Dir and hands out URLs under URLPrefix.
type Store struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	allowed   []string
}

func NewStore(opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("media directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	prefix := opts.URLPrefix
	if prefix == "" {
		prefix = "/media/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	allowed := opts.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	return &Store{
		dir:       opts.Dir,
		urlPrefix: prefix,
		maxBytes:  opts.MaxBytes,
		allowed:   allowed,
	}, nil
}

func (s *Store) Dir() string       { return s.dir }
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Save sniffs the upload, copies it to a fresh file and returns its URL.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, fh.Filename, fh.Size)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect media type: %w", err)
	}
	if !s.accepts(mtype) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close media file: %w", err)
	}
	return s.urlPrefix + name, nil
}

// SaveAll saves every upload. On failure the files already written are removed.
func (s *Store) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.Save(fh)
		if err != nil {
			for _, u := range urls {
				s.Remove(u)
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Remove deletes the file behind url. Unknown urls are ignored.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, s.urlPrefix) {
		return nil
	}
	name := path.Base(strings.TrimPrefix(url, s.urlPrefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Handler serves stored files under the URL prefix. Directories are not
// listed.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(s.urlPrefix, http.FileServer(filesOnly{http.Dir(s.dir)}))
}

// filesOnly hides directories from http.FileServer.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func (s *Store) accepts(mtype *mimetype.MIME) bool {
	for _, allowed := range s.allowed {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}
