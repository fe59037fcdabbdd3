package mock

import (
	"sort"
	"strings"
	"sync"

	"feedgram/app/models"
	"feedgram/app/repositories"
)

var (
	_ repositories.UserRepository    = (*UserRepository)(nil)
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)

type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

type PostRepository struct {
	posts  map[int]*models.Post
	likes  map[int]map[int]bool
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	comments map[int]*models.Comment
	posts    *PostRepository
	nextID   int
	mutex    sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]*models.User),
		nextID: 1,
	}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		likes:  make(map[int]map[int]bool),
		nextID: 1,
	}
}

// NewCommentRepository returns a comment store that checks parent posts in posts.
func NewCommentRepository(posts *PostRepository) *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		posts:    posts,
		nextID:   1,
	}
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return m.view(post), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	delete(m.likes, id)
	return nil
}

func (m *PostRepository) ListNewest() ([]*models.Post, error) {
	return m.filter(true, nil), nil
}

func (m *PostRepository) Search(query string) ([]*models.Post, error) {
	return m.filter(false, func(p *models.Post) bool {
		return strings.Contains(p.Caption, query) || strings.Contains(p.AuthorName, query)
	}), nil
}

func (m *PostRepository) ListByTag(tag string) ([]*models.Post, error) {
	return m.filter(false, func(p *models.Post) bool { return p.HasTag(tag) }), nil
}

func (m *PostRepository) ToggleLike(postID, userID int) (bool, int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[postID]; !exists {
		return false, 0, repositories.ErrNotFound
	}
	set := m.likes[postID]
	if set == nil {
		set = make(map[int]bool)
		m.likes[postID] = set
	}
	liked := !set[userID]
	if liked {
		set[userID] = true
	} else {
		delete(set, userID)
	}
	return liked, len(set), nil
}

func (m *PostRepository) LikedBy(userID int) (map[int]bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	liked := make(map[int]bool)
	for postID, set := range m.likes {
		if set[userID] {
			liked[postID] = true
		}
	}
	return liked, nil
}

func (m *PostRepository) Tags() ([]models.TagCount, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counts := make(map[string]int)
	for _, p := range m.posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	tags := make([]models.TagCount, 0, len(counts))
	for name, n := range counts {
		tags = append(tags, models.TagCount{Name: name, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *PostRepository) exists(id int) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.posts[id]
	return ok
}

func (m *PostRepository) filter(newestFirst bool, keep func(*models.Post) bool) []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for _, post := range m.posts {
		if keep == nil || keep(post) {
			posts = append(posts, m.view(post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if newestFirst {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].ID < posts[j].ID
	})
	return posts
}

func (m *PostRepository) view(post *models.Post) *models.Post {
	copied := clonePost(post)
	copied.LikeCount = len(m.likes[post.ID])
	return copied
}

func clonePost(post *models.Post) *models.Post {
	copied := *post
	copied.Tags = append([]string(nil), post.Tags...)
	copied.Media = append([]string(nil), post.Media...)
	copied.Comments = nil
	return &copied
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	if m.posts != nil && !m.posts.exists(comment.PostID) {
		return repositories.ErrNotFound
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *comment
	return &copied, nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if comment.PostID == postID {
			copied := *comment
			comments = append(comments, &copied)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}
