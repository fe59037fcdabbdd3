package repositories

import (
	"bytes"
	"fmt"
	"strings"

	"feedgram/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores the post and its tag index in a single transaction.
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		return putPost(txn, post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = loadPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListNewest returns all posts, newest first.
func (r *BadgerPostRepository) ListNewest() ([]*models.Post, error) {
	return r.collect(true, nil)
}

// Search matches query against the caption and the author name.
func (r *BadgerPostRepository) Search(query string) ([]*models.Post, error) {
	return r.collect(false, func(p *models.Post) bool {
		return strings.Contains(p.Caption, query) || strings.Contains(p.AuthorName, query)
	})
}

// ListByTag walks the tag index and loads every tagged post.
func (r *BadgerPostRepository) ListByTag(tag string) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, tagPrefix(tag), false, true, func(item *badger.Item) error {
			id, err := trailingID(item.Key())
			if err != nil {
				return err
			}
			post, err := loadPost(txn, id)
			if err == ErrNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			posts = append(posts, post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update replaces an existing post and rewrites its tag index.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, postKey(post.ID), &existing); err != nil {
			return err
		}
		for _, tag := range existing.Tags {
			if err := txn.Delete(tagKey(tag, post.ID)); err != nil {
				return err
			}
		}
		return putPost(txn, post)
	})
}

// Delete removes a post with its comments, likes and tag entries.
func (r *BadgerPostRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}

		var keys [][]byte
		for _, tag := range post.Tags {
			keys = append(keys, tagKey(tag, id))
		}

		likes, err := collectKeys(txn, likePrefix(id))
		if err != nil {
			return err
		}
		keys = append(keys, likes...)

		comments, err := collectKeys(txn, commentPrefix(id))
		if err != nil {
			return err
		}
		for _, key := range comments {
			commentID, err := trailingID(key)
			if err != nil {
				return err
			}
			keys = append(keys, key, commentIndexKey(commentID))
		}

		keys = append(keys, postKey(id))
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete %q: %w", key, err)
			}
		}
		return nil
	})
}

// ToggleLike flips the membership of userID in the like set of postID.
func (r *BadgerPostRepository) ToggleLike(postID, userID int) (bool, int, error) {
	var liked bool
	var count int
	err := update(r.db, func(txn *badger.Txn) error {
		found, err := exists(txn, postKey(postID))
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		key := likeKey(postID, userID)
		present, err := exists(txn, key)
		if err != nil {
			return err
		}
		if present {
			err = txn.Delete(key)
		} else {
			err = txn.Set(key, []byte{})
		}
		if err != nil {
			return err
		}
		liked = !present

		count, err = countPrefix(txn, likePrefix(postID))
		return err
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// LikedBy scans the like keys for userID.
func (r *BadgerPostRepository) LikedBy(userID int) (map[int]bool, error) {
	liked := make(map[int]bool)
	suffix := []byte(fmt.Sprintf(":%010d", userID))
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(LikeKeyPrefix), false, true, func(item *badger.Item) error {
			key := item.Key()
			if !bytes.HasSuffix(key, suffix) {
				return nil
			}
			// like:<post>:<user>
			postPart := key[len(LikeKeyPrefix) : len(LikeKeyPrefix)+idWidth]
			postID, err := trailingID(postPart)
			if err != nil {
				return err
			}
			liked[postID] = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return liked, nil
}

// Tags counts posts per tag, ordered by tag name.
func (r *BadgerPostRepository) Tags() ([]models.TagCount, error) {
	tags := []models.TagCount{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(TagKeyPrefix), false, true, func(item *badger.Item) error {
			key := item.Key()
			// tag:<name>:<post>
			if len(key) < len(TagKeyPrefix)+idWidth+2 {
				return fmt.Errorf("malformed tag key %q", key)
			}
			name := string(key[len(TagKeyPrefix) : len(key)-idWidth-1])
			if n := len(tags); n > 0 && tags[n-1].Name == name {
				tags[n-1].Count++
				return nil
			}
			tags = append(tags, models.TagCount{Name: name, Count: 1})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *BadgerPostRepository) collect(reverse bool, keep func(*models.Post) bool) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(PostKeyPrefix), reverse, false, func(item *badger.Item) error {
			var post models.Post
			err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if keep != nil && !keep(&post) {
				return nil
			}
			post.LikeCount, err = countPrefix(txn, likePrefix(post.ID))
			if err != nil {
				return err
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func putPost(txn *badger.Txn, post *models.Post) error {
	data, err := marshalEntity(post)
	if err != nil {
		return err
	}
	if err := txn.Set(postKey(post.ID), data); err != nil {
		return err
	}
	for _, tag := range post.Tags {
		if err := txn.Set(tagKey(tag, post.ID), []byte{}); err != nil {
			return err
		}
	}
	return nil
}

func loadPost(txn *badger.Txn, id int) (*models.Post, error) {
	var post models.Post
	if err := getEntity(txn, postKey(id), &post); err != nil {
		return nil, err
	}
	count, err := countPrefix(txn, likePrefix(id))
	if err != nil {
		return nil, err
	}
	post.LikeCount = count
	return &post, nil
}
