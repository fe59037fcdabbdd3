package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types. Numeric ids are zero padded
	// so that key order matches id order.
	UserKeyPrefix         = "user:"
	UsernameKeyPrefix     = "username:"
	PostKeyPrefix         = "post:"
	TagKeyPrefix          = "tag:"
	LikeKeyPrefix         = "like:"
	CommentKeyPrefix      = "comment:"
	CommentIndexKeyPrefix = "commentidx:"

	// Sequence keys for auto-incrementing IDs
	UserSeqKey    = "seq:user"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	idWidth = 10
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrConflict  = errors.New("conflicting concurrent update")
)

func userKey(id int) []byte          { return []byte(fmt.Sprintf("%s%010d", UserKeyPrefix, id)) }
func usernameKey(name string) []byte { return []byte(UsernameKeyPrefix + name) }
func postKey(id int) []byte          { return []byte(fmt.Sprintf("%s%010d", PostKeyPrefix, id)) }
func tagPrefix(tag string) []byte    { return []byte(TagKeyPrefix + tag + ":") }
func tagKey(tag string, postID int) []byte {
	return []byte(fmt.Sprintf("%s%s:%010d", TagKeyPrefix, tag, postID))
}
func likePrefix(postID int) []byte { return []byte(fmt.Sprintf("%s%010d:", LikeKeyPrefix, postID)) }
func likeKey(postID, userID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", LikeKeyPrefix, postID, userID))
}
func commentPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}
func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", CommentKeyPrefix, postID, id))
}
func commentIndexKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", CommentIndexKeyPrefix, id))
}

// trailingID parses the zero padded id that ends key.
func trailingID(key []byte) (int, error) {
	if len(key) < idWidth {
		return 0, fmt.Errorf("key %q too short", key)
	}
	return strconv.Atoi(string(key[len(key)-idWidth:]))
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = binary.BigEndian.Uint64(val) + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	// Store new ID
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	if err := txn.Set([]byte(seqKey), buf); err != nil {
		return 0, fmt.Errorf("failed to update sequence: %w", err)
	}

	return int(id), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads the value at key into entity, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scan calls fn for every item under prefix. Reverse walks from the highest key down.
func scan(txn *badger.Txn, prefix []byte, reverse, keysOnly bool, fn func(item *badger.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = reverse
	opts.PrefetchValues = !keysOnly
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := prefix
	if reverse {
		seek = append(append([]byte{}, prefix...), 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		if err := fn(it.Item()); err != nil {
			return err
		}
	}
	return nil
}

// collectKeys copies every key under prefix.
func collectKeys(txn *badger.Txn, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := scan(txn, prefix, false, true, func(item *badger.Item) error {
		keys = append(keys, item.KeyCopy(nil))
		return nil
	})
	return keys, err
}

// countPrefix counts the keys under prefix.
func countPrefix(txn *badger.Txn, prefix []byte) (int, error) {
	n := 0
	err := scan(txn, prefix, false, true, func(*badger.Item) error {
		n++
		return nil
	})
	return n, err
}

// update runs fn in a read-write transaction and maps badger's optimistic
// concurrency failure onto ErrConflict.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	err := db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}
	return err
}
