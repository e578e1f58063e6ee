// Package persist implements the reference attr.Persistence backend:
// a bbolt-backed store keyed by a unique gobj's name, one bucket per
// owner (spec.md §6 "Persistent-attribute store").
//
// The four-callback attr.Persistence interface has no parameter for
// the attribute values themselves on Save/Remove; this backend treats
// the selector argument as carrying the types.KW snapshot to persist
// (nil selector on Save is a no-op success), the pragmatic reading of
// a boundary that otherwise has no channel for the data.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// Store is a bbolt-backed attr.Persistence implementation.
type Store struct {
	db *bolt.DB
}

const bucketPrefix = "gobj_attrs_"

// Open opens (creating if absent) the bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("persist: open %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error { return s.db.Close() }

func bucketName(ownerName string) []byte {
	return []byte(bucketPrefix + ownerName)
}

// LoadAll returns every persisted attribute for ownerName.
func (s *Store) LoadAll(ownerName string, selector any) (types.KW, error) {
	out := make(types.KW)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(ownerName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var value any
			if err := json.Unmarshal(v, &value); err != nil {
				return fmt.Errorf("persist: decode %s.%s: %w", ownerName, k, err)
			}
			out[string(k)] = value
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save persists the snapshot carried in selector (a types.KW) under
// ownerName's bucket. A nil selector succeeds without writing anything.
func (s *Store) Save(ownerName string, selector any) error {
	snapshot, ok := selector.(types.KW)
	if !ok {
		if selector == nil {
			return nil
		}
		return fmt.Errorf("persist: save %q: selector is not a types.KW snapshot: %w", ownerName, gobjerr.ErrArgument)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(ownerName))
		if err != nil {
			return fmt.Errorf("persist: bucket %q: %w", ownerName, err)
		}
		for k, v := range snapshot {
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("persist: encode %s.%s: %w", ownerName, k, err)
			}
			if err := b.Put([]byte(k), encoded); err != nil {
				return fmt.Errorf("persist: put %s.%s: %w", ownerName, k, err)
			}
		}
		return nil
	})
}

// Remove deletes ownerName's whole bucket, or, when selector names a
// single attribute (a string), only that key.
func (s *Store) Remove(ownerName string, selector any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if key, ok := selector.(string); ok {
			b := tx.Bucket(bucketName(ownerName))
			if b == nil {
				return nil
			}
			return b.Delete([]byte(key))
		}
		err := tx.DeleteBucket(bucketName(ownerName))
		if err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("persist: remove %q: %w", ownerName, err)
		}
		return nil
	})
}

// List returns the names of every owner currently persisted, ignoring
// selector (reserved for a future prefix filter).
func (s *Store) List(ownerName string, selector any) (any, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			n := string(name)
			if len(n) > len(bucketPrefix) && n[:len(bucketPrefix)] == bucketPrefix {
				names = append(names, n[len(bucketPrefix):])
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
