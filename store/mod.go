// Package store persists binary documents under caller-chosen names.
//
// The store is backed by a bbolt database with a single bucket; every
// document is stored in its file form. It fulfils the load/save host
// contract of the backends with a real engine instead of the filesystem.
package store

import (
	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	serializer "github.com/borjaportugal/Serializer"
	"github.com/borjaportugal/Serializer/serde/binary"
)

var bucketDocuments = []byte("documents")

// Store is a named store of binary documents on a bbolt database.
type Store struct {
	bolt *bbolt.DB
}

// New opens the database at the given path, creating it when missing.
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0666, &bbolt.Options{})
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	return &Store{bolt: db}, nil
}

// Save stores the document under the key, replacing any previous document.
func (s *Store) Save(key string, doc *binary.Document) error {
	err := s.bolt.Update(func(txn *bbolt.Tx) error {
		bucket, err := txn.CreateBucketIfNotExists(bucketDocuments)
		if err != nil {
			return xerrors.Errorf("failed to create bucket: %v", err)
		}

		return bucket.Put([]byte(key), doc.Bytes())
	})
	if err != nil {
		return xerrors.Errorf("failed to save document '%s': %v", key, err)
	}

	serializer.Logger.Trace().Str("key", key).Msg("document saved")

	return nil
}

// Load returns the document stored under the key. The returned document
// owns its storage.
func (s *Store) Load(key string) (*binary.Document, error) {
	var doc *binary.Document

	err := s.bolt.View(func(txn *bbolt.Tx) error {
		bucket := txn.Bucket(bucketDocuments)
		if bucket == nil {
			return xerrors.Errorf("document '%s' not found", key)
		}

		value := bucket.Get([]byte(key))
		if value == nil {
			return xerrors.Errorf("document '%s' not found", key)
		}

		// The value is only valid inside the transaction.
		data := make([]byte, len(value))
		copy(data, value)

		var err error
		doc, err = binary.FromBytes(data)
		if err != nil {
			return xerrors.Errorf("failed to decode document '%s': %v", key, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Delete removes the document stored under the key, if any.
func (s *Store) Delete(key string) error {
	err := s.bolt.Update(func(txn *bbolt.Tx) error {
		bucket := txn.Bucket(bucketDocuments)
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return xerrors.Errorf("failed to delete document '%s': %v", key, err)
	}

	return nil
}

// Keys returns the keys of the stored documents in lexical order.
func (s *Store) Keys() ([]string, error) {
	var keys []string

	err := s.bolt.View(func(txn *bbolt.Tx) error {
		bucket := txn.Bucket(bucketDocuments)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to list documents: %v", err)
	}

	return keys, nil
}

// Close closes the database. Any call will result in an error afterwards.
func (s *Store) Close() error {
	return s.bolt.Close()
}
