package store

import (
	"fmt"
	"io/fs"

	bolt "go.etcd.io/bbolt"
)

// Store backed by a single bbolt bucket
type PersistedStore struct {
	Db         *bolt.DB
	BucketName string
}

func NewPersistedStore(file string, mode fs.FileMode, bucketName string) (*PersistedStore, error) {
	db, err := bolt.Open(file, mode, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &PersistedStore{
		Db:         db,
		BucketName: bucketName,
	}, nil
}

func (s *PersistedStore) Keys() ([]string, error) {
	keys := []string{}
	err := s.Db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.BucketName))
		if b == nil {
			return fmt.Errorf("bucket with name %s doesn't exist", s.BucketName)
		}

		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

func (s *PersistedStore) Get(key string) (string, error) {
	var value string
	err := s.Db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.BucketName))
		if b == nil {
			return fmt.Errorf("bucket with name %s doesn't exist", s.BucketName)
		}

		raw := b.Get([]byte(key))
		if raw == nil {
			return fmt.Errorf("value with key %s: %w", key, ErrKeyNotFound)
		}
		// raw is only valid for the lifetime of the transaction
		value = string(raw)
		return nil
	})
	return value, err
}

func (s *PersistedStore) Put(key string, value string) error {
	return s.Db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.BucketName))
		if b == nil {
			return fmt.Errorf("bucket with name %s doesn't exist", s.BucketName)
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (s *PersistedStore) Delete(key string) error {
	return s.Db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.BucketName))
		if b == nil {
			return fmt.Errorf("bucket with name %s doesn't exist", s.BucketName)
		}
		return b.Delete([]byte(key))
	})
}

func (s *PersistedStore) Close() error {
	return s.Db.Close()
}
