package database

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketSettings = "settings" // key: setting name -> raw value

type bolt struct {
	storage *bbolt.DB
}

// NewBolt opens (or creates) a single-file store at path.
func NewBolt(path string) (Store, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketSettings))
		return err
	}); err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("failed to create settings bucket: %w", err)
	}

	return &bolt{storage: instance}, nil
}

func (b *bolt) Close() {
	_ = b.storage.Close()
}

func (b *bolt) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.storage.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(boltBucketSettings)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// data is only valid for the life of the transaction
		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *bolt) Set(ctx context.Context, key string, value []byte) error {
	return b.SetMany(ctx, map[string][]byte{key: value})
}

func (b *bolt) SetMany(_ context.Context, values map[string][]byte) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketSettings))
		for key, value := range values {
			if err := bucket.Put([]byte(key), value); err != nil {
				return fmt.Errorf("failed to write setting %q: %w", key, err)
			}
		}
		return nil
	})
}
