package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrKeyMiss is returned by Get when the key does not exist. Callers must
// be able to tell an absent key from a transport failure, so every other
// error means the store itself misbehaved.
var ErrKeyMiss = errors.New("kvstore: key not found")

// Store is the key-value surface the pipeline publishes through. Values
// are opaque byte payloads; callers marshal their own tables.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	ListKeys(ctx context.Context) ([]string, error)
	Close() error
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, b)
}

// GetJSON retrieves key and unmarshals it into dest. Returns ErrKeyMiss
// when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dest interface{}) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
