// Package kv is the key/value port recorded tapes are persisted through.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

var (
	ErrNotFound = errors.New("not found")
)

// MetaCodec is the Entry.Meta key naming the codec of Entry.Data.
const MetaCodec = "codec"

type Entry struct {
	Data []byte
	Meta map[string]any
}

type PutOptions struct {
	// TTL expires the entry; zero keeps it until deleted.
	TTL time.Duration
}

type Store interface {
	Put(ctx context.Context, key string, entry Entry, opts PutOptions) error
	Get(ctx context.Context, key string) (entry Entry, err error)
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Put encodes v with c and stores it under key.
func Put[T any](ctx context.Context, store Store, c codec.Codec, key string, v T, opts PutOptions) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, Entry{Data: data, Meta: map[string]any{MetaCodec: c.Name()}}, opts)
}

// Get loads key and decodes it with the codec it was stored with, JSON
// when the entry does not say.
func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	name, _ := entry.Meta[MetaCodec].(string)
	c, err := codec.ByName(name)
	if err != nil {
		return
	}
	err = c.Unmarshal(entry.Data, &out)
	return
}
