package record

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
	"github.com/ekonbenefits/dynamitey-sub000/ports/kv"
)

type StoreConfig struct {
	Store kv.Store
	// Codec encodes tapes and their values. Defaults to msgpack.
	Codec codec.Codec
	Types *Types
	// Prefix is prepended to tape ids to form keys (default "tape.").
	Prefix string
	// TTL expires saved tapes; zero keeps them.
	TTL    time.Duration
	Logger *slog.Logger
}

// TapeStore persists tapes in a kv.Store.
type TapeStore struct {
	store  kv.Store
	codec  codec.Codec
	types  *Types
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

func NewTapeStore(cfg StoreConfig) *TapeStore {
	if cfg.Store == nil {
		cfg.Store = kv.NewMemStore()
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.Msgpack
	}
	if cfg.Types == nil {
		cfg.Types = DefaultTypes
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "tape."
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TapeStore{
		store:  cfg.Store,
		codec:  cfg.Codec,
		types:  cfg.Types,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		log:    cfg.Logger.With(slog.String("component", "tapes")),
	}
}

func (s *TapeStore) Save(ctx context.Context, t *Tape) error {
	if err := kv.Put(ctx, s.store, s.codec, s.prefix+t.ID, t, kv.PutOptions{TTL: s.ttl}); err != nil {
		return fmt.Errorf("save tape %s: %w", t.ID, err)
	}
	s.log.Debug("tape saved", slog.String("tape", t.ID), slog.Int("steps", len(t.Steps)))
	return nil
}

// SaveRecording encodes r and saves it.
func (s *TapeStore) SaveRecording(ctx context.Context, r *Recorder) (*Tape, error) {
	t, err := r.Tape(s.types, s.codec)
	if err != nil {
		return nil, err
	}
	return t, s.Save(ctx, t)
}

// Load returns the tape with id, or an error wrapping kv.ErrNotFound.
func (s *TapeStore) Load(ctx context.Context, id string) (*Tape, error) {
	t, err := kv.Get[*Tape](ctx, s.store, s.prefix+id)
	if err != nil {
		return nil, fmt.Errorf("load tape %s: %w", id, err)
	}
	return t, nil
}

func (s *TapeStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.prefix+id)
}

// List returns the ids of the stored tapes.
func (s *TapeStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys, nil
}

// Replay loads tape id and replays it on target through e.
func (s *TapeStore) Replay(ctx context.Context, e *dyn.Engine, id string, target any) (any, error) {
	t, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := t.Replay(e, s.types, target)
	if err != nil {
		s.log.Warn("tape replay failed", slog.String("tape", id), slog.Any("error", err))
		return nil, err
	}
	return v, nil
}
