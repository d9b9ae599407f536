package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/ekonbenefits/dynamitey-sub000/ports/kv"
)

// ErrPerKeyTTL is returned by Put for a TTL other than the bucket's.
var ErrPerKeyTTL = errors.New("nats kv: per-key TTL differs from bucket TTL")

type KvConfig struct {
	Connect Connector
	Bucket  string
	// TTL is the bucket-wide expiry. Puts may only ask for this TTL or none.
	TTL      time.Duration
	MaxBytes int64
}

// KvStore is a kv.Store backed by a JetStream key/value bucket.
type KvStore struct {
	kv      jetstream.KeyValue
	ttl     time.Duration
	closeNc closeFunc
}

// kvRecord is the bucket value: entry data with its metadata.
type kvRecord struct {
	Data []byte         `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

func NewKvStore(ctx context.Context, cfg KvConfig) (*KvStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeNc, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeNc()
		return nil, err
	}

	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = 8 * 1024 * 1024
	}

	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		TTL:      cfg.TTL,
		MaxBytes: maxBytes,
	})
	if err != nil {
		closeNc()
		return nil, err
	}

	return &KvStore{kv: bucket, ttl: cfg.TTL, closeNc: closeNc}, nil
}

// Close releases the connection.
func (k *KvStore) Close() { k.closeNc() }

func (k *KvStore) Put(ctx context.Context, key string, entry kv.Entry, opts kv.PutOptions) error {
	if opts.TTL != 0 && opts.TTL != k.ttl {
		return fmt.Errorf("%w: %s", ErrPerKeyTTL, opts.TTL)
	}
	data, err := json.Marshal(kvRecord{Data: entry.Data, Meta: entry.Meta})
	if err != nil {
		return err
	}
	_, err = k.kv.Put(ctx, key, data)
	return err
}

func (k *KvStore) Get(ctx context.Context, key string) (entry kv.Entry, err error) {
	v, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return entry, kv.ErrNotFound
		}
		return entry, fmt.Errorf("failed to get %s: %w", key, err)
	}
	var rec kvRecord
	if err := json.Unmarshal(v.Value(), &rec); err != nil {
		return entry, err
	}
	return kv.Entry{Data: rec.Data, Meta: rec.Meta}, nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	err := k.kv.Delete(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (k *KvStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, err := k.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = lister.Stop() }()

	var keys []string
	for key := range lister.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

var _ kv.Store = (*KvStore)(nil)
