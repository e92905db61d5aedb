package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Versioned caches JSON documents under keys suffixed with a namespace version.
// Bumping the version orphans every key written before it; TTL reclaims them.
type Versioned struct {
	client     *redis.Client
	namespace  string
	ttl        time.Duration
	versionKey string
	channel    string
}

// NewVersioned builds a cache for namespace. A nil client disables caching.
func NewVersioned(client *redis.Client, namespace string, ttl time.Duration) *Versioned {
	return &Versioned{
		client:     client,
		namespace:  namespace,
		ttl:        ttl,
		versionKey: namespace + ":version",
		channel:    namespace + ".bump",
	}
}

func (c *Versioned) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current version, initialising it to 1 when missing.
func (c *Versioned) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, c.versionKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		// SETNX so concurrent initialisers agree.
		if err := c.client.SetNX(ctx, c.versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, c.versionKey).Int64()
	case err != nil:
		return 0, err
	case ver <= 0:
		if err := c.client.Set(ctx, c.versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return ver, nil
}

// Key joins parts under the namespace and appends the current version.
func (c *Versioned) Key(ctx context.Context, parts ...string) (string, error) {
	base := strings.Join(append([]string{c.namespaceOr()}, parts...), ":")
	if !c.enabled() {
		return base, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", base, ver), nil
}

func (c *Versioned) namespaceOr() string {
	if c == nil || c.namespace == "" {
		return "cache"
	}
	return c.namespace
}

// Bump invalidates everything cached so far and notifies subscribers.
func (c *Versioned) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, c.versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, c.channel, strconv.FormatInt(ver, 10)).Err()
}

// Subscribe calls fn with each published version until ctx ends.
func (c *Versioned) Subscribe(ctx context.Context, fn func(version int64)) {
	if !c.enabled() || fn == nil {
		return
	}
	pubsub := c.client.Subscribe(ctx, c.channel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
					fn(ver)
				}
			}
		}
	}()
}

// Fetch returns the cached value at key or stores the loader's result.
// Cache read and write failures fall through to the loader.
func Fetch[T any](ctx context.Context, c *Versioned, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, errors.New("platform/cache: loader required")
	}
	if !c.enabled() {
		return loader(ctx)
	}
	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached T
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return zero, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("platform/cache: encode %s: %w", key, err)
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	return value, nil
}
