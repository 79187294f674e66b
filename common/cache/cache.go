package cache

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/mediocregopher/radix/v4"
)

var ErrNoValueForKey = errors.New("cache: no value found for the given key")

// Cache is a best-effort accelerator. Nothing stored in it is authoritative.
type Cache interface {
	SetEx(ctx context.Context, key, value string, seconds uint) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCache struct {
	redis radix.Client
}

func NewCache(redis radix.Client) Cache {
	return &redisCache{redis: redis}
}

func (c *redisCache) SetEx(ctx context.Context, key, value string, seconds uint) error {
	err := c.redis.Do(
		ctx,
		radix.FlatCmd(nil, "SETEX", key, seconds, value),
	)

	return errors.Trace(err)
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	var out string

	mb := radix.Maybe{Rcv: &out}
	if err := c.redis.Do(ctx, radix.Cmd(&mb, "GET", key)); err != nil {
		return "", errors.Trace(err)
	}

	if mb.Null || out == "" {
		return "", ErrNoValueForKey
	}

	return out, nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	err := c.redis.Do(ctx, radix.Cmd(nil, "DEL", key))

	return errors.Trace(err)
}

type disabled struct{}

// Disabled returns a Cache that never holds anything, used when caching is
// switched off by configuration.
func Disabled() Cache {
	return disabled{}
}

func (disabled) SetEx(context.Context, string, string, uint) error { return nil }

func (disabled) Get(context.Context, string) (string, error) { return "", ErrNoValueForKey }

func (disabled) Delete(context.Context, string) error { return nil }

// GetJSON reads key and decodes it into dest. ErrNoValueForKey is returned
// untouched on a miss.
func GetJSON(ctx context.Context, c Cache, key string, dest any) error {
	cached, err := c.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNoValueForKey) {
			return err
		}

		return errors.Trace(err)
	}

	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		return errors.Annotatef(err, "cache: decoding %s", key)
	}

	return nil
}

// SetJSON encodes v and stores it under key for the given number of seconds.
func SetJSON(ctx context.Context, c Cache, key string, v any, seconds uint) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Trace(err)
	}

	return errors.Trace(c.SetEx(ctx, key, string(data), seconds))
}
