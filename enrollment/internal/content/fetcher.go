package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/juju/errors"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/cache"
)

const cacheKeyPrefix = "content:"

func CacheKey(contentID string) string {
	return cacheKeyPrefix + contentID
}

type Fetcher interface {
	// FetchByContentID returns the cios_data document of an active content.
	FetchByContentID(ctx context.Context, contentID string) (json.RawMessage, error)
}

type fetcher struct {
	repo  Repository
	cache cache.Cache
	ttl   uint
}

func NewFetcher(repo Repository, c cache.Cache, ttl uint) Fetcher {
	return &fetcher{repo: repo, cache: c, ttl: ttl}
}

func (f *fetcher) FetchByContentID(ctx context.Context, contentID string) (json.RawMessage, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, ErrContentIDMissing
	}

	key := CacheKey(contentID)

	var cached json.RawMessage
	switch err := cache.GetJSON(ctx, f.cache, key, &cached); {
	case err == nil:
		slog.DebugContext(ctx, "content: served from cache", "content_id", contentID)
		return cached, nil
	case !errors.Is(err, cache.ErrNoValueForKey):
		slog.WarnContext(ctx, "content: cache entry ignored", "key", key, "error", err)
	}

	rec, err := f.repo.FindActiveByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return nil, ErrNoDataFound
		}

		return nil, errors.Trace(err)
	}

	data := json.RawMessage(rec.CiosData)
	if err := f.cache.SetEx(ctx, key, string(data), f.ttl); err != nil {
		slog.WarnContext(ctx, "content: cache write failed", "key", key, "error", err)
	}

	return data, nil
}
