package content

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/cache"
)

const ciosData = `{"content": {"name": "Go for beginners", "duration": 3600}}`

func TestFetcher_FetchByContentID(t *testing.T) {
	ctx := context.Background()

	t.Run("miss_then_cached", func(t *testing.T) {
		repo := new(RepositoryMock)
		c := cache.NewMemory()
		repo.On("FindActiveByID", ctx, "do_123").Return(Record{ContentID: "do_123", IsActive: true, CiosData: datatypes.JSON(ciosData)}, nil).Once()

		f := NewFetcher(repo, c, 600)

		data, err := f.FetchByContentID(ctx, "do_123")
		require.NoError(t, err)
		assert.JSONEq(t, ciosData, string(data))

		stored, ok := c.Peek("content:do_123")
		assert.True(t, ok)
		assert.JSONEq(t, ciosData, stored)
		assert.Equal(t, uint(600), c.TTL("content:do_123"))

		data, err = f.FetchByContentID(ctx, "do_123")
		require.NoError(t, err)
		assert.JSONEq(t, ciosData, string(data))

		repo.AssertNumberOfCalls(t, "FindActiveByID", 1)
	})

	t.Run("hit_skips_store", func(t *testing.T) {
		repo := new(RepositoryMock)
		c := cache.NewMemory()
		require.NoError(t, c.SetEx(ctx, "content:do_9", `{"content": {"name": "cached"}}`, 60))

		data, err := NewFetcher(repo, c, 60).FetchByContentID(ctx, "do_9")
		require.NoError(t, err)
		assert.JSONEq(t, `{"content": {"name": "cached"}}`, string(data))
		repo.AssertNotCalled(t, "FindActiveByID")
	})

	t.Run("corrupted_entry_falls_back_to_store", func(t *testing.T) {
		repo := new(RepositoryMock)
		c := cache.NewMemory()
		require.NoError(t, c.SetEx(ctx, "content:do_123", `{"content":`, 60))
		repo.On("FindActiveByID", ctx, "do_123").Return(Record{CiosData: datatypes.JSON(ciosData)}, nil)

		data, err := NewFetcher(repo, c, 60).FetchByContentID(ctx, "do_123")
		require.NoError(t, err)
		assert.JSONEq(t, ciosData, string(data))
	})

	t.Run("cache_failure_is_not_fatal", func(t *testing.T) {
		repo := new(RepositoryMock)
		c := cache.NewMemory()
		c.Err = errors.New("connection refused")
		repo.On("FindActiveByID", ctx, "do_123").Return(Record{CiosData: datatypes.JSON(ciosData)}, nil)

		data, err := NewFetcher(repo, c, 60).FetchByContentID(ctx, "do_123")
		require.NoError(t, err)
		assert.JSONEq(t, ciosData, string(data))
	})

	t.Run("disabled_cache", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("FindActiveByID", ctx, "do_123").Return(Record{CiosData: datatypes.JSON(ciosData)}, nil)

		f := NewFetcher(repo, cache.Disabled(), 60)
		for i := 0; i < 2; i++ {
			_, err := f.FetchByContentID(ctx, "do_123")
			require.NoError(t, err)
		}

		repo.AssertNumberOfCalls(t, "FindActiveByID", 2)
	})

	t.Run("failure_blank_id", func(t *testing.T) {
		repo := new(RepositoryMock)

		_, err := NewFetcher(repo, cache.NewMemory(), 60).FetchByContentID(ctx, " ")
		assert.Equal(t, ErrContentIDMissing, err)
		repo.AssertNotCalled(t, "FindActiveByID")
	})

	t.Run("failure_not_found_is_not_cached", func(t *testing.T) {
		repo := new(RepositoryMock)
		c := cache.NewMemory()
		repo.On("FindActiveByID", ctx, "do_retired").Return(Record{}, ErrContentNotFound)

		_, err := NewFetcher(repo, c, 60).FetchByContentID(ctx, "do_retired")
		assert.Equal(t, ErrNoDataFound, err)

		_, ok := c.Peek("content:do_retired")
		assert.False(t, ok)
	})

	t.Run("failure_store", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("FindActiveByID", ctx, "do_123").Return(Record{}, errors.New("connection reset"))

		_, err := NewFetcher(repo, cache.NewMemory(), 60).FetchByContentID(ctx, "do_123")
		assert.ErrorContains(t, err, "connection reset")
		assert.False(t, errors.Is(err, ErrNoDataFound))
	})
}

