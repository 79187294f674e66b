package content

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) FindActiveByID(ctx context.Context, contentID string) (Record, error) {
	args := m.Called(ctx, contentID)
	return args[0].(Record), args.Error(1)
}

type FetcherMock struct {
	mock.Mock
}

func (m *FetcherMock) FetchByContentID(ctx context.Context, contentID string) (json.RawMessage, error) {
	args := m.Called(ctx, contentID)

	var data json.RawMessage
	if v := args.Get(0); v != nil {
		data = v.(json.RawMessage)
	}

	return data, args.Error(1)
}
