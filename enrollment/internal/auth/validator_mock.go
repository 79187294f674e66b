package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) UserID(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
