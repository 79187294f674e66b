package partner

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type ClientMock struct {
	mock.Mock
}

func (m *ClientMock) Read(ctx context.Context, partnerID string) (Partner, error) {
	args := m.Called(ctx, partnerID)

	return args.Get(0).(Partner), args.Error(1)
}
