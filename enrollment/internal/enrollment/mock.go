package enrollment

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/response"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Enroll(ctx context.Context, body json.RawMessage, token string) (response.Envelope, error) {
	args := m.Called(ctx, body, token)
	return args[0].(response.Envelope), args.Error(1)
}

func (m *ServiceMock) ListByUser(ctx context.Context, token string) (response.Envelope, error) {
	args := m.Called(ctx, token)
	return args[0].(response.Envelope), args.Error(1)
}

func (m *ServiceMock) GetByUserAndCourse(ctx context.Context, courseID, token string) (response.Envelope, error) {
	args := m.Called(ctx, courseID, token)
	return args[0].(response.Envelope), args.Error(1)
}

func (m *ServiceMock) ProgressUpdate(ctx context.Context, payload json.RawMessage, partnerID string) (response.Envelope, error) {
	args := m.Called(ctx, payload, partnerID)
	return args[0].(response.Envelope), args.Error(1)
}

func (m *ServiceMock) FetchContent(ctx context.Context, contentID string) (response.Envelope, error) {
	args := m.Called(ctx, contentID)
	return args[0].(response.Envelope), args.Error(1)
}
