package response

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/apierr"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/logging"
)

var now = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	ctx := logging.WithCorrelationID(context.Background(), "3c0d6b1e-8f59-4b8e-9f0e-5b8f7c0e1a2b")

	e := New(ctx, "api.cios.enrollment.create", now)

	assert.True(t, e.IsSuccess())
	assert.Equal(t, http.StatusOK, e.StatusCode)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "api.cios.enrollment.create",
		"ver": "v1",
		"ts": "2024-03-14T10:00:00Z",
		"params": {"msgid": "3c0d6b1e-8f59-4b8e-9f0e-5b8f7c0e1a2b", "status": "success"},
		"responseCode": "OK",
		"result": {}
	}`, string(data))
}

func TestNew_GeneratesMsgID(t *testing.T) {
	a := New(context.Background(), "api.cios.content.read", now)
	b := New(context.Background(), "api.cios.content.read", now)

	assert.NotEmpty(t, a.Params.MsgID)
	assert.NotEqual(t, a.Params.MsgID, b.Params.MsgID)
}

func TestFailure(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		status       int
		responseCode string
	}{
		{name: "unauthorized", err: apierr.Unauthorized("user id does not exist"), status: http.StatusUnauthorized, responseCode: "UNAUTHORIZED"},
		{name: "bad_request", err: errors.Trace(apierr.BadRequest("courseId is mandatory")), status: http.StatusBadRequest, responseCode: "BAD_REQUEST"},
		{name: "internal", err: errors.New("kafka: leader not available"), status: http.StatusInternalServerError, responseCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Failure(context.Background(), "api.cios.enrollment.read.courseid", now, tt.err)

			assert.False(t, e.IsSuccess())
			assert.Equal(t, StatusFailed, e.Params.Status)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.Equal(t, tt.responseCode, e.ResponseCode)
			assert.NotEmpty(t, e.Params.Message)
		})
	}
}

func TestResponseCode(t *testing.T) {
	assert.Equal(t, "OK", ResponseCode(http.StatusOK))
	assert.Equal(t, "NOT_FOUND", ResponseCode(http.StatusNotFound))
	assert.Equal(t, "UNKNOWN", ResponseCode(799))
}
