package response

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/apierr"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/logging"
)

const (
	Version = "v1"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Params carries the per-response metadata.
type Params struct {
	MsgID   string `json:"msgid"`
	Status  string `json:"status"`
	Message string `json:"errmsg,omitempty"`
}

// Envelope is the uniform wrapper every operation answers with.
type Envelope struct {
	ID           string `json:"id"`
	Version      string `json:"ver"`
	Timestamp    string `json:"ts"`
	Params       Params `json:"params"`
	ResponseCode string `json:"responseCode"`
	Result       any    `json:"result"`

	StatusCode int `json:"-"`
}

// New returns a successful envelope for the given API id. The message id is
// the request's correlation id when one is in ctx.
func New(ctx context.Context, api string, now time.Time) Envelope {
	msgID := logging.CorrelationID(ctx)
	if msgID == "" {
		msgID = uuid.NewString()
	}

	e := Envelope{
		ID:        api,
		Version:   Version,
		Timestamp: now.Format(time.RFC3339Nano),
		Params: Params{
			MsgID:  msgID,
			Status: StatusSuccess,
		},
		Result: map[string]any{},
	}
	e.SetStatusCode(http.StatusOK)

	return e
}

// Failure builds the failed envelope for err.
func Failure(ctx context.Context, api string, now time.Time, err error) Envelope {
	apiErr := apierr.From(err)

	e := New(ctx, api, now)
	e.Params.Status = StatusFailed
	e.Params.Message = apiErr.Error()
	e.SetStatusCode(apiErr.Status())

	return e
}

// WithMessage sets a success message, used for "nothing found" answers that
// are not failures.
func (e Envelope) WithMessage(msg string) Envelope {
	e.Params.Message = msg

	return e
}

func (e Envelope) WithResult(result any) Envelope {
	e.Result = result

	return e
}

func (e *Envelope) SetStatusCode(code int) {
	e.StatusCode = code
	e.ResponseCode = ResponseCode(code)
}

func (e Envelope) IsSuccess() bool {
	return e.Params.Status == StatusSuccess
}

// ResponseCode renders an HTTP status as an upper snake case name, e.g.
// 400 -> BAD_REQUEST.
func ResponseCode(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "UNKNOWN"
	}

	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
