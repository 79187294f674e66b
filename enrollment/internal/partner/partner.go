// Package partner reads content partner definitions from the partner API.
package partner

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/juju/errors"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

var (
	ErrMissingPartnerID = errors.New("partner: partner id is mandatory")
	ErrUnexpectedStatus = errors.New("partner: unexpected status from partner read API")
	ErrMalformedBody    = errors.New("partner: malformed partner read response")
)

// Partner is the "result" object returned by the partner read API.
type Partner struct {
	Raw json.RawMessage
	// TransformProgressJSON is the Jolt style operation used to map a
	// partner progress payload to the internal progress event, if any.
	TransformProgressJSON json.RawMessage
}

func (p Partner) HasProgressTransform() bool {
	return len(p.TransformProgressJSON) > 0 && string(p.TransformProgressJSON) != "null"
}

type Client interface {
	Read(ctx context.Context, partnerID string) (Partner, error)
}

type restClient struct {
	http     *resty.Client
	readPath string
}

func NewClient(cfg config.PartnerAPIConfig) Client {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")

	if cfg.APIToken != "" {
		c.SetAuthToken(cfg.APIToken)
	}

	return &restClient{http: c, readPath: cfg.ReadPath}
}

type readResponse struct {
	Result json.RawMessage `json:"result"`
}

func (c *restClient) Read(ctx context.Context, partnerID string) (Partner, error) {
	if strings.TrimSpace(partnerID) == "" {
		return Partner{}, errors.Trace(ErrMissingPartnerID)
	}

	var body readResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		ForceContentType("application/json").
		Get(c.readPath + partnerID)
	if err != nil {
		return Partner{}, errors.Annotatef(err, "partner: reading %s", partnerID)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return Partner{}, errors.Annotatef(ErrUnexpectedStatus, "status code %d", resp.StatusCode())
	}

	return decodeResult(body.Result)
}

func decodeResult(result json.RawMessage) (Partner, error) {
	p := Partner{Raw: result}
	if len(result) == 0 || string(result) == "null" {
		return p, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(result, &fields); err != nil {
		return Partner{}, errors.Annotate(ErrMalformedBody, err.Error())
	}

	spec, ok := fields["transformProgressJson"]
	if !ok {
		return p, nil
	}

	// Some partners are stored with the operation serialised as a string.
	var encoded string
	if err := json.Unmarshal(spec, &encoded); err == nil {
		spec = json.RawMessage(encoded)
	}

	p.TransformProgressJSON = spec

	return p, nil
}
