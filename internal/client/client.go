// Package client talks to the /predict endpoint of the classification service.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Brownie44l1/mri-api/internal/model"
	"github.com/go-resty/resty/v2"
)

const DefaultEndpoint = "/predict"

var (
	// ErrMalformedResponse is returned when the body is not a JSON object.
	ErrMalformedResponse = errors.New("malformed prediction response")
	// ErrUnexpectedStatus is returned for non-2xx responses that carry no
	// error message of their own.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

type Options struct {
	// BaseURL is prepended to Endpoint. Empty means Endpoint is used as is.
	BaseURL  string
	Endpoint string
	// Timeout bounds a whole request. Zero leaves the HTTP client default.
	Timeout time.Duration
}

type Client struct {
	httpClient *resty.Client
	endpoint   string
}

func New(opts Options) *Client {
	c := Client{endpoint: DefaultEndpoint}
	if opts.Endpoint != "" {
		c.endpoint = opts.Endpoint
	}
	c.httpClient = resty.New().
		SetDebug(false).
		SetHeader("Accept", "application/json")
	if opts.BaseURL != "" {
		c.httpClient.SetBaseURL(opts.BaseURL)
	}
	if opts.Timeout > 0 {
		c.httpClient.SetTimeout(opts.Timeout)
	}
	return &c
}

// Predict uploads the image as multipart form data under the "file" field.
//
// A body carrying a non-empty "error" field is a backend-reported failure:
// it is returned as a Prediction with Error set and a nil error, whatever the
// status code. Anything else must be a 2xx JSON object with both result and
// confidence present.
func (c *Client) Predict(ctx context.Context, filename string, content io.Reader) (*model.Prediction, error) {
	res, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, content).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: POST %s: %w", c.endpoint, err)
	}

	var body wireResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w (status: %d): %v", ErrMalformedResponse, res.StatusCode(), err)
	}
	if msg, ok := body.errorMessage(); ok {
		return &model.Prediction{Error: msg}, nil
	}
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, fmt.Errorf("%w: POST %s (status: %d)", ErrUnexpectedStatus, c.endpoint, res.StatusCode())
	}
	if body.Result == nil || body.Confidence == nil {
		return nil, fmt.Errorf("%w: result and confidence are required (status: %d)", ErrMalformedResponse, res.StatusCode())
	}

	return &model.Prediction{
		Result:      *body.Result,
		Confidence:  *body.Confidence,
		Predictions: body.Predictions,
	}, nil
}

// wireResponse keeps absent fields distinguishable from zero values.
type wireResponse struct {
	Result      *string            `json:"result"`
	Confidence  *float64           `json:"confidence"`
	Predictions map[string]float64 `json:"predictions"`
	Error       json.RawMessage    `json:"error"`
}

// errorMessage returns the backend error text. Empty, null, false and zero
// count as no error; other non-string values are shown as their JSON text.
func (w wireResponse) errorMessage() (string, bool) {
	raw := strings.TrimSpace(string(w.Error))
	switch raw {
	case "", "null", "false", "0", `""`:
		return "", false
	}
	var msg string
	if err := json.Unmarshal(w.Error, &msg); err == nil {
		return msg, true
	}
	return raw, true
}
