package reqflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/denysbsb/reqflow/mapping"
)

// Unmarshaler decodes response bodies for the typed helpers.
type Unmarshaler interface {
	Unmarshal(data []byte, v any) error
}

// JSONUnmarshaler decodes with encoding/json.
type JSONUnmarshaler struct{}

func (JSONUnmarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// WithUnmarshaler replaces the decoder used by GetJSON, PostJSON and DoJSON.
func WithUnmarshaler(u Unmarshaler) Option {
	return func(c *Client) {
		c.unmarshaler = u
	}
}

// GetJSON performs a GET and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.DoJSON(req, v)
}

// PostJSON encodes body as JSON, POSTs it and decodes the response into v.
// A nil body sends an empty request.
func (c *Client) PostJSON(ctx context.Context, url string, body, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrorTypeValidation, Message: "failed to marshal request body", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.DoJSON(req, v)
}

// DoJSON executes req and decodes the JSON body into v. An empty body (for
// example a 204) leaves v untouched.
func (c *Client) DoJSON(req *http.Request, v any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	if resp.Empty() || v == nil {
		return nil
	}

	u := c.unmarshaler
	if u == nil {
		u = JSONUnmarshaler{}
	}
	if err := u.Unmarshal(resp.Body, v); err != nil {
		return c.createClientError(ErrorTypeDecode, "failed to unmarshal response", err, "", req, resp, resp.Duration)
	}
	return nil
}

// GetMapped performs a GET and applies m to the JSON body.
func (c *Client) GetMapped(ctx context.Context, url string, m *mapping.Mapper) (mapping.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.DoMapped(req, m)
}

// DoMapped executes req and applies m to the JSON body. An empty body
// yields a nil Result.
func (c *Client) DoMapped(req *http.Request, m *mapping.Mapper) (mapping.Result, error) {
	if m == nil {
		return nil, &ClientError{Type: ErrorTypeValidation, Message: "mapper cannot be nil"}
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.Empty() {
		c.metrics.RecordMapping("empty")
		return nil, nil
	}

	result, err := resp.Map(m)
	if err != nil {
		c.metrics.RecordMapping("error")
		return nil, c.createClientError(ErrorTypeMapping, fmt.Sprintf("failed to map response from %s", resp.URL), err, "", req, resp, resp.Duration)
	}
	c.metrics.RecordMapping("ok")
	return result, nil
}
