// Package remotesvc is the thin client for the remote school API. The
// remote side is best-effort by design: its wire shapes are not
// guaranteed, so everything is normalized defensively on the way in.
package remotesvc

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/incluso/backend/core"
)

const defaultTimeout = 10 * time.Second

// RequestError is a non-2xx response, with the raw body kept for
// callers that want to inspect it.
type RequestError struct {
	Status  int
	Body    string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("remote: request failed (%d): %s", e.Status, e.Message)
}

// TimeoutError is produced when the per-call deadline elapses before a
// response; callers treat it exactly like a network failure.
type TimeoutError struct {
	Status  int // always http.StatusRequestTimeout
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("remote: request timed out after %s", e.Timeout)
}

// IsNotFound reports whether err is a 404 response. A 404 doubles as a
// control-flow signal: list reads turn it into an empty set and
// mutations retry the nested resource path.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return stderrors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewClient(conf *core.Config) *Client {
	timeout := conf.Remote.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: conf.Remote.BaseURL,
		http:    &http.Client{},
		timeout: timeout,
	}
}

// request performs one call under the client's timeout. bearer, when
// non-empty, is sent as an Authorization header.
func (c *Client) request(ctx context.Context, method, path, bearer string, payload interface{}) (body, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return body{}, errors.Wrap(err, "remote: encoding payload")
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return body{}, errors.Wrap(err, "remote: building request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return body{}, &TimeoutError{Status: http.StatusRequestTimeout, Timeout: c.timeout}
		}
		return body{}, errors.Wrap(err, "remote: "+method+" "+path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return body{}, errors.Wrap(err, "remote: reading response")
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return body{}, &RequestError{
			Status:  res.StatusCode,
			Body:    string(raw),
			Message: messageFromBody(raw, res.StatusCode),
		}
	}
	return body{raw: raw}, nil
}

// messageFromBody pulls a human-readable message out of an error body,
// falling back to the status text.
func messageFromBody(raw []byte, status int) string {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}

// body is a successful response payload: JSON when parseable, raw text
// otherwise.
type body struct {
	raw []byte
}

func (b body) Text() string { return string(b.raw) }

// Map decodes the body as a JSON object.
func (b body) Map() (map[string]interface{}, bool) {
	var m map[string]interface{}
	if err := json.Unmarshal(b.raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// List normalizes the accepted list envelopes into a slice of records:
// a bare array, {"value": [...]}, {"data": [...]} or {"<collection>": [...]}.
// Anything else is an error rather than a silent empty set.
func (b body) List(collection string) ([]map[string]interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(b.raw, &v); err != nil {
		return nil, errors.Wrap(err, "remote: list response is not JSON")
	}

	switch t := v.(type) {
	case []interface{}:
		return toRecords(t), nil
	case map[string]interface{}:
		for _, key := range []string{"value", "data", collection} {
			if arr, ok := t[key].([]interface{}); ok {
				return toRecords(arr), nil
			}
		}
	}
	return nil, errors.Errorf("remote: unrecognized %s list shape", collection)
}

func toRecords(arr []interface{}) []map[string]interface{} {
	records := make([]map[string]interface{}, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records
}
