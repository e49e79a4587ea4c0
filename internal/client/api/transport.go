// Package api implements the client's data-access core: a transport that
// performs one HTTP exchange, a retrier that re-attempts failed exchanges,
// and a typed error taxonomy shared by both.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP exchange, including connection setup
// and reading the response body.
const DefaultTimeout = 10 * time.Second

// FilePart is a binary attachment for a multipart request.
type FilePart struct {
	Field   string
	Name    string
	Content []byte
}

// Request describes one logical exchange with the backend.
//
// Body policy: when Form fields or Files are present the request is encoded
// as multipart/form-data and the Content-Type (with boundary) comes from the
// multipart writer; otherwise a non-nil Body is serialized to JSON and
// Content-Type is set to application/json unless the caller supplied one.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   map[string]string
	Files  []FilePart
	Header http.Header

	// Idempotent marks the call as safe to re-attempt after a response may
	// have been produced (server errors). The decision belongs to the
	// service layer, not to the retrier.
	Idempotent bool
}

// Response is a successful (2xx) exchange. Data holds the raw response body
// for the caller to decode; Message is the optional envelope message.
type Response struct {
	Status  int
	Data    json.RawMessage
	Message string
}

// TokenSource supplies the current bearer credential, or "" when anonymous.
type TokenSource func() string

// Client sends individual HTTP exchanges. It owns the timeout and body
// encoding decisions and knows nothing about sessions or caches beyond the
// token source hook.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	token   TokenSource
}

// NewClient builds a Client for the given API root (e.g.
// "http://localhost:3000/api"). A nil token source means all requests go out
// anonymous. A non-positive timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		token:   token,
	}
}

// Do performs one exchange. Failures are always surfaced as *Error: transport
// problems via Classify, HTTP statuses >= 400 via the parsed error body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, Classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err)
	}

	if resp.StatusCode >= 400 {
		return nil, newHTTPError(resp.StatusCode, body)
	}

	out := &Response{Status: resp.StatusCode, Data: body}

	// Some endpoints wrap the payload with a human-readable message.
	var env struct {
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		out.Message = env.Message
	}
	return out, nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""

	switch {
	case len(req.Files) > 0 || len(req.Form) > 0:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)
		for field, value := range req.Form {
			if err := w.WriteField(field, value); err != nil {
				return nil, fmt.Errorf("encode form field %q: %w", field, err)
			}
		}
		for _, f := range req.Files {
			part, err := w.CreateFormFile(f.Field, f.Name)
			if err != nil {
				return nil, fmt.Errorf("encode file field %q: %w", f.Field, err)
			}
			if _, err := part.Write(f.Content); err != nil {
				return nil, fmt.Errorf("encode file field %q: %w", f.Field, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finish multipart body: %w", err)
		}
		body = buf
		contentType = w.FormDataContentType()
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if tok := c.token(); tok != "" {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}

	return httpReq, nil
}
