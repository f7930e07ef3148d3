package jupiter

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// contains http utils to deal with the jupiter services

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base   http.RoundTripper
	dir    string // defaults to os.TempDir()
	logger zerolog.Logger
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a cached response of the day is not found, it
// proceeds with the actual HTTP request and caches the new response if it's
// successful.
func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// diskcache implements a unique key per day, so the local tmp expires every day.
	key := fmt.Sprintf("%s %s %s", time.Now().Format(time.DateOnly), req.Method, req.URL.String())
	key = fmt.Sprintf("janitor-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("method", req.Method).Str("url", req.URL.Host+req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	if err := c.put(key, resp); err != nil {
		c.logger.Debug().Err(err).Msg("cache write err (ignored)")
	}
	return resp, nil
}

func (c *diskCache) file(key string) string {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0644)
}

// newDailyCachingClient returns an http.Client that uses a disk cache where entries expire daily.
func newDailyCachingClient(dir string, logger zerolog.Logger) *http.Client {
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, dir: dir, logger: logger}
	return client
}

// StatusError is returned for non 2xx responses, with the response body.
type StatusError struct {
	Method, URL string
	StatusCode  int
	Status      string
	Body        []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http %s %s: %s %s", e.Method, e.URL, e.Status, bytes.TrimSpace(e.Body))
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into the provided data structure.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	return jwdo(client, req, data)
}

// jwpost marshals body as JSON, POSTs it to addr, and unmarshals the JSON
// response into data.
func jwpost(ctx context.Context, client *http.Client, addr string, body, data any) error {
	content, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return jwdo(client, req, data)
}

func jwdo(client *http.Client, req *http.Request, data any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method:     req.Method,
			URL:        req.URL.Host + req.URL.Path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       buf.Bytes(),
		}
	}
	return json.Unmarshal(buf.Bytes(), data)
}
