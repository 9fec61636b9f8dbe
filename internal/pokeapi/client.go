// Package pokeapi talks to the public PokéAPI and maps its payloads into
// models.Pokemon.
package pokeapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

const DefaultBaseURL = "https://pokeapi.co/api/v2"

// maxBodyBytes bounds how much of a response we are willing to buffer.
const maxBodyBytes = 8 << 20

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	Logger   logrus.FieldLogger
}

// Client is constructed once and shared by every handler and orchestration
// run; it carries the connection pool and the per-call timeout.
type Client struct {
	BaseURL string
	HTTP    *retryablehttp.Client
	Log     logrus.FieldLogger
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "pokeapi")

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = leveledLogger{log}
	// hand every final response back so status mapping happens in one place
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		HTTP:    rc,
		Log:     log,
	}
}

// ListNames returns up to limit Pokémon names in PokéAPI order.
func (c *Client) ListNames(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	u := c.BaseURL + "/pokemon?limit=" + strconv.Itoa(limit)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("pokeapi: list: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("pokeapi: list: invalid json: %w", apperr.ErrTransport)
	}

	results := gjson.GetBytes(body, "results.#.name").Array()
	names := make([]string, 0, min(len(results), limit))
	for _, r := range results {
		if len(names) == limit {
			break
		}
		if name := strings.TrimSpace(r.String()); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetDetail returns the raw detail payload for name. A 404 from PokéAPI
// maps to apperr.ErrNotFound; any other failure to apperr.ErrTransport.
func (c *Client) GetDetail(ctx context.Context, name string) ([]byte, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("pokeapi: empty name: %w", apperr.ErrValidation)
	}

	body, err := c.get(ctx, c.BaseURL+"/pokemon/"+url.PathEscape(name))
	if err != nil {
		return nil, fmt.Errorf("pokeapi: get %s: %w", name, err)
	}
	return body, nil
}

// Fetch is GetDetail followed by Normalize.
func (c *Client) Fetch(ctx context.Context, name string) (models.Pokemon, error) {
	raw, err := c.GetDetail(ctx, name)
	if err != nil {
		return models.Pokemon{}, err
	}
	return Normalize(raw)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("request: %v: %w", err, apperr.ErrTransport)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, apperr.ErrTransport)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, apperr.ErrTransport)
	}
	return body, nil
}

// leveledLogger adapts logrus to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log logrus.FieldLogger
}

func (l leveledLogger) fields(kv []interface{}) logrus.FieldLogger {
	entry := l.log
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		entry = entry.WithField(key, kv[i+1])
	}
	return entry
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Debug(msg) }
