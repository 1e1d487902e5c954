package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-placemarks/internal/coordinates"
	"github.com/goliatone/go-placemarks/internal/logging"
	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

const (
	DefaultEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultTimeout  = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// Config captures the endpoint and request parameters sent to the geocoding API.
type Config struct {
	Endpoint  string
	APIKey    string
	Language  string
	Region    string
	UserAgent string
	Timeout   time.Duration
}

// Client resolves addresses through a Google-compatible geocoding endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  interfaces.Logger
	metrics Metrics
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the transport used for outbound requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger attaches a logger used for request diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics wires the recorder used for request telemetry.
func WithMetrics(metrics Metrics) Option {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// NewClient constructs a geocoding client. Empty endpoint and zero timeout fall
// back to DefaultEndpoint and DefaultTimeout.
func NewClient(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{},
		logger:  logging.NoOp(),
		metrics: NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves address to coordinates. Input that already is a valid
// "lat,lon" pair is returned without contacting the service.
func (c *Client) Geocode(ctx context.Context, address string) (interfaces.Coordinates, error) {
	if coords, ok := coordinates.Validate(address); ok {
		c.metrics.IncrementBypass()
		logging.WithFields(c.baseLogger(ctx), map[string]any{
			"operation": "geocoding.geocode",
		}).Debug("geocoding.geocode.bypassed")
		return coords, nil
	}

	trimmed := strings.TrimSpace(address)
	query := url.Values{}
	query.Set("address", trimmed)

	payload, err := c.request(ctx, "geocode", query)
	if err != nil {
		return interfaces.Coordinates{}, err
	}
	if len(payload.Results) == 0 {
		return interfaces.Coordinates{}, c.fail(ctx, "geocode", noResults(trimmed))
	}

	location := payload.Results[0].Geometry.Location
	coords, err := coordinates.Parse(coordinates.Format(interfaces.Coordinates{
		Latitude:  location.Lat,
		Longitude: location.Lng,
	}))
	if err != nil {
		return interfaces.Coordinates{}, c.fail(ctx, "geocode", malformedResponse(err))
	}
	return coords, nil
}

// ReverseGeocode resolves a coordinate pair to the first formatted address
// reported by the service.
func (c *Client) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	pair := coordinates.Format(interfaces.Coordinates{Latitude: latitude, Longitude: longitude})
	if _, err := coordinates.Parse(pair); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "reverse geocode requires valid coordinates").
			WithTextCode(TextCodeInvalidInput)
	}

	query := url.Values{}
	query.Set("latlng", pair)

	payload, err := c.request(ctx, "reverse", query)
	if err != nil {
		return "", err
	}
	if len(payload.Results) == 0 || strings.TrimSpace(payload.Results[0].FormattedAddress) == "" {
		return "", c.fail(ctx, "reverse", noResults(pair))
	}
	return payload.Results[0].FormattedAddress, nil
}

func (c *Client) request(ctx context.Context, operation string, query url.Values) (*apiResponse, error) {
	start := time.Now()
	payload, err := c.do(ctx, query)
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(operation, outcomeOf(err), elapsed)

	fields := map[string]any{
		"operation":   "geocoding." + operation,
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		fields["kind"] = string(KindOf(err))
		logging.WithFields(c.baseLogger(ctx), fields).Warn("geocoding.request.failed")
		return nil, err
	}
	logging.WithFields(c.baseLogger(ctx), fields).Debug("geocoding.request.succeeded")
	return payload, nil
}

func (c *Client) do(ctx context.Context, query url.Values) (*apiResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint, err := c.buildURL(query)
	if err != nil {
		return nil, networkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, networkError(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, httpError(res.StatusCode, statusText(res), stripTags(body))
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, malformedResponse(err)
	}
	if payload.Status == statusRequestDenied {
		return nil, requestDenied(payload.ErrorMessage)
	}
	return &payload, nil
}

func (c *Client) buildURL(query url.Values) (string, error) {
	base, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("geocoding: invalid endpoint %q: %w", c.cfg.Endpoint, err)
	}
	merged := base.Query()
	for key, values := range query {
		for _, value := range values {
			merged.Add(key, value)
		}
	}
	if c.cfg.APIKey != "" {
		merged.Set("key", c.cfg.APIKey)
	}
	if c.cfg.Language != "" {
		merged.Set("language", c.cfg.Language)
	}
	if c.cfg.Region != "" {
		merged.Set("region", c.cfg.Region)
	}
	base.RawQuery = merged.Encode()
	return base.String(), nil
}

func (c *Client) fail(ctx context.Context, operation string, err error) error {
	logging.WithFields(c.baseLogger(ctx), map[string]any{
		"operation": "geocoding." + operation,
		"kind":      string(KindOf(err)),
	}).Info("geocoding.request.unresolved")
	return err
}

func (c *Client) baseLogger(ctx context.Context) interfaces.Logger {
	logger := c.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

func statusText(res *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return text
}

var _ interfaces.Geocoder = (*Client)(nil)
