// Package client talks to the remote meal-analysis service over JSON/HTTP.
//
// Client implements orchestration.Service. Every call carries a request ID,
// an optional bearer token, an OpenTelemetry span and Prometheus
// measurements when a Recorder is configured.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/logging"
	"github.com/agbru/glmeal/internal/orchestration"
)

// Endpoint paths relative to the base URL.
const (
	PathParse       = "/parse-meal-chat"
	PathSmartParse  = "/parse-meal-smart"
	PathPortionInfo = "/portion-info"
	PathCalculate   = "/calculate-gl"
	PathHealth      = "/health"
	PathFoods       = "/foods"
)

const (
	// DefaultTimeout bounds a single request when no timeout is configured.
	DefaultTimeout = 30 * time.Second
	// RequestIDHeader carries the per-request correlation ID.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 4 << 20
	userAgent        = "glmeal/1.0"
	tracerName       = "github.com/agbru/glmeal/internal/client"
)

// Outcome labels passed to Recorder.ObserveRequest.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeQuota   = "quota_exceeded"
)

// Recorder receives request measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	IncrementInFlight()
	DecrementInFlight()
	ObserveRequest(operation, outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) IncrementInFlight()                           {}
func (nopRecorder) DecrementInFlight()                           {}
func (nopRecorder) ObserveRequest(string, string, time.Duration) {}

// Client is an HTTP implementation of orchestration.Service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     logging.Logger
	recorder   Recorder
	tracer     trace.Tracer
	newID      func() string
}

var _ orchestration.Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracerProvider sets the OpenTelemetry provider used for spans. The
// global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a client for the service at baseURL.
//
// Parameters:
//   - baseURL: Absolute http or https URL of the service.
//   - opts: Optional settings.
//
// Returns:
//   - *Client: The configured client.
//   - error: A ConfigError when baseURL is not usable.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.NewConfigError("invalid service URL %q: expected http(s)://host[:port]", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Nop(),
		recorder:   nopRecorder{},
		tracer:     otel.Tracer(tracerName),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ParseMeal implements orchestration.Service.
//
// The service answers either with a bare array of items or with an object
// holding the items under "meal"; both are accepted. Items without a
// quantity count as one portion.
func (c *Client) ParseMeal(ctx context.Context, text string) ([]orchestration.MealItem, error) {
	body, err := c.do(ctx, "parse", http.MethodPost, PathParse, map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	return decodeMealItems(body)
}

func decodeMealItems(body []byte) ([]orchestration.MealItem, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse: malformed JSON response")
	}
	root := gjson.ParseBytes(body)
	list := root
	if !root.IsArray() {
		list = root.Get("meal")
		if !list.Exists() {
			list = root.Get("items")
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("parse: response has no item list")
	}

	items := make([]orchestration.MealItem, 0, len(list.Array()))
	var decodeErr error
	list.ForEach(func(_, v gjson.Result) bool {
		food := strings.TrimSpace(v.Get("food").String())
		if food == "" {
			decodeErr = fmt.Errorf("parse: item without food name: %s", v.Raw)
			return false
		}
		qty := 1.0
		if q := v.Get("quantity"); q.Exists() && q.Type != gjson.Null {
			qty = q.Float()
		}
		if qty < 0 {
			decodeErr = fmt.Errorf("parse: negative quantity for %q", food)
			return false
		}
		items = append(items, orchestration.MealItem{Food: food, Quantity: qty})
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return items, nil
}

// SmartParse implements orchestration.Service.
func (c *Client) SmartParse(ctx context.Context, text string) (orchestration.SmartParseResult, error) {
	var res orchestration.SmartParseResult
	body, err := c.do(ctx, "smart-parse", http.MethodPost, PathSmartParse, map[string]string{"text": text})
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return orchestration.SmartParseResult{}, fmt.Errorf("smart-parse: decode response: %w", err)
	}
	if res.Status == "" {
		res.Status = orchestration.SmartParseStatusSuccess
	}
	return res, nil
}

// PortionInfo implements orchestration.Service.
func (c *Client) PortionInfo(ctx context.Context, food string) (orchestration.PortionInfo, error) {
	var info orchestration.PortionInfo
	body, err := c.do(ctx, "portion-info", http.MethodPost, PathPortionInfo, map[string]string{"food": food})
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return orchestration.PortionInfo{}, fmt.Errorf("portion-info: decode response: %w", err)
	}
	return info, nil
}

// CalculateGL implements orchestration.Service.
func (c *Client) CalculateGL(ctx context.Context, meal []orchestration.MealItem) (orchestration.GLResult, error) {
	var res orchestration.GLResult
	if meal == nil {
		meal = []orchestration.MealItem{}
	}
	body, err := c.do(ctx, "calculate", http.MethodPost, PathCalculate, map[string]any{"meal": meal})
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return orchestration.GLResult{}, fmt.Errorf("calculate: decode response: %w", err)
	}
	if res.TotalGL < 0 {
		return orchestration.GLResult{}, fmt.Errorf("calculate: negative total GL %v", res.TotalGL)
	}
	return res, nil
}

// HealthStatus is the service liveness report.
type HealthStatus struct {
	Status         string `json:"status"`
	DatabaseLoaded bool   `json:"database_loaded"`
	TotalFoods     int    `json:"total_foods"`
}

// Healthy reports whether the service is up with its food database loaded.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy" && h.DatabaseLoaded
}

// Health queries the liveness endpoint.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var h HealthStatus
	body, err := c.do(ctx, "health", http.MethodGet, PathHealth, nil)
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return HealthStatus{}, fmt.Errorf("health: decode response: %w", err)
	}
	return h, nil
}

// FoodSummary is one entry of the service's food database.
type FoodSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Foods lists the foods known to the service.
func (c *Client) Foods(ctx context.Context) ([]FoodSummary, error) {
	body, err := c.do(ctx, "foods", http.MethodGet, PathFoods, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Foods []FoodSummary `json:"foods"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("foods: decode response: %w", err)
	}
	if payload.Foods == nil {
		payload.Foods = []FoodSummary{}
	}
	return payload.Foods, nil
}

// do performs one request and returns the body of a 2xx response. Any other
// status becomes a RemoteError.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	requestID := c.newID()
	ctx, span := c.tracer.Start(ctx, "glmeal.client."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("glmeal.request_id", requestID),
		))
	defer span.End()

	log := c.logger
	fields := []logging.Field{logging.String("operation", op), logging.String("request_id", requestID)}

	var reqBody io.Reader = http.NoBody
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode request")
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.recorder.IncrementInFlight()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	c.recorder.DecrementInFlight()

	if err != nil {
		c.recorder.ObserveRequest(op, outcomeError, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		log.Error("remote request failed", err, append(fields, logging.Duration("elapsed", elapsed))...)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if err != nil {
		c.recorder.ObserveRequest(op, outcomeError, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := apperrors.RemoteError{Operation: op, StatusCode: resp.StatusCode, Message: errorMessage(body)}
		outcome := outcomeError
		if remoteErr.QuotaExceeded() {
			outcome = outcomeQuota
		}
		c.recorder.ObserveRequest(op, outcome, elapsed)
		span.RecordError(remoteErr)
		span.SetStatus(codes.Error, remoteErr.Error())
		log.Error("remote request rejected", remoteErr, append(fields, logging.Int("status", resp.StatusCode))...)
		return nil, remoteErr
	}

	c.recorder.ObserveRequest(op, outcomeSuccess, elapsed)
	span.SetStatus(codes.Ok, "")
	log.Debug("remote request finished", append(fields,
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", elapsed))...)
	return body, nil
}

// errorMessage extracts a human-readable reason from an error body.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"message", "error", "detail"} {
			if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
		return ""
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
