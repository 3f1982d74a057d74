package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kkratossdead/mobile-renting/errors"
)

const DefaultTimeout = 10 * time.Second

// Transport issues one HTTP request per call against the backend API,
// enforces the configured deadline, and normalizes error signaling. Every
// resource client routes through it; nothing below it retries.
type Transport struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewTransport(baseURL string, timeout time.Duration, httpClient *http.Client, logger *logrus.Logger, tracer trace.Tracer) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     10,
			},
		}
	}

	return &Transport{
		baseURL: baseURL,
		timeout: timeout,
		client:  httpClient,
		logger:  logger,
		tracer:  tracer,
	}
}

// Do performs a single request. The body, when present, is serialized as
// JSON. Extra headers override the defaults. The returned raw message is
// the parsed response body; a body that is not valid JSON is treated as
// absent, never as raw text.
func (t *Transport) Do(ctx context.Context, method, path string, body interface{}, headers map[string]string) (json.RawMessage, error) {
	ctx, span := t.tracer.Start(ctx, "Transport.Do")
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-Id", uuid.NewString())
	for name, value := range headers {
		request.Header.Set(name, value)
	}

	response, err := t.client.Do(request)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if stderrors.Is(err, context.DeadlineExceeded) {
			t.logger.Warnf("Transport.Do : %s %s timed out after %s", method, path, t.timeout)
			return nil, &errors.TimeoutError{Path: path}
		}
		t.logger.Warnf("Transport.Do : %s %s failed: %s", method, path, err)
		return nil, &errors.TransportError{Op: method + " " + path, Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &errors.TransportError{Op: method + " " + path, Err: err}
	}

	var parsed json.RawMessage
	if len(bytes.TrimSpace(raw)) > 0 && json.Valid(raw) {
		parsed = json.RawMessage(raw)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		message := extractMessage(parsed)
		span.SetStatus(codes.Error, message)
		t.logger.Printf("Transport.Do : %s %s returned status %d", method, path, response.StatusCode)
		return nil, errors.NewRequestFailed(response.StatusCode, message)
	}

	return parsed, nil
}

func (t *Transport) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return t.Do(ctx, http.MethodGet, path, nil, nil)
}

func (t *Transport) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return t.Do(ctx, http.MethodPost, path, body, nil)
}

func (t *Transport) Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return t.Do(ctx, http.MethodPut, path, body, nil)
}

func (t *Transport) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return t.Do(ctx, http.MethodDelete, path, nil, nil)
}

func extractMessage(parsed json.RawMessage) string {
	if len(parsed) == 0 {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(parsed, &envelope); err != nil {
		return ""
	}

	return envelope.Message
}

// CircuitBreaker guards one resource client's calls. A backend rejection
// (4xx) counts as success so input errors never trip the breaker; only
// repeated transport-level failures and 5xx responses open it.
func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warnf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				var requestErr *errors.RequestFailedError
				return stderrors.As(err, &requestErr) && requestErr.StatusCode >= 400 && requestErr.StatusCode < 500
			},
		},
	)
}

func decode(raw json.RawMessage, value interface{}) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, value)
}
