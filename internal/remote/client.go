package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"airsense-agents/internal/config"
	"airsense-agents/internal/types"
)

const (
	SerialNumberHeader = "X-Serial-Number"
	RequestIDHeader    = "X-Request-ID"
	userAgent          = "airsense-agents"

	maxBodyBytes = 1 << 20
)

var (
	// ErrTransport covers connection failures, timeouts and non-2xx answers.
	ErrTransport = errors.New("remote: transport error")
	// ErrPayload is the parent of every bad-response error below.
	ErrPayload = errors.New("remote: bad payload")

	ErrMalformed    = fmt.Errorf("%w: malformed body", ErrPayload)
	ErrMissingField = fmt.Errorf("%w: missing fan_speed", ErrPayload)
	ErrNotInteger   = fmt.Errorf("%w: fan_speed is not an integer", ErrPayload)
	ErrOutOfRange   = fmt.Errorf("%w: fan_speed out of range", ErrPayload)
)

// Client performs one blocking request per call. It keeps no session
// state between calls.
type Client struct {
	http      *http.Client
	serial    string
	sensorURL string
	deviceURL string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClient builds a client from cfg. A nil httpClient gets one bounded by
// cfg.RequestTimeout.
func NewClient(cfg config.Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:      httpClient,
		serial:    cfg.SerialNumber,
		sensorURL: cfg.SensorURL,
		deviceURL: cfg.DeviceURL,
		timeout:   cfg.RequestTimeout,
		logger:    logger,
	}
}

// Push posts one reading to the sensor endpoint. The response body is
// discarded.
func (c *Client) Push(ctx context.Context, r types.Reading) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.sensorURL, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return nil
}

// Pull fetches the current fan instruction from the device endpoint and
// validates it.
func (c *Client) Pull(ctx context.Context) (types.FanInstruction, error) {
	resp, err := c.do(ctx, http.MethodGet, c.deviceURL, nil)
	if err != nil {
		return types.FanInstruction{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return types.FanInstruction{}, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return DecodeFanInstruction(data)
}

// DecodeFanInstruction extracts and validates fan_speed from a response
// body. Unknown fields are ignored.
func DecodeFanInstruction(data []byte) (types.FanInstruction, error) {
	if len(data) > maxBodyBytes {
		return types.FanInstruction{}, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, maxBodyBytes)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return types.FanInstruction{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw, ok := obj["fan_speed"]
	if !ok || string(raw) == "null" {
		return types.FanInstruction{}, ErrMissingField
	}

	speed, err := parseFanSpeed(raw)
	if err != nil {
		return types.FanInstruction{}, err
	}
	return types.FanInstruction{FanSpeed: speed}, nil
}

func parseFanSpeed(raw json.RawMessage) (int, error) {
	s := string(raw)
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, fmt.Errorf("%w: %s", ErrNotInteger, s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, s)
		}
		return 0, fmt.Errorf("%w: %s", ErrNotInteger, s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s", ErrNotInteger, s)
	}
	if f < types.MinFanSpeed || f > types.MaxFanSpeed {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}
	return int(f), nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		// The body is read by the caller, so the deadline must outlive do.
		resp, err := c.send(ctx, method, url, body)
		if err != nil {
			cancel()
			return nil, err
		}
		resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}
	return c.send(ctx, method, url, body)
}

func (c *Client) send(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(SerialNumberHeader, c.serial)
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, url, err)
	}

	c.logger.Debug("http round trip",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrTransport, method, url, resp.StatusCode)
	}
	return resp, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
