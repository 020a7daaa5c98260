package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
)

const (
	defaultMethod   = http.MethodPost
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 64 * 1024
)

// Request describes one physical delivery.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Auth    model.AuthConfig
	Body    []byte
	Timeout time.Duration
}

// Channel performs single HTTP delivery attempts. It never returns an
// error: any received status is a completed attempt (2xx success,
// otherwise remote rejection) and a transport failure is an outcome with
// status zero.
type Channel struct {
	client *http.Client
}

func NewChannel() *Channel {
	return &Channel{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Deliver performs exactly one network call bounded by the request
// timeout.
func (c *Channel) Deliver(ctx context.Context, req Request) model.DeliveryOutcome {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = defaultMethod
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return model.DeliveryOutcome{Error: err.Error()}
	}

	for k, v := range buildHeaders(req.Headers, req.Auth) {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		// No response at all: DNS, connect, TLS or timeout failure.
		return model.DeliveryOutcome{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))

	return model.DeliveryOutcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// buildHeaders merges the default content type, target headers and the
// computed Authorization header, in that precedence order.
func buildHeaders(headers map[string]string, auth model.AuthConfig) map[string]string {
	merged := map[string]string{
		"Content-Type": "application/json",
	}
	for k, v := range headers {
		merged[k] = v
	}

	switch auth.Kind {
	case model.AuthBasic:
		creds := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
		merged["Authorization"] = "Basic " + creds
	case model.AuthBearer:
		merged["Authorization"] = "Bearer " + auth.Token
	}

	return merged
}
