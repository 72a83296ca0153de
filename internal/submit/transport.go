package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Ack reports what a completed delivery actually proved.
type Ack int

const (
	// AckUnconfirmed means the exchange finished without a transport error
	// but the endpoint's answer could not be read, so acceptance is assumed,
	// not known.
	AckUnconfirmed Ack = iota
	// AckConfirmed means the endpoint answered and reported success.
	AckConfirmed
)

// Transport delivers one flattened order payload to the intake endpoint.
type Transport interface {
	Deliver(ctx context.Context, fields map[string]string) (Ack, error)
}

// RejectionError is a logical refusal from a reachable endpoint. Only a
// readable transport can produce it; in opaque mode rejections are
// indistinguishable from success.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("endpoint rejected order: %s", e.Message)
}

// endpointResponse mirrors the intake endpoint's JSON answer.
type endpointResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

// HTTPTransport posts the payload as a url-encoded form. In opaque mode the
// response is ignored entirely, status line included: the hosted-script
// endpoints this targets answer through redirect chains whose body and code
// carry nothing usable, so the only detectable failure is a transport one.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	opaque   bool
}

func NewHTTPTransport(endpoint string, timeout time.Duration, opaque bool) *HTTPTransport {
	return &HTTPTransport{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		opaque:   opaque,
	}
}

func (t *HTTPTransport) Deliver(ctx context.Context, fields map[string]string) (Ack, error) {
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return AckUnconfirmed, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return AckUnconfirmed, fmt.Errorf("deliver order: %w", err)
	}
	defer resp.Body.Close()

	if t.opaque {
		_, _ = io.Copy(io.Discard, resp.Body)
		return AckUnconfirmed, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AckUnconfirmed, fmt.Errorf("deliver order: unexpected status %d", resp.StatusCode)
	}

	var er endpointResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return AckUnconfirmed, fmt.Errorf("decode response: %w", err)
	}
	if !er.Success {
		return AckUnconfirmed, &RejectionError{Message: er.Message}
	}
	return AckConfirmed, nil
}
