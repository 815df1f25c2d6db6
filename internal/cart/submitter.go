package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultSubmitTimeout = 10 * time.Second

// HTTPSubmitter posts checkouts to a storefront server. Session cookies set
// by Login are kept in the client's jar.
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
}

type SubmitterOption func(*HTTPSubmitter)

func WithTimeout(d time.Duration) SubmitterOption {
	return func(s *HTTPSubmitter) { s.client.Timeout = d }
}

// WithHTTPClient replaces the client. It should carry a cookie jar.
func WithHTTPClient(c *http.Client) SubmitterOption {
	return func(s *HTTPSubmitter) { s.client = c }
}

func NewHTTPSubmitter(baseURL string, opts ...SubmitterOption) (*HTTPSubmitter, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	s := &HTTPSubmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar, Timeout: defaultSubmitTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type apiError struct {
	Error string `json:"error"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// Login signs in with email and password so later submissions carry the
// session cookie.
func (s *HTTPSubmitter) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	resp, err := s.post(ctx, "/login", body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// Submit sends the checkout with a fresh Idempotency-Key.
func (s *HTTPSubmitter) Submit(ctx context.Context, req CheckoutRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode checkout: %w", err)
	}
	resp, err := s.post(ctx, "/api/orders", body, http.Header{
		"Idempotency-Key": []string{uuid.NewString()},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	if !out.Success || out.OrderID == "" {
		return "", errors.New("checkout response carried no order id")
	}
	return out.OrderID, nil
}

func (s *HTTPSubmitter) post(ctx context.Context, path string, body []byte, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return s.client.Do(req)
}

func decodeError(resp *http.Response) error {
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
		return fmt.Errorf("server responded %d", resp.StatusCode)
	}
	return fmt.Errorf("server responded %d: %s", resp.StatusCode, e.Error)
}
