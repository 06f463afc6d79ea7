// Package aeza is the HTTP client for the Aeza security API and the
// temp-mail mailbox API, the two upstreams behind the provisioning workflow.
package aeza

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/vlessgen/go-vless-bot/internal/apperrors"
)

// The upstream identifies clients by this exact User-Agent; every request
// must carry it.
const userAgent = "Dart/3.5 (dart:io)"

const (
	headerDeviceID = "Device-Id"
	headerToken    = "Aeza-Token"

	defaultTimeout = 15 * time.Second
)

// Client issues the upstream calls needed by the workflow. All transport and
// non-200 failures are normalized: see StatusError and apperrors.
type Client struct {
	apiURL     string
	emailURL   string
	httpClient *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing
// and for tuning the request timeout).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every upstream call; after it elapses the call is a
// transport failure.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient initializes a Client for the given Aeza API and mailbox API base
// URLs.
func NewClient(apiURL, emailURL string, options ...ClientOption) *Client {
	client := &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		emailURL:   strings.TrimRight(emailURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// RequestConfirmationCode asks the identity service to email a one-time code
// to the given address.
func (c *Client) RequestConfirmationCode(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return c.do(ctx, http.MethodPost, c.apiURL+"/auth", "auth", body, nil, nil)
}

// IssueTemporaryEmail requests a disposable mailbox address.
func (c *Client) IssueTemporaryEmail(ctx context.Context) (string, error) {
	var out struct {
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodPost, c.emailURL+"/new", "new-email", nil, nil, &out); err != nil {
		return "", err
	}
	if out.Email == "" {
		return "", errors.New("new-email: empty address in response")
	}
	return out.Email, nil
}

// ConfirmCode exchanges a confirmation code for an access token scoped to
// deviceID. A non-200 from this endpoint means the code was rejected, which
// callers must be able to tell apart from a transport failure.
func (c *Client) ConfirmCode(ctx context.Context, email, code, deviceID string) (string, error) {
	body := struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}{Email: email, Code: code}
	var out struct {
		Response struct {
			Token string `json:"token"`
		} `json:"response"`
	}

	err := c.do(ctx, http.MethodPost, c.apiURL+"/auth-confirm", "auth-confirm", body, map[string]string{headerDeviceID: deviceID}, &out)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "", apperrors.Wrapf(apperrors.ErrAuthRejected, "auth-confirm: status %d", statusErr.Status)
	}
	if err != nil {
		return "", err
	}
	if out.Response.Token == "" {
		return "", errors.New("auth-confirm: empty token in response")
	}
	return out.Response.Token, nil
}

// ListAvailableLocations returns the upper-cased codes of locations the
// upstream inventory currently marks free, sorted for stable display.
func (c *Client) ListAvailableLocations(ctx context.Context) ([]string, error) {
	var out struct {
		Response map[string]struct {
			Free bool `json:"free"`
		} `json:"response"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiURL+"/locations", "locations", nil, nil, &out); err != nil {
		return nil, err
	}

	locations := make([]string, 0, len(out.Response))
	for code, data := range out.Response {
		if data.Free {
			locations = append(locations, strings.ToUpper(code))
		}
	}
	sort.Strings(locations)
	return locations, nil
}

// ProvisionConnection requests a connection credential at the given location.
// The upstream contract requires the location code lower-cased on the wire
// regardless of how it was displayed.
func (c *Client) ProvisionConnection(ctx context.Context, location, deviceID, accessToken string) (string, error) {
	body := struct {
		Location string `json:"location"`
	}{Location: strings.ToLower(location)}
	var out struct {
		Response struct {
			AccessKey string `json:"accessKey"`
		} `json:"response"`
	}

	headers := map[string]string{
		headerDeviceID: deviceID,
		headerToken:    accessToken,
	}
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/vpn/connect", "vpn-connect", body, headers, &out); err != nil {
		return "", err
	}
	if out.Response.AccessKey == "" {
		return "", errors.New("vpn-connect: empty access key in response")
	}
	return out.Response.AccessKey, nil
}

// do performs one upstream request. A non-200 status becomes a *StatusError;
// everything else is wrapped transport failure.
func (c *Client) do(ctx context.Context, method, url, op string, body any, headers map[string]string, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: marshal request", op)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: request failed", op)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("upstream returned non-200")
		return &StatusError{Op: op, Status: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "%s: decode response", op)
		}
	}
	return nil
}
