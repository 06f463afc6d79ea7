package aeza_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vlessgen/go-vless-bot/aeza"
	"github.com/vlessgen/go-vless-bot/internal/apperrors"
)

const (
	testUserAgent = "Dart/3.5 (dart:io)"
	testDeviceID  = "AABBCCDD11223344"
	testToken     = "aeza-token-1"
)

func newClient(srv *httptest.Server) *aeza.Client {
	return aeza.NewClient(srv.URL, srv.URL, aeza.WithHTTPClient(srv.Client()))
}

func TestRequestConfirmationCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth", r.URL.Path)
		require.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newClient(srv).RequestConfirmationCode(context.Background(), "a@b.com")
	require.NoError(t, err)
}

func TestIssueTemporaryEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/new", r.URL.Path)
		require.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		_ = json.NewEncoder(w).Encode(map[string]string{"email": "temp@mailbox.io"})
	}))
	defer srv.Close()

	email, err := newClient(srv).IssueTemporaryEmail(context.Background())
	require.NoError(t, err)
	require.Equal(t, "temp@mailbox.io", email)
}

func TestConfirmCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth-confirm", r.URL.Path)
		require.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		require.Equal(t, testDeviceID, r.Header.Get("Device-Id"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])
		require.Equal(t, "123456", body["code"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]string{"token": testToken},
		})
	}))
	defer srv.Close()

	token, err := newClient(srv).ConfirmCode(context.Background(), "a@b.com", "123456", testDeviceID)
	require.NoError(t, err)
	require.Equal(t, testToken, token)
}

func TestConfirmCodeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(srv).ConfirmCode(context.Background(), "a@b.com", "000000", testDeviceID)
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrAuthRejected)
	// An auth rejection must be distinguishable from a transport failure.
	require.NotErrorIs(t, err, apperrors.ErrUpstream)
}

func TestListAvailableLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/locations", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{
				"us": map[string]bool{"free": true},
				"de": map[string]bool{"free": false},
				"fr": map[string]bool{"free": true},
			},
		})
	}))
	defer srv.Close()

	locations, err := newClient(srv).ListAvailableLocations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"FR", "US"}, locations)
}

func TestProvisionConnectionLowercasesLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vpn/connect", r.URL.Path)
		require.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		require.Equal(t, testDeviceID, r.Header.Get("Device-Id"))
		require.Equal(t, testToken, r.Header.Get("Aeza-Token"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "us", body["location"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]string{"accessKey": "vless://xyz"},
		})
	}))
	defer srv.Close()

	payload, err := newClient(srv).ProvisionConnection(context.Background(), "US", testDeviceID, testToken)
	require.NoError(t, err)
	require.Equal(t, "vless://xyz", payload)
}

func TestNon200IsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newClient(srv).RequestConfirmationCode(context.Background(), "a@b.com")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrUpstream)

	var statusErr *aeza.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)
}
