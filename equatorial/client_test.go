package equatorial_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creds = equatorial.Credentials{Identifier: "12345678900", Secret: "01/01/1970"}

func newTestClient(srv *httptest.Server) *equatorial.Client {
	endpoints := equatorial.DefaultEndpoints()
	endpoints.BaseURL = srv.URL
	return equatorial.NewClient(endpoints)
}

func TestTokenRequestBody(t *testing.T) {
	for _, c := range []equatorial.Credentials{
		creds,
		{Identifier: "1", Secret: "x"},
		{Identifier: "1:2", Secret: "31/12/1999"},
	} {
		body := equatorial.NewTokenRequestBody(c)
		assert.Equal(t, "1:"+c.Identifier, body.Get("username"))
		assert.Equal(t, c.Secret, body.Get("password"))
		assert.Equal(t, "password", body.Get("grant_type"))
		assert.Equal(t, "browser", body.Get("navegador"))
		assert.Equal(t, "device", body.Get("dispositivo"))
		assert.Equal(t, "+", body.Get("empresaId"))
		assert.Len(t, body, 6)
	}
}

func TestAuthenticateReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, equatorial.TokenPath, r.URL.Path)
		assert.Equal(t, "Basic Y2VtYXI6RXF0QENlbWFy", r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, equatorial.DefaultUserAgent, r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1:12345678900", r.PostForm.Get("username"))
		assert.Equal(t, "01/01/1970", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"Bearer","access_token":"a.b.c","expires_in":3600}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv).Authenticate(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, equatorial.Token{TokenType: "Bearer", AccessToken: "a.b.c", ExpiresIn: 3600}, token)
	assert.Equal(t, "Bearer a.b.c", token.Authorization())
}

func TestAuthenticateKeepsIncompleteToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scope":"openid"}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv).Authenticate(context.Background(), creds)
	require.NoError(t, err)
	assert.Empty(t, token.AccessToken)

	_, err = equatorial.DecodeProfile(token)
	assert.ErrorIs(t, err, equatorial.ErrDecode)
}

func TestAuthenticateInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Authenticate(context.Background(), creds)
	assert.ErrorIs(t, err, equatorial.ErrParse)
}

func TestAuthenticateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Authenticate(context.Background(), creds)
	assert.ErrorIs(t, err, equatorial.ErrAuth)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestAuthenticateRequiresCredentials(t *testing.T) {
	client := equatorial.NewClient(equatorial.DefaultEndpoints())

	_, err := client.Authenticate(context.Background(), equatorial.Credentials{Identifier: "12345678900"})
	assert.ErrorIs(t, err, equatorial.ErrValidation)
}

func TestAuthenticateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(srv)
	srv.Close()

	_, err := client.Authenticate(context.Background(), creds)
	assert.ErrorIs(t, err, equatorial.ErrNetwork)
}

func TestProgressWrapsEachCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"Bearer","access_token":"a.b.c"}`))
	}))
	defer srv.Close()

	progress := &recordingProgress{}
	client := newTestClient(srv)
	client.Progress = progress

	_, err := client.Authenticate(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, []string{"Autenticando"}, progress.labels)
	assert.Equal(t, 1, progress.stops)
}

func TestNewClientDefaultsTimeout(t *testing.T) {
	client := equatorial.NewClient(equatorial.Endpoints{BaseURL: "http://localhost"})
	assert.Equal(t, equatorial.DefaultTimeout, client.HTTPClient.Timeout)
}
