package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresSessionAndSendsBearer(t *testing.T) {
	var plansAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login":
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{
				"statusCode": "10000",
				"message": "Login successful",
				"data": {
					"user": {"_id": "u-1", "name": "Alice", "email": "alice@example.com", "role": "USER"},
					"tokens": {"accessToken": "access-abc", "refreshToken": "refresh-xyz"}
				}
			}`))
		case "/plans":
			plansAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"statusCode":"10000","message":"ok","data":[]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.Equal(t, "access-abc", resp.Tokens.AccessToken)

	user, err := c.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = c.ListPlans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-abc", plansAuth)
}

func TestErrorEnvelopeSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":"40000","message":"Plan not found"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Subscribe(context.Background(), SubscribeRequest{PlanID: "nope"})

	require.Error(t, err)
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "40000", apiErr.StatusCode)
	assert.Equal(t, "Plan not found", apiErr.Message)
	assert.Equal(t, "Plan not found", err.Error())
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
}

func TestTransportFailureWinsOverSuccessEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":"10000","message":"ok","data":[]}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ListPlans(context.Background())

	require.Error(t, err)
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatus)
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":"50000","message":"boom"}`))
	}))
	defer server.Close()

	session := NewMemorySession()
	require.NoError(t, session.Save(
		&User{ID: "u-1", Role: RoleUser},
		&TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	))

	c := New(server.URL, WithSession(session))
	require.NoError(t, c.Logout(context.Background()))

	_, err := session.User()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = session.Tokens()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	session := NewFileSession(path)

	_, err := session.User()
	assert.ErrorIs(t, err, ErrNoSession)

	user := &User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Role: RoleAdmin}
	tokens := &TokenPair{AccessToken: "access", RefreshToken: "refresh"}
	require.NoError(t, session.Save(user, tokens))

	// A fresh store over the same file sees the saved values.
	reopened := NewFileSession(path)
	gotUser, err := reopened.User()
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", gotUser.Email)
	gotTokens, err := reopened.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "access", gotTokens.AccessToken)

	require.NoError(t, reopened.Clear())
	_, err = reopened.Tokens()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileSessionUsesNamedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	session := NewFileSession(path)
	require.NoError(t, session.Save(
		&User{ID: "u-1"},
		&TokenPair{AccessToken: "access"},
	))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "user")
	assert.Contains(t, doc, "tokens")
}
