package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/internal/server/users"
	"github.com/iudanet/messagely/pkg/api"
)

func newTestAuthHandler() (*AuthHandler, *mockCredentials, *mockTokens) {
	creds := newMockCredentials()
	tokens := &mockTokens{}
	return NewAuthHandler(setupTestLogger(), creds, tokens, setupTestResponder()), creds, tokens
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func validRegisterRequest() api.RegisterRequest {
	return api.RegisterRequest{
		Username:  "alice",
		Password:  "password1",
		FirstName: "Alice",
		LastName:  "Liddell",
		Phone:     "+14155550000",
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	handler, creds, _ := newTestAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, validRegisterRequest()))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "token-for-alice", resp.Token)
	assert.Equal(t, "password1", creds.users["alice"])
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectedMessage string
	}{
		{name: "invalid json", body: "{not json", expectedMessage: "invalid request body"},
		{name: "empty body", body: "", expectedMessage: "request body is empty"},
		{name: "missing password", body: `{"username":"alice","first_name":"A","last_name":"L","phone":"1"}`, expectedMessage: "password is required"},
		{name: "short password", body: `{"username":"alice","password":"short","first_name":"A","last_name":"L","phone":"1"}`, expectedMessage: "password must be at least 8 characters long"},
		{name: "invalid username", body: `{"username":"a b","password":"password1","first_name":"A","last_name":"L","phone":"1"}`, expectedMessage: "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, creds, _ := newTestAuthHandler()

			w := httptest.NewRecorder()
			handler.Register(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w).Message, tt.expectedMessage)
			assert.Empty(t, creds.users)
		})
	}
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	handler, creds, _ := newTestAuthHandler()
	creds.users["alice"] = "existing"

	w := httptest.NewRecorder()
	handler.Register(w, httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, validRegisterRequest())))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "username already taken", decodeError(t, w).Message)
}

func TestAuthHandler_Register_StorageError(t *testing.T) {
	handler, creds, _ := newTestAuthHandler()
	creds.registerErr = errDB

	w := httptest.NewRecorder()
	handler.Register(w, httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, validRegisterRequest())))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), errDB.Error())
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           api.LoginRequest
		expectedStatus int
		expectedToken  string
	}{
		{name: "success", body: api.LoginRequest{Username: "alice", Password: "password1"}, expectedStatus: http.StatusOK, expectedToken: "token-for-alice"},
		{name: "wrong password", body: api.LoginRequest{Username: "alice", Password: "nope-nope"}, expectedStatus: http.StatusUnauthorized},
		{name: "unknown user", body: api.LoginRequest{Username: "bob", Password: "password1"}, expectedStatus: http.StatusUnauthorized},
		{name: "empty password", body: api.LoginRequest{Username: "alice"}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, creds, _ := newTestAuthHandler()
			creds.users["alice"] = "password1"

			w := httptest.NewRecorder()
			handler.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, tt.body)))

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Empty(t, creds.logins)
				return
			}

			var resp api.TokenResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedToken, resp.Token)
			assert.Equal(t, []string{"alice"}, creds.logins)
		})
	}
}

func TestAuthHandler_Login_StoreErrors(t *testing.T) {
	tests := []struct {
		name           string
		verifyErr      error
		recordErr      error
		tokenErr       error
		expectedStatus int
	}{
		{name: "verify fails", verifyErr: errDB, expectedStatus: http.StatusInternalServerError},
		{name: "record login fails", recordErr: errDB, expectedStatus: http.StatusInternalServerError},
		{name: "user vanished", recordErr: storage.ErrUserNotFound, expectedStatus: http.StatusUnauthorized},
		{name: "token issue fails", tokenErr: errors.New("sign"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, creds, tokens := newTestAuthHandler()
			creds.users["alice"] = "password1"
			creds.verifyErr = tt.verifyErr
			creds.recordErr = tt.recordErr
			tokens.err = tt.tokenErr

			w := httptest.NewRecorder()
			handler.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login",
				jsonBody(t, api.LoginRequest{Username: "alice", Password: "password1"})))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthHandler_Login_IgnoresTokenField(t *testing.T) {
	handler, creds, _ := newTestAuthHandler()
	creds.users["alice"] = "password1"

	body := `{"username":"alice","password":"password1","_token":"whatever"}`
	w := httptest.NewRecorder()
	handler.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Register_InvalidInputFromStore(t *testing.T) {
	handler, creds, _ := newTestAuthHandler()
	creds.registerErr = fmt.Errorf("%w: password must be at least 8 characters long", users.ErrInvalidInput)

	w := httptest.NewRecorder()
	handler.Register(w, httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, validRegisterRequest())))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "password must be at least 8")
}
