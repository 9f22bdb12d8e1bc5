package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"safe-return-server/internal/handler"
	"safe-return-server/internal/model"
	"safe-return-server/internal/model/requestresponse"
	"safe-return-server/internal/ports"
	"safe-return-server/internal/security"
	"safe-return-server/internal/service"
)

type MockAuthenticationService struct{ mock.Mock }

func (m *MockAuthenticationService) Login(ctx context.Context, verifier ports.CredentialVerifier, externalID, password string) (*model.TokensPair, error) {
	args := m.Called(ctx, verifier, externalID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokensPair), args.Error(1)
}

func (m *MockAuthenticationService) Reissue(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokensPair), args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	args := m.Called(ctx, refreshToken)
	return args.Bool(0), args.Error(1)
}

type stubVerifier struct{}

func (stubVerifier) Verify(context.Context, string, string) (*model.Principal, error) {
	return nil, service.ErrBadCredentials
}

func errorText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp requestresponse.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error.Text
}

func messageText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp requestresponse.MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Message
}

func TestLogin_SetsTokenHeaders(t *testing.T) {
	authService := new(MockAuthenticationService)
	verifier := stubVerifier{}
	authService.On("Login", mock.Anything, verifier, "u1", "p1").
		Return(&model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}, nil)

	h := handler.NewAuthenticationHandler(authService)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"id":"u1","password":"p1"}`))
	h.Login(verifier).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer acc", rec.Header().Get("Authorization"))
	assert.Equal(t, "Bearer ref", rec.Header().Get("refresh"))
	assert.NotContains(t, rec.Body.String(), "acc")
	assert.NotContains(t, rec.Body.String(), "ref\"")
}

func TestLogin_MissingFieldsBecomeEmpty(t *testing.T) {
	cases := []string{`{}`, `{"id":"u1"}`, `not json`}

	for _, body := range cases {
		t.Run(body, func(t *testing.T) {
			authService := new(MockAuthenticationService)
			authService.On("Login", mock.Anything, mock.Anything, mock.AnythingOfType("string"), "").
				Return(nil, service.ErrBadCredentials)

			h := handler.NewAuthenticationHandler(authService)
			rec := httptest.NewRecorder()
			h.Login(stubVerifier{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", errorText(t, rec))
			assert.Empty(t, rec.Header().Get("Authorization"))
			authService.AssertExpectations(t)
		})
	}
}

func TestLogin_InternalError(t *testing.T) {
	authService := new(MockAuthenticationService)
	authService.On("Login", mock.Anything, mock.Anything, "u1", "p1").Return(nil, errors.New("db down"))

	rec := httptest.NewRecorder()
	handler.NewAuthenticationHandler(authService).Login(stubVerifier{}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"id":"u1","password":"p1"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReissue_Success(t *testing.T) {
	authService := new(MockAuthenticationService)
	authService.On("Reissue", mock.Anything, "old").
		Return(&model.TokensPair{AccessToken: "acc2", RefreshToken: "ref2"}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
	req.Header.Set("refresh", "Bearer old")
	handler.NewAuthenticationHandler(authService).Reissue(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer acc2", rec.Header().Get("Authorization"))
	assert.Equal(t, "Bearer ref2", rec.Header().Get("refresh"))
	assert.Equal(t, "access token reissued successfully", messageText(t, rec))
}

func TestReissue_Failures(t *testing.T) {
	cases := []struct {
		err    error
		status int
		text   string
	}{
		{security.ErrExpiredToken, http.StatusBadRequest, "refresh token is expired"},
		{fmt.Errorf("%w: bad signature", security.ErrMalformedToken), http.StatusBadRequest, "invalid refresh token"},
		{security.ErrWrongTokenType, http.StatusBadRequest, "invalid refresh token"},
		{security.ErrUnknownToken, http.StatusBadRequest, "invalid refresh token"},
		{errors.New("tx aborted"), http.StatusInternalServerError, "внутренняя ошибка сервера"},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			authService := new(MockAuthenticationService)
			authService.On("Reissue", mock.Anything, "tok").Return(nil, tc.err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
			req.Header.Set("refresh", "Bearer tok")
			handler.NewAuthenticationHandler(authService).Reissue(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.text, errorText(t, rec))
			assert.Empty(t, rec.Header().Get("Authorization"))
		})
	}
}

func TestReissue_MissingHeader(t *testing.T) {
	authService := new(MockAuthenticationService)

	for _, header := range []string{"", "tok", "Bearer "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/reissue", nil)
		if header != "" {
			req.Header.Set("refresh", header)
		}
		handler.NewAuthenticationHandler(authService).Reissue(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "refresh token is null", errorText(t, rec))
	}
	authService.AssertNotCalled(t, "Reissue", mock.Anything, mock.Anything)
}

func TestLogout(t *testing.T) {
	cases := []struct {
		name    string
		expired bool
		err     error
		status  int
		message string
	}{
		{"успешный выход", false, nil, http.StatusOK, "logged out successfully"},
		{"просроченный токен", true, nil, http.StatusOK, "refresh token is expired, logged out successfully"},
		{"неизвестный токен", false, security.ErrUnknownToken, http.StatusBadRequest, "invalid refresh token"},
		{"не тот тип", false, security.ErrWrongTokenType, http.StatusBadRequest, "invalid refresh token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authService := new(MockAuthenticationService)
			authService.On("Logout", mock.Anything, "tok").Return(tc.expired, tc.err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			req.Header.Set("refresh", "Bearer tok")
			handler.NewAuthenticationHandler(authService).Logout(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.err != nil {
				assert.Equal(t, tc.message, errorText(t, rec))
			} else {
				assert.Equal(t, tc.message, messageText(t, rec))
			}
		})
	}
}
