package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"safe-return-server/internal/model"
	"safe-return-server/internal/model/requestresponse"
	"safe-return-server/internal/ports"
	"safe-return-server/internal/security"
	"safe-return-server/internal/service"
)

const RefreshHeader = "refresh"

const (
	msgRefreshNull     = "refresh token is null"
	msgRefreshExpired  = "refresh token is expired"
	msgRefreshInvalid  = "invalid refresh token"
	msgReissued        = "access token reissued successfully"
	msgLoggedOut       = "logged out successfully"
	msgLoggedOutExpiry = "refresh token is expired, logged out successfully"
)

type AuthenticationHandler struct {
	authenticationService ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService: authenticationService}
}

// Login godoc
// @Summary Аутентификация
// @Description Проверяет логин и пароль, токены возвращаются в заголовках Authorization и refresh
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Header 200 {string} Authorization "Bearer <access>"
// @Header 200 {string} refresh "Bearer <refresh>"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /auth/login [post]
// @Router /auth/admin/login [post]
func (h *AuthenticationHandler) Login(verifier ports.CredentialVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requestresponse.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("[AuthHandler] некорректное тело запроса: %v", err)
		}

		tokens, err := h.authenticationService.Login(r.Context(), verifier, valueOrEmpty(req.ID), valueOrEmpty(req.Password))
		if err != nil {
			if errors.Is(err, service.ErrBadCredentials) {
				sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			log.Printf("[AuthHandler] ошибка входа: %v", err)
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
			return
		}

		writeTokens(w, tokens)
		writeJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "login successful"})
	}
}

// Reissue godoc
// @Summary Обновление пары токенов
// @Description Принимает refresh токен, старая запись удаляется, выдаётся новая пара
// @Tags Authentication
// @Produce json
// @Param refresh header string true "Bearer <refresh>"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /auth/reissue [post]
func (h *AuthenticationHandler) Reissue(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := security.ExtractBearer(r.Header.Get(RefreshHeader))
	if !ok || refreshToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, msgRefreshNull)
		return
	}

	tokens, err := h.authenticationService.Reissue(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrExpiredToken):
			sendErrorResponse(w, http.StatusBadRequest, msgRefreshExpired)
		case errors.Is(err, security.ErrMalformedToken),
			errors.Is(err, security.ErrWrongTokenType),
			errors.Is(err, security.ErrUnknownToken):
			sendErrorResponse(w, http.StatusBadRequest, msgRefreshInvalid)
		default:
			log.Printf("[AuthHandler] ошибка обновления токенов: %v", err)
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	writeTokens(w, tokens)
	writeJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgReissued})
}

// Logout godoc
// @Summary Выход
// @Description Удаляет запись refresh токена. Просроченный токен тоже удаляется
// @Tags Authentication
// @Produce json
// @Param refresh header string true "Bearer <refresh>"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := security.ExtractBearer(r.Header.Get(RefreshHeader))
	if !ok || refreshToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, msgRefreshNull)
		return
	}

	expired, err := h.authenticationService.Logout(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrMalformedToken),
			errors.Is(err, security.ErrWrongTokenType),
			errors.Is(err, security.ErrUnknownToken):
			sendErrorResponse(w, http.StatusBadRequest, msgRefreshInvalid)
		default:
			log.Printf("[AuthHandler] ошибка выхода: %v", err)
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	if expired {
		writeJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgLoggedOutExpiry})
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgLoggedOut})
}

// writeTokens : access и refresh всегда в разных заголовках
func writeTokens(w http.ResponseWriter, tokens *model.TokensPair) {
	w.Header().Set("Authorization", security.BearerPrefix+tokens.AccessToken)
	w.Header().Set(RefreshHeader, security.BearerPrefix+tokens.RefreshToken)
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
