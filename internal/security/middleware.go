package security

import (
	"encoding/json"
	"log"
	"net/http"
	"slices"

	"safe-return-server/internal/model"
	"safe-return-server/internal/model/requestresponse"
)

const (
	MarkerAccessExpired = "access_expired"
	MarkerAccessInvalid = "access_invalid"
)

// TokenDecoder : то, что нужно AccessGuard от JWTService
type TokenDecoder interface {
	Decode(tokenString string) (*Claims, error)
	IsExpired(claims *Claims) bool
}

// AccessGuard : проверяет access токен на каждом запросе без обращения к хранилищу.
// Запрос без заголовка Authorization проходит дальше неавторизованным,
// доступ к закрытым маршрутам режет RequireRole
func AccessGuard(jwtService TokenDecoder) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(guardRequest(jwtService, next))
	}
}

func guardRequest(jwtService TokenDecoder, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		token, ok := ExtractBearer(request.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(writer, request)
			return
		}

		claims, err := jwtService.Decode(token)
		if err != nil {
			log.Printf("[AccessGuard] невалидный токен: %v", err)
			writeError(writer, http.StatusUnauthorized, MarkerAccessInvalid)
			return
		}

		// срок жизни проверяется раньше типа: любой просроченный токен даёт access_expired
		if jwtService.IsExpired(claims) {
			writeError(writer, http.StatusUnauthorized, MarkerAccessExpired)
			return
		}

		if tokenType, err := claims.TokenType(); err != nil || tokenType != AccessTokenType {
			log.Printf("[AccessGuard] токен не является access токеном: %q", claims.Type)
			writeError(writer, http.StatusUnauthorized, MarkerAccessInvalid)
			return
		}

		principal, err := claims.Principal()
		if err != nil {
			log.Printf("[AccessGuard] %v", err)
			writeError(writer, http.StatusUnauthorized, MarkerAccessInvalid)
			return
		}

		next.ServeHTTP(writer, request.WithContext(WithPrincipal(request.Context(), principal)))
	}
}

// RequireRole : пропускает только авторизованных с одной из указанных ролей
func RequireRole(roles ...model.Role) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal, err := PrincipalFromContext(request.Context())
			if err != nil {
				writeError(writer, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !slices.Contains(roles, principal.Role) {
				writeError(writer, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func writeError(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: text,
		},
	})
}
