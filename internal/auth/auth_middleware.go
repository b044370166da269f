package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/albert-carrasquel/home-flow/internal/user"
)

// JWTAccessTokenMiddleware guards the protected API. It validates the bearer
// token and confirms the account behind it still exists before letting the
// request through.
func (s *service) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, err.Error())
				return
			}

			userID, err := s.jwtManager.ValidateAccessToken(tokenString)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Access token is invalid or expired")
				return
			}

			if _, status, message := s.lookupTokenUser(userID); status != 0 {
				writeJSONError(w, status, message)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JWTRefreshTokenMiddleware reads the refresh token from its http-only
// cookie, never from the Authorization header, and checks it against the
// user's current password hash.
func (s *service) JWTRefreshTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("refresh_token")
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Refresh token cookie is required")
				return
			}

			userID, err := s.jwtManager.ExtractUserIDFromRefreshToken(cookie.Value)
			if err != nil {
				if errors.Is(err, ErrExpiredJWTToken) {
					writeJSONError(w, http.StatusUnauthorized, ErrExpiredJWTToken.Error())
					return
				}
				writeJSONError(w, http.StatusUnauthorized, ErrInvalidJWTRefreshToken.Error())
				return
			}

			existingUser, status, message := s.lookupTokenUser(userID)
			if status != 0 {
				writeJSONError(w, status, message)
				return
			}
			if err := s.jwtManager.ValidateRefreshToken(cookie.Value, existingUser.HashToken); err != nil {
				writeJSONError(w, http.StatusUnauthorized, ErrInvalidJWTRefreshToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("Authorization header is required")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", errors.New("Authorization header must use the Bearer scheme")
	}
	return token, nil
}

// lookupTokenUser resolves the account behind a validated token. A deleted
// account reads as unauthorized, not as a server error.
func (s *service) lookupTokenUser(userID string) (*user.User, int, string) {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, http.StatusUnauthorized, ErrUserNotFound.Error()
		}
		return nil, http.StatusInternalServerError, ErrInternalError.Error()
	}
	return existingUser, 0, ""
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
