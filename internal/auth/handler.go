package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/albert-carrasquel/home-flow/internal/user"
)

// refreshCookiePath scopes the refresh cookie to the one endpoint that needs
// it, so the long-lived token never rides along on regular API calls.
const refreshCookiePath = "/api/refresh/token"

type Handler struct {
	authService Service
}

func NewHandler(authService Service) *Handler {
	return &Handler{authService: authService}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteNoneMode,
		Path:     refreshCookiePath,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteNoneMode,
		Path:     refreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func authedUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrLogin string `json:"email_or_login"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmailOrLogin == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existingUser, sessionTokenOrJWT, refreshToken, err := h.authService.Login(req.EmailOrLogin, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, ErrTooManyEmailCodeRequests):
			respondError(w, http.StatusTooManyRequests, ErrTooManyEmailCodeRequests.Error())
		case errors.Is(err, ErrUserNotVerified):
			respondJSON(w, http.StatusForbidden, map[string]interface{}{
				"status":  "verification_required",
				"message": "Account not verified. A verification code has been sent to your email.",
			})
		default:
			respondError(w, http.StatusInternalServerError, "Could not log in")
		}
		return
	}

	// no refresh token means 2FA is pending and the caller got a session token
	if refreshToken == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": map[string]string{
				"message":         "Two-factor authentication required",
				"2fa_auth_method": existingUser.TwoFactorMethod,
				"session_token":   sessionTokenOrJWT,
			},
		})
		return
	}

	setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": sessionTokenOrJWT,
		},
	})
}

// HandleLogout expires the refresh cookie. Access tokens are short lived and
// simply age out.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("refresh_token"); err == nil {
		clearRefreshCookie(w)
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logged out",
	})
}

func (h *Handler) HandleRegisterTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	otpURI, err := h.authService.RegisterTwoFactor(userID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTwoFactorMethod), errors.Is(err, ErrUser2FAAlreadyEnabled):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Could not register two-factor authentication")
		}
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Two-factor authentication initiated. Please verify to enable.",
	}
	if req.Method == totp2FAAuthMethod {
		response["data"] = map[string]string{"otp_uri": otpURI}
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) HandleVerifyTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
		Code   string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	if err := h.authService.VerifyTwoFactorCode(userID, req.Method, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrInvalid2FACode), errors.Is(err, ErrInvalidCodeType):
			respondError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, ErrVerificationCodeExpired):
			respondError(w, http.StatusConflict, "Two-factor code has expired")
		case errors.Is(err, ErrUser2FAAlreadyEnabled):
			respondError(w, http.StatusConflict, "Two-factor authentication is already enabled")
		case errors.Is(err, ErrInvalidTwoFactorMethod):
			respondError(w, http.StatusBadRequest, "Invalid two-factor method")
		default:
			respondError(w, http.StatusInternalServerError, "Could not verify two-factor code")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
	})
}

func (h *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string `json:"session_token"`
		Code         string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionToken == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existingUser, accessToken, refreshToken, err := h.authService.VerifyTwoFactor(req.SessionToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSessionToken), errors.Is(err, ErrExpiredSessionToken),
			errors.Is(err, ErrInvalid2FACode), errors.Is(err, ErrInvalidCodeType):
			respondError(w, http.StatusUnauthorized, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "Could not verify two-factor authentication")
		}
		return
	}

	setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id":      existingUser.ID,
			"access_token": accessToken,
		},
	})
}

func (h *Handler) HandleRequestEmail2FACode(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	if err := h.authService.RequestEmail2FACode(userID); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrUser2FANotEnabled):
			respondError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		case errors.Is(err, ErrInvalidTwoFactorMethod):
			respondError(w, http.StatusBadRequest, "Invalid two-factor method")
		default:
			respondError(w, http.StatusInternalServerError, "Could not send two-factor code")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Two-factor code sent to email",
	})
}

func (h *Handler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
		Code   string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	if err := h.authService.DisableTwoFactorAuth(userID, req.Method, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrInvalidTwoFactorMethod):
			respondError(w, http.StatusBadRequest, "Invalid two-factor method")
		case errors.Is(err, user.ErrNoTwoFactorCodeGenerated):
			respondError(w, http.StatusBadRequest, "No two-factor code generated")
		case errors.Is(err, ErrInvalid2FACode):
			respondError(w, http.StatusUnauthorized, "Invalid two-factor code")
		case errors.Is(err, ErrVerificationCodeExpired):
			respondError(w, http.StatusConflict, "Two-factor code has expired")
		default:
			respondError(w, http.StatusInternalServerError, "Could not disable two-factor authentication")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Two-factor authentication disabled",
	})
}

// RefreshAccessToken rotates both tokens. The refresh middleware has already
// validated the cookie against the user's current password hash.
func (h *Handler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUserID(w, r)
	if !ok {
		return
	}

	accessToken, newRefreshToken, err := h.authService.RefreshAccessToken(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not refresh access token")
		return
	}

	setRefreshCookie(w, newRefreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}

func (h *Handler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrTooManyEmailCodeRequests):
			respondError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		default:
			respondError(w, http.StatusInternalServerError, "Could not request password reset")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
	})
}

func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrInvalid2FACode):
			respondError(w, http.StatusUnauthorized, "Invalid verification code")
		case errors.Is(err, ErrVerificationCodeExpired):
			respondError(w, http.StatusUnauthorized, "Verification code has expired")
		case errors.Is(err, ErrInvalidTwoFactorMethod), errors.Is(err, ErrInvalidCodeType):
			respondError(w, http.StatusBadRequest, "Invalid request")
		case errors.Is(err, user.ErrNoTwoFactorCodeGenerated):
			respondError(w, http.StatusBadRequest, "No reset code was requested for this account")
		default:
			respondError(w, http.StatusInternalServerError, "Could not reset password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Password has been reset",
	})
}
