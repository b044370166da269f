package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidJWTToken        = errors.New("access token is invalid")
	ErrExpiredJWTToken        = errors.New("token has expired")
	ErrInvalidJWTRefreshToken = errors.New("refresh token is invalid")
)

const (
	defaultJWTDuration        = 10 * time.Minute
	defaultJWTRefreshDuration = 720 * time.Hour
)

type JWTManagerInterface interface {
	GenerateAccessJWT(userID string, duration time.Duration) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
	GenerateRefreshJWT(userID, tokenHash string, duration time.Duration) (string, error)
	ValidateRefreshToken(tokenString, tokenHash string) error
	ExtractUserIDFromRefreshToken(tokenString string) (string, error)
}

type accessClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

type refreshClaims struct {
	UserID  string `json:"user_id"`
	BindKey string `json:"bind_key"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret []byte
}

func NewJWTManager() JWTManagerInterface {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return &JWTManager{secret: []byte(secret)}
}

// bindKey ties a refresh token to the user's current password hash. Rotating
// the password changes the hash, which invalidates every refresh token issued
// before the change.
func (j *JWTManager) bindKey(userID, tokenHash string) string {
	mac := hmac.New(sha256.New, []byte(tokenHash))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (j *JWTManager) GenerateAccessJWT(userID string, duration time.Duration) (string, error) {
	claims := &accessClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(duration).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

func (j *JWTManager) GenerateRefreshJWT(userID, tokenHash string, duration time.Duration) (string, error) {
	claims := &refreshClaims{
		UserID:  userID,
		BindKey: j.bindKey(userID, tokenHash),
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(duration).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// parseToken verifies the signature and maps an expired-token parse failure
// onto ErrExpiredJWTToken so callers can distinguish it from tampering.
func (j *JWTManager) parseToken(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredJWTToken
		}
		return nil, err
	}
	return token, nil
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	claims := &accessClaims{}
	token, err := j.parseToken(tokenString, claims)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidJWTToken
	}
	return claims.UserID, nil
}

func (j *JWTManager) ExtractUserIDFromRefreshToken(tokenString string) (string, error) {
	claims := &refreshClaims{}
	token, err := j.parseToken(tokenString, claims)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidJWTToken
	}
	return claims.UserID, nil
}

func (j *JWTManager) ValidateRefreshToken(tokenString, tokenHash string) error {
	claims := &refreshClaims{}
	token, err := j.parseToken(tokenString, claims)
	if err != nil {
		return err
	}
	if !token.Valid || claims.UserID == "" {
		return ErrInvalidJWTToken
	}

	expected := j.bindKey(claims.UserID, tokenHash)
	if !hmac.Equal([]byte(claims.BindKey), []byte(expected)) {
		return ErrInvalidJWTRefreshToken
	}
	return nil
}
