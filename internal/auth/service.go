package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	emailService "github.com/albert-carrasquel/home-flow/internal/email"
	"github.com/albert-carrasquel/home-flow/internal/user"
)

const (
	totp2FAAuthMethod  = "totp"
	email2FAAuthMethod = "email"
	defaultCodeTimeout = 2
	CodeVerifyType     = "verify"
	Code2FAType        = "2fa"
	CodePassType       = "password"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInternalError            = errors.New("internal server error")
	ErrInvalidTwoFactorMethod   = errors.New("two factor auth method not supported")
	ErrUser2FANotEnabled        = errors.New("two factor auth is not enabled")
	ErrInvalid2FACode           = errors.New("2fa code is invalid")
	ErrUser2FAAlreadyEnabled    = errors.New("2fa auth already enabled")
	ErrInvalidVerificationCode  = errors.New("invalid verification code")
	ErrVerificationCodeExpired  = errors.New("verification code expired")
	ErrUserNotVerified          = errors.New("user has not been verified")
	ErrTooManyEmailCodeRequests = errors.New("too many email code requests")
	ErrInvalidCodeType          = errors.New("invalid code type")
)

type Service interface {
	Login(emailOrLogin, password string) (*user.User, string, string, error)
	VerifyTwoFactor(sessionToken, code string) (*user.User, string, string, error)
	RegisterTwoFactor(userID string, method string) (string, error)
	RefreshAccessToken(userID string) (string, string, error)
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
	SendEmailCode(user *user.User, codeType string) error
	VerifyTwoFactorCode(userID, method, code string) error
	DisableTwoFactorAuth(userID, method, verificationCode string) error
	RequestEmail2FACode(userID string) error
	ResetPassword(email, code, newPassword string) error
	RequestPasswordReset(email string) error
}

type service struct {
	repo           TwoFactorRepository
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	emailService   emailService.EmailSender
	authenticator  Authenticator
}

func NewAuthService(repo TwoFactorRepository, userService user.Service, sessionManager SessionManagerInterface, jwtManager JWTManagerInterface, emailService emailService.EmailSender, authenticator Authenticator) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		emailService:   emailService,
		authenticator:  authenticator,
	}
}

func GenerateVerificationCode() (string, error) {
	code := make([]byte, 6)
	_, err := rand.Read(code)
	if err != nil {
		return "", fmt.Errorf("could not generate verification code: %v", err)
	}
	for i := range code {
		code[i] = '0' + (code[i] % 10)
	}

	return string(code), nil
}

func (s *service) SendEmailCode(user *user.User, codeType string) error {
	_, storedCodeType, _, _, createdAt, _ := s.userService.GetEmailVerificationCode(user.ID)
	if storedCodeType != "" {
		timeSinceLastCode := time.Now().UTC().Sub(createdAt.UTC())
		if timeSinceLastCode.Minutes() < defaultCodeTimeout && storedCodeType != CodeVerifyType && codeType != storedCodeType {
			return ErrTooManyEmailCodeRequests
		}
	}

	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().UTC().Add(10 * time.Minute)
	err = s.userService.SaveEmailVerificationCode(user.ID, newCode, expirationTime, codeType)
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	switch codeType {
	case Code2FAType:
		s.emailService.QueueEmail(user.Email, emailService.TwoFactorCodeData{
			UserName: user.Login,
			Code:     newCode,
		})
	case CodePassType:
		s.emailService.QueueEmail(user.Email, emailService.ResetPasswordData{
			UserName: user.Login,
			Code:     newCode,
		})
	case CodeVerifyType:
		s.emailService.QueueEmail(user.Email, emailService.RegistrationConfirmationData{
			UserName: user.Login,
			Code:     newCode,
		})
	default:
		log.Printf("codeType %q is not supported, email has not been sent", codeType)
	}

	return nil
}

// consumeEmailCode checks the stored email code against the submitted one and
// deletes it on success. Codes are single use.
func (s *service) consumeEmailCode(userID, wantCodeType, code string) error {
	storedCode, codeType, _, expiryTime, _, err := s.userService.GetEmailVerificationCode(userID)
	if err != nil {
		if errors.Is(err, user.ErrNoTwoFactorCodeGenerated) {
			return user.ErrNoTwoFactorCodeGenerated
		}
		return ErrInternalError
	}
	if codeType != wantCodeType {
		return ErrInvalidCodeType
	}
	if storedCode != code {
		return ErrInvalid2FACode
	}
	if time.Now().After(expiryTime) {
		return ErrVerificationCodeExpired
	}
	if err := s.userService.DeleteEmailTwoFactorCode(userID); err != nil {
		return ErrInternalError
	}
	return nil
}

func (s *service) Login(emailOrLogin, password string) (*user.User, string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(emailOrLogin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		log.Println("error when getting user from database:", err)
		return nil, "", "", ErrInternalError
	}

	if !existingUser.IsActive {
		if err := s.SendEmailCode(existingUser, CodeVerifyType); err != nil {
			return nil, "", "", ErrInternalError
		}
		return nil, "", "", ErrUserNotVerified
	}

	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, "", "", ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		switch existingUser.TwoFactorMethod {
		case email2FAAuthMethod:
			if err := s.SendEmailCode(existingUser, Code2FAType); err != nil {
				log.Println("error during sending verification email:", err)
				return nil, "", "", ErrInternalError
			}
		case totp2FAAuthMethod:
			// authenticator app generates the code, nothing to send
		default:
			return nil, "", "", ErrInvalidTwoFactorMethod
		}
		sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID, defaultSessionTokenDuration)
		if err != nil {
			return nil, "", "", ErrInternalError
		}
		return existingUser, sessionToken, "", nil
	}

	jwtToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, defaultJWTDuration)
	if err != nil {
		return nil, "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(existingUser.ID, existingUser.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		return nil, "", "", ErrInternalError
	}

	return existingUser, jwtToken, refreshToken, nil
}

func (s *service) VerifyTwoFactor(sessionToken, code string) (*user.User, string, string, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return nil, "", "", err
	}
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrUserNotFound
		}
		return nil, "", "", ErrInternalError
	}
	if !existingUser.TwoFactorEnabled {
		return nil, "", "", ErrUser2FANotEnabled
	}

	switch existingUser.TwoFactorMethod {
	case email2FAAuthMethod:
		if err := s.consumeEmailCode(userID, Code2FAType, code); err != nil {
			return nil, "", "", err
		}
	case totp2FAAuthMethod:
		secret, err := s.repo.GetTwoFactorSecret(userID)
		if err != nil {
			return nil, "", "", err
		}
		if !s.authenticator.VerifyCode(secret, code) {
			return nil, "", "", ErrInvalid2FACode
		}
	default:
		return nil, "", "", ErrInvalidTwoFactorMethod
	}

	s.sessionManager.DeleteSessionToken(sessionToken)

	jwtToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, defaultJWTDuration)
	if err != nil {
		return nil, "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(existingUser.ID, existingUser.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		return nil, "", "", ErrInternalError
	}

	return existingUser, jwtToken, refreshToken, nil
}

func (s *service) RegisterTwoFactor(userID string, method string) (string, error) {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", ErrInternalError
	}

	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	switch method {
	case email2FAAuthMethod:
		if err := s.SendEmailCode(existingUser, Code2FAType); err != nil {
			log.Println("error during sending verification email:", err)
			return "", ErrInternalError
		}
		return "", nil
	case totp2FAAuthMethod:
		otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
		if err != nil {
			return "", ErrInternalError
		}
		if err := s.repo.SaveTwoFactorSecret(userID, secret); err != nil {
			return "", ErrInternalError
		}
		return otpURI, nil
	default:
		return "", ErrInvalidTwoFactorMethod
	}
}

func (s *service) RequestEmail2FACode(userID string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}
	if existingUser.TwoFactorMethod != email2FAAuthMethod {
		return ErrInvalidTwoFactorMethod
	}

	if err := s.SendEmailCode(existingUser, Code2FAType); err != nil {
		log.Println("error during sending verification email:", err)
		return ErrInternalError
	}
	return nil
}

func (s *service) DisableTwoFactorAuth(userID, method, verificationCode string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}
	if existingUser.TwoFactorMethod != method {
		return ErrInvalidTwoFactorMethod
	}

	switch existingUser.TwoFactorMethod {
	case totp2FAAuthMethod:
		secret, err := s.repo.GetTwoFactorSecret(userID)
		if err != nil {
			return ErrInternalError
		}
		if !s.authenticator.VerifyCode(secret, verificationCode) {
			return ErrInvalid2FACode
		}
	case email2FAAuthMethod:
		if err := s.consumeEmailCode(userID, Code2FAType, verificationCode); err != nil {
			return err
		}
	default:
		return ErrInvalidTwoFactorMethod
	}

	if err := s.repo.DisableTwoFactor(userID); err != nil {
		return ErrInternalError
	}
	return nil
}

func (s *service) VerifyTwoFactorCode(userID, method, code string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	switch method {
	case email2FAAuthMethod:
		if err := s.consumeEmailCode(userID, Code2FAType, code); err != nil {
			return err
		}
	case totp2FAAuthMethod:
		secret, err := s.repo.GetTwoFactorSecret(userID)
		if err != nil {
			if errors.Is(err, ErrUser2FANotEnabled) {
				return ErrInvalidTwoFactorMethod
			}
			return ErrInternalError
		}
		if !s.authenticator.VerifyCode(secret, code) {
			return ErrInvalid2FACode
		}
	default:
		return ErrInvalidTwoFactorMethod
	}

	if err := s.repo.EnableTwoFactor(userID, method); err != nil {
		return ErrInternalError
	}
	return nil
}

// RefreshAccessToken assumes the refresh token middleware already validated
// the caller.
func (s *service) RefreshAccessToken(userID string) (string, string, error) {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", ErrInternalError
	}
	jwtToken, err := s.jwtManager.GenerateAccessJWT(userID, defaultJWTDuration)
	if err != nil {
		return "", "", ErrInternalError
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshJWT(userID, existingUser.HashToken, defaultJWTRefreshDuration)
	if err != nil {
		return "", "", ErrInternalError
	}

	return jwtToken, newRefreshToken, nil
}

func (s *service) RequestPasswordReset(email string) error {
	existingUser, err := s.userService.GetUserByLoginOrEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	codeType := CodePassType
	if existingUser.TwoFactorEnabled {
		switch existingUser.TwoFactorMethod {
		case totp2FAAuthMethod:
			// reset is confirmed with the authenticator code, nothing to send
			return nil
		case email2FAAuthMethod:
			codeType = Code2FAType
		default:
			return ErrInvalidTwoFactorMethod
		}
	}

	if err := s.SendEmailCode(existingUser, codeType); err != nil {
		if errors.Is(err, ErrTooManyEmailCodeRequests) {
			return ErrTooManyEmailCodeRequests
		}
		log.Println("error during sending password reset email:", err)
		return ErrInternalError
	}
	return nil
}

func (s *service) ResetPassword(email, verificationCode, newPassword string) error {
	existingUser, err := s.userService.GetUserByLoginOrEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	if existingUser.TwoFactorEnabled {
		switch existingUser.TwoFactorMethod {
		case totp2FAAuthMethod:
			secret, err := s.repo.GetTwoFactorSecret(existingUser.ID)
			if err != nil {
				return ErrInternalError
			}
			if !s.authenticator.VerifyCode(secret, verificationCode) {
				return ErrInvalid2FACode
			}
		case email2FAAuthMethod:
			if err := s.consumeEmailCode(existingUser.ID, Code2FAType, verificationCode); err != nil {
				return err
			}
		default:
			return ErrInvalidTwoFactorMethod
		}
	} else {
		if err := s.consumeEmailCode(existingUser.ID, CodePassType, verificationCode); err != nil {
			return err
		}
	}

	if err := s.userService.ResetPassword(existingUser.ID, newPassword); err != nil {
		return ErrInternalError
	}
	return nil
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashedPassword), []byte(currPassword))
	return err == nil
}
