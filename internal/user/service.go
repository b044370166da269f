package user

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"

	emailService "github.com/albert-carrasquel/home-flow/internal/email"
)

const (
	maxEmailLength     = 35
	minEmailLength     = 3
	maxLoginLength     = 30
	minLoginLength     = 5
	bcryptCost         = 12
	defaultCodeTimeout = 2
	CodeVerifyType     = "verify"
	CodeChangeEmail    = "email_upd"
)

var (
	ErrInvalidEmail             = fmt.Errorf("email address is not valid")
	ErrEmailLength              = fmt.Errorf("email address must be between %d and %d characters", minEmailLength, maxEmailLength)
	ErrLoginLength              = fmt.Errorf("login must be between %d and %d characters", minLoginLength, maxLoginLength)
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrInternalError            = errors.New("internal server error")
	ErrLoginAlreadyExists       = errors.New("login already exists")
	ErrUserAlreadyVerified      = errors.New("user already verified")
	ErrInvalidVerificationCode  = errors.New("invalid verification code")
	ErrVerificationCodeExpired  = errors.New("verification code expired")
	ErrTooManyEmailCodeRequests = errors.New("too many email code requests")
	ErrInvalidOldPassword       = errors.New("invalid old password")
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Login            string    `json:"login"`
	PasswordHash     string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TwoFactorMethod  string    `json:"two_factor_method"`
	HashToken        string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	IsActive         bool      `json:"is_active"`
}

type Service interface {
	Register(email, login, password string) (*User, error)
	VerifyRegistrationCode(email, code string) error
	GenerateVerificationCode(user *User) error
	GetUserByID(userID string) (*User, error)
	SendVerificationCode(user *User) error
	SaveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error
	SendEmailChangeVerificationCode(user *User, newEmail string) error
	GetEmailVerificationCode(userID string) (string, string, string, time.Time, time.Time, error)
	GetUserByLoginOrEmail(loginOrEmail string) (*User, error)
	DeleteEmailTwoFactorCode(userID string) error
	ChangePasswordWithOldPassword(userID, oldPassword, newPassword string) error
	ResetPassword(userID, newPassword string) error
	RequestEmailChange(userID, newEmail string) error
	ConfirmEmailChange(userID, code string) error
}

type service struct {
	repo         Repository
	emailService emailService.EmailSender
}

func NewUserService(repo Repository, emailService emailService.EmailSender) Service {
	return &service{
		repo:         repo,
		emailService: emailService,
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
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

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	_, err := rand.Read(token)
	if err != nil {
		return "", fmt.Errorf("could not generate hash token: %v", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}

	if err := checkmail.ValidateHost(email); err != nil {
		// DNS timeouts are not the user's fault, skip the host check then
		if !strings.Contains(err.Error(), "timeout") {
			return ErrInvalidEmail
		}
		log.Println("email host check timed out, continuing without it")
	}
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(email, login, password string) (*User, error) {
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	if len(login) == 0 {
		parts := strings.Split(email, "@")
		if len(parts) < 2 {
			return nil, ErrInvalidEmail
		}
		login = parts[0]
	} else if len(login) > maxLoginLength || len(login) < minLoginLength {
		return nil, ErrLoginLength
	}

	existingUser, err := s.repo.userExistsByLoginOrEmail(login, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Println("error checking for existing user:", err)
		return nil, ErrInternalError
	}

	if existingUser != nil {
		if existingUser.Login == login {
			return nil, ErrLoginAlreadyExists
		} else if existingUser.Email == email {
			return nil, ErrEmailAlreadyExists
		}
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		log.Println("error during hashing the password:", err)
		return nil, ErrInternalError
	}

	hashToken, err := generateHashToken()
	if err != nil {
		log.Println("error during generating a hash token:", err)
		return nil, ErrInternalError
	}

	user := &User{
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}

	if err := s.repo.createUser(user); err != nil {
		log.Println("error during creating the user:", err)
		return nil, ErrInternalError
	}

	if err := s.SendVerificationCode(user); err != nil {
		log.Println("error during sending verification email:", err)
		return nil, ErrInternalError
	}

	return user, nil
}

func (s *service) SendVerificationCode(user *User) error {
	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().Add(10 * time.Minute).UTC()
	err = s.repo.saveEmailVerificationCode(user.ID, newCode, expirationTime, CodeVerifyType, "")
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	s.emailService.QueueEmail(user.Email, emailService.RegistrationConfirmationData{
		UserName: user.Login,
		Code:     newCode,
	})

	return nil
}

func (s *service) VerifyRegistrationCode(email, code string) error {
	user, err := s.repo.getUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if user.IsActive {
		return ErrUserAlreadyVerified
	}

	storedCode, codeType, _, expiryTime, _, err := s.repo.getEmailVerificationCode(user.ID)
	if err != nil {
		return ErrInvalidVerificationCode
	}

	if codeType != CodeVerifyType {
		return ErrInvalidVerificationCode
	}

	if storedCode != code {
		return ErrInvalidVerificationCode
	}

	if time.Now().UTC().After(expiryTime) {
		return ErrVerificationCodeExpired
	}

	if err := s.repo.updateEmailVerified(user.ID, true); err != nil {
		return ErrInternalError
	}

	_ = s.repo.deleteEmailTwoFactorCode(user.ID)
	return nil
}

func (s *service) reSendVerificationCode(user *User) error {
	_, _, _, _, createdAt, err := s.repo.getEmailVerificationCode(user.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return ErrInternalError
	}

	timeSinceLastCode := time.Now().UTC().Sub(createdAt.UTC())
	if timeSinceLastCode.Minutes() < defaultCodeTimeout {
		return ErrTooManyEmailCodeRequests
	}

	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().UTC().Add(10 * time.Minute)

	err = s.repo.saveEmailVerificationCode(user.ID, newCode, expirationTime, CodeVerifyType, "")
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	s.emailService.QueueEmail(user.Email, emailService.RegistrationConfirmationData{
		UserName: user.Login,
		Code:     newCode,
	})

	return nil
}

func (s *service) ChangePasswordWithOldPassword(userID, oldPassword, newPassword string) error {
	user, err := s.repo.getUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !doPasswordsMatch(user.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}

	return s.changePassword(userID, newPassword)
}

// changePassword also rotates the hash token, which invalidates every
// refresh token issued before the change.
func (s *service) changePassword(userID, newPassword string) error {
	newPasswordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %v", err)
	}

	newHashToken, err := generateHashToken()
	if err != nil {
		return fmt.Errorf("could not generate hash token: %v", err)
	}

	err = s.repo.updateUserPasswordAndHashToken(userID, newPasswordHash, newHashToken)
	if err != nil {
		return fmt.Errorf("could not update user password: %v", err)
	}

	return nil
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func (s *service) GenerateVerificationCode(user *User) error {
	err := s.reSendVerificationCode(user)
	if err != nil {
		if errors.Is(err, ErrTooManyEmailCodeRequests) {
			return err
		}
		return ErrInternalError
	}
	return nil
}

func (s *service) SendEmailChangeVerificationCode(user *User, newEmail string) error {
	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().Add(10 * time.Minute).UTC()
	err = s.repo.saveEmailVerificationCode(user.ID, newCode, expirationTime, CodeChangeEmail, newEmail)
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	s.emailService.QueueEmail(newEmail, emailService.RegistrationConfirmationData{
		UserName: user.Login,
		Code:     newCode,
	})

	return nil
}

func (s *service) RequestEmailChange(userID, newEmail string) error {
	_, err := s.repo.getUserByEmail(newEmail)
	if err == nil {
		return ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("error checking email existence: %v", err)
	}
	if err := validateEmailAddress(newEmail); err != nil {
		return err
	}
	existingUser, err := s.repo.getUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}
	if err := s.SendEmailChangeVerificationCode(existingUser, newEmail); err != nil {
		log.Println("error during sending verification email:", err)
		return ErrInternalError
	}
	return nil
}

func (s *service) ConfirmEmailChange(userID, code string) error {
	storedCode, codeType, newEmail, expiryTime, _, err := s.repo.getEmailVerificationCode(userID)
	if err != nil {
		return ErrInvalidVerificationCode
	}

	if codeType != CodeChangeEmail {
		return ErrInvalidVerificationCode
	}

	if storedCode != code {
		return ErrInvalidVerificationCode
	}

	if time.Now().UTC().After(expiryTime) {
		return ErrVerificationCodeExpired
	}
	if err := s.repo.updateEmail(userID, newEmail); err != nil {
		return ErrInternalError
	}
	_ = s.repo.deleteEmailTwoFactorCode(userID)
	return nil
}

func (s *service) GetUserByID(userID string) (*User, error) {
	return s.repo.getUserByID(userID)
}

func (s *service) SaveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error {
	return s.repo.saveEmailVerificationCode(userID, code, expiresAt, codeType, "")
}

func (s *service) GetEmailVerificationCode(userID string) (string, string, string, time.Time, time.Time, error) {
	return s.repo.getEmailVerificationCode(userID)
}

func (s *service) GetUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	return s.repo.getUserByLoginOrEmail(loginOrEmail)
}

func (s *service) DeleteEmailTwoFactorCode(userID string) error {
	return s.repo.deleteEmailTwoFactorCode(userID)
}

func (s *service) ResetPassword(userID, newPassword string) error {
	return s.changePassword(userID, newPassword)
}
