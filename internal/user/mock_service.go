package user

import "time"

// MockUserService backs the handler tests. Only the methods a test exercises
// are implemented.
type MockUserService struct {
	Users        map[string]*User
	RegisterErr  error
	PasswordErr  error
	LastNewEmail string
}

func NewMockUserService() *MockUserService {
	return &MockUserService{Users: make(map[string]*User)}
}

func (m *MockUserService) Register(email, login, _ string) (*User, error) {
	if m.RegisterErr != nil {
		return nil, m.RegisterErr
	}
	newUser := &User{
		ID:        "user-" + login,
		Email:     email,
		Login:     login,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.Users[newUser.ID] = newUser
	return newUser, nil
}

func (m *MockUserService) GetUserByID(userID string) (*User, error) {
	existing, ok := m.Users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return existing, nil
}

func (m *MockUserService) ChangePasswordWithOldPassword(userID, _, _ string) error {
	if _, ok := m.Users[userID]; !ok {
		return ErrUserNotFound
	}
	return m.PasswordErr
}

func (m *MockUserService) RequestEmailChange(userID, newEmail string) error {
	if _, ok := m.Users[userID]; !ok {
		return ErrUserNotFound
	}
	m.LastNewEmail = newEmail
	return nil
}

func (m *MockUserService) VerifyRegistrationCode(email, code string) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) GenerateVerificationCode(user *User) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) SendVerificationCode(user *User) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) SaveEmailVerificationCode(userID string, code string, expiresAt time.Time, codeType string) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) SendEmailChangeVerificationCode(user *User, newEmail string) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) GetEmailVerificationCode(userID string) (string, string, string, time.Time, time.Time, error) {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) GetUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) DeleteEmailTwoFactorCode(userID string) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) ResetPassword(userID, newPassword string) error {
	//TODO implement me
	panic("implement me")
}

func (m *MockUserService) ConfirmEmailChange(userID, code string) error {
	//TODO implement me
	panic("implement me")
}
