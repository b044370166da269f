package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token has expired")
)

// Session tokens only bridge the gap between password login and the second
// factor, so they are deliberately short lived.
const defaultSessionTokenDuration = 5 * time.Minute

type SessionManagerInterface interface {
	VerifySessionToken(sessionToken string) (string, error)
	DeleteSessionToken(sessionToken string)
	StartSessionTokenCleanup(interval time.Duration)
	GenerateSessionToken(userID string, duration time.Duration) (string, error)
}

// pendingLogin is a password-verified login still waiting on its second
// factor.
type pendingLogin struct {
	userID    string
	expiresAt time.Time
}

type SessionManager struct {
	mu      sync.Mutex
	pending map[string]pendingLogin
}

func NewSessionManager() SessionManagerInterface {
	return &SessionManager{
		pending: make(map[string]pendingLogin),
	}
}

func (sm *SessionManager) GenerateSessionToken(userID string, duration time.Duration) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.pending[token] = pendingLogin{
		userID:    userID,
		expiresAt: time.Now().Add(duration),
	}
	return token, nil
}

func (sm *SessionManager) VerifySessionToken(sessionToken string) (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	login, exists := sm.pending[sessionToken]
	if !exists {
		return "", ErrInvalidSessionToken
	}
	if time.Now().After(login.expiresAt) {
		delete(sm.pending, sessionToken)
		return "", ErrExpiredSessionToken
	}
	return login.userID, nil
}

func (sm *SessionManager) DeleteSessionToken(sessionToken string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.pending, sessionToken)
}

// StartSessionTokenCleanup sweeps abandoned logins, the ones where the user
// never completed the second factor, on a fixed interval.
func (sm *SessionManager) StartSessionTokenCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			now := time.Now()
			sm.mu.Lock()
			for token, login := range sm.pending {
				if now.After(login.expiresAt) {
					delete(sm.pending, token)
				}
			}
			sm.mu.Unlock()
		}
	}()
}
