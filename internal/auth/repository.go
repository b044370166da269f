package auth

import (
	"database/sql"
	"errors"
	"fmt"
)

// TwoFactorRepository persists per-user second-factor state: the enabled
// flag and method on the users row, plus the TOTP secret in its own table.
type TwoFactorRepository interface {
	EnableTwoFactor(userID, method string) error
	GetTwoFactorSecret(userID string) (string, error)
	SaveTwoFactorSecret(userID, encryptedSecret string) error
	DisableTwoFactor(userID string) error
}

type twoFactorRepository struct {
	db *sql.DB
}

func NewTwoFactorRepository(db *sql.DB) TwoFactorRepository {
	return &twoFactorRepository{db: db}
}

func (r *twoFactorRepository) SaveTwoFactorSecret(userID, encryptedSecret string) error {
	_, err := r.db.Exec(`
		INSERT INTO user_two_factor_secrets (user_id, encrypted_secret, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET encrypted_secret = EXCLUDED.encrypted_secret, created_at = NOW()`,
		userID, encryptedSecret)
	if err != nil {
		return fmt.Errorf("saving two-factor secret: %w", err)
	}
	return nil
}

func (r *twoFactorRepository) GetTwoFactorSecret(userID string) (string, error) {
	var encryptedSecret string
	err := r.db.QueryRow(
		`SELECT encrypted_secret FROM user_two_factor_secrets WHERE user_id = $1`,
		userID).Scan(&encryptedSecret)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUser2FANotEnabled
	}
	if err != nil {
		return "", fmt.Errorf("loading two-factor secret: %w", err)
	}
	return encryptedSecret, nil
}

func (r *twoFactorRepository) EnableTwoFactor(userID, method string) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET two_factor_enabled = TRUE, two_factor_method = $1, updated_at = NOW()
		WHERE id = $2`,
		method, userID)
	if err != nil {
		return fmt.Errorf("enabling two-factor: %w", err)
	}
	return nil
}

// DisableTwoFactor clears the flag and, for TOTP users, drops the stored
// secret in the same database transaction.
func (r *twoFactorRepository) DisableTwoFactor(userID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var method string
	if err := tx.QueryRow(`SELECT two_factor_method FROM users WHERE id = $1`, userID).Scan(&method); err != nil {
		return fmt.Errorf("loading two-factor method: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE users
		SET two_factor_enabled = FALSE, two_factor_method = ''
		WHERE id = $1`,
		userID); err != nil {
		return fmt.Errorf("disabling two-factor: %w", err)
	}

	if method == totp2FAAuthMethod {
		if _, err := tx.Exec(`DELETE FROM user_two_factor_secrets WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("deleting TOTP secret: %w", err)
		}
	}

	return tx.Commit()
}
