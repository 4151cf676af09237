package database

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const adminPasswordKey = "admin_password"

// VerifyPassword checks password against the stored admin credential.
// A value shorter than a bcrypt hash is a plaintext seed; it is upgraded to
// a hash on the first successful match.
func VerifyPassword(ctx context.Context, store Store, password string) (bool, error) {
	stored, err := store.Get(ctx, adminPasswordKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if len(stored) < 60 {
		if len(stored) > 0 && subtle.ConstantTimeCompare([]byte(password), stored) == 1 {
			if err := SetPassword(ctx, store, password); err != nil {
				slog.Warn("Failed to upgrade plaintext admin password", "error", err)
			}
			return true, nil
		}
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword(stored, []byte(password))
	return err == nil, nil
}

func SetPassword(ctx context.Context, store Store, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return store.Set(ctx, adminPasswordKey, hashedPassword)
}

// HasPassword reports whether an admin credential has been stored.
func HasPassword(ctx context.Context, store Store) (bool, error) {
	_, err := store.Get(ctx, adminPasswordKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
