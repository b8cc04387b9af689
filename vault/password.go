package vault

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SetFolderPassword marks a folder private and protects it with the
// given password. Only the bcrypt hash ever leaves the engine; vault
// contents themselves are not encrypted.
func (e *Engine) SetFolderPassword(ctx context.Context, folderID string, password string) error {
	e.mu.Lock()
	_, ok := e.folders.Get(folderID)
	e.mu.Unlock()

	if !ok {
		return ErrFolderNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing folder password: %w", err)
	}

	hashStr := string(hash)
	private := true

	patch := FolderPatch{IsPrivate: &private, PasswordHash: &hashStr}
	if err := e.remote.UpdateFolder(ctx, folderID, patch); err != nil {
		return fmt.Errorf("updating folder: %w", err)
	}

	e.mu.Lock()
	if f, stillThere := e.folders.Get(folderID); stillThere {
		f.IsPrivate = true
		f.PasswordHash = hashStr
		e.folders.Put(f)
	}
	e.mu.Unlock()

	return nil
}

// VerifyFolderPassword checks a password attempt against a private
// folder. Non-private folders always verify.
func (e *Engine) VerifyFolderPassword(folderID string, password string) error {
	e.mu.Lock()
	folder, ok := e.folders.Get(folderID)
	e.mu.Unlock()

	if !ok {
		return ErrFolderNotFound
	}

	if !folder.IsPrivate || folder.PasswordHash == "" {
		return nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(folder.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrWrongPassword
		}

		return fmt.Errorf("verifying folder password: %w", err)
	}

	return nil
}
