// Package credstore keeps the Odoo connection record sealed on disk. It is
// the closest analog to the secure keychain storage a device would offer: a
// single record, replaced wholesale on every save, encrypted at rest.
package credstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/mamadbah2/stockscan/internal/domain/models"
)

const saltSize = 16

// scrypt work parameters; interactive-login strength.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Store seals and unseals the connection record at a fixed path.
type Store struct {
	path       string
	passphrase []byte
}

// New creates a credential store. The passphrase must be non-empty; it is
// stretched with scrypt into the sealing key.
func New(path, passphrase string) (*Store, error) {
	if path == "" {
		return nil, errors.New("credstore: path is required")
	}
	if passphrase == "" {
		return nil, errors.New("credstore: passphrase is required")
	}
	return &Store{path: path, passphrase: []byte(passphrase)}, nil
}

// Save seals the record and replaces the file atomically via rename, so a
// crash mid-write leaves either the old record or the new one, never a mix.
func (s *Store) Save(_ context.Context, conn models.ConnectionConfig) error {
	plaintext, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("credstore: encode record: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("credstore: generate salt: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("credstore: generate nonce: %w", err)
	}

	sealed := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	sealed = aead.Seal(sealed, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("credstore: create directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("credstore: write record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("credstore: replace record: %w", err)
	}
	return nil
}

// Load unseals the record. The boolean is false when no record has ever been
// saved; a record that exists but cannot be unsealed is an error, not an
// absence.
func (s *Store) Load(_ context.Context) (models.ConnectionConfig, bool, error) {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.ConnectionConfig{}, false, nil
		}
		return models.ConnectionConfig{}, false, fmt.Errorf("credstore: read record: %w", err)
	}

	if len(sealed) < saltSize+chacha20poly1305.NonceSizeX {
		return models.ConnectionConfig{}, false, errors.New("credstore: record truncated")
	}

	salt := sealed[:saltSize]
	nonce := sealed[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := s.aead(salt)
	if err != nil {
		return models.ConnectionConfig{}, false, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return models.ConnectionConfig{}, false, fmt.Errorf("credstore: unseal record: %w", err)
	}

	var conn models.ConnectionConfig
	if err := json.Unmarshal(plaintext, &conn); err != nil {
		return models.ConnectionConfig{}, false, fmt.Errorf("credstore: decode record: %w", err)
	}
	return conn, true, nil
}

// Clear removes the record. Clearing an absent record is a no-op.
func (s *Store) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: remove record: %w", err)
	}
	return nil
}

func (s *Store) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("credstore: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("credstore: init cipher: %w", err)
	}
	return aead, nil
}
