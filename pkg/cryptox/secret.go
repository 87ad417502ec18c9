package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretSize is the number of random bytes in a generated signing secret.
const SecretSize = 48

// LoadOrGenerateSecret reads a base64url signing secret from path. When the
// file does not exist a new random secret is generated and persisted with
// 0600 permissions so tokens survive restarts.
func LoadOrGenerateSecret(path string) ([]byte, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create secret dir: %w", err)
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		buf := make([]byte, SecretSize)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		encoded := base64.RawURLEncoding.EncodeToString(buf)
		if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
			return nil, fmt.Errorf("write secret: %w", err)
		}
		return buf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}

	secret, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode secret %s: %w", path, err)
	}
	return secret, nil
}
