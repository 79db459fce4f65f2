// This package manages the API token used to authorize catalog mutations.
// The token lives in an encrypted file under the configured data directory,
// sealed with the fernet key in the service secret; reads never need it.
package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fernet/fernet-go"

	"github.com/vizzuality/rwgo/config"
)

// name of the encrypted token file inside the data directory
const tokenFileName = "token.dat"

func tokenFilePath() string {
	return filepath.Join(config.Service.DataDirectory, tokenFileName)
}

func secretKey() (*fernet.Key, error) {
	if config.Service.Secret == "" {
		return nil, errors.New("No service secret was configured!")
	}
	return fernet.DecodeKey(config.Service.Secret)
}

// WriteToken seals the given API token with the configured secret and
// stores it in the data directory.
func WriteToken(token string) error {
	key, err := secretKey()
	if err != nil {
		return err
	}
	sealed, err := fernet.EncryptAndSign([]byte(token), key)
	if err != nil {
		return err
	}
	return os.WriteFile(tokenFilePath(), sealed, 0600)
}

// ReadToken retrieves the stored API token, verifying and decrypting it
// with the configured secret. A missing or undecryptable file is an error.
func ReadToken() (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	sealed, err := os.ReadFile(tokenFilePath())
	if err != nil {
		return "", err
	}
	plaintext := fernet.VerifyAndDecrypt(sealed, 0, []*fernet.Key{key})
	if plaintext == nil {
		return "", errors.New("Couldn't verify the stored API token (wrong secret?)")
	}
	return strings.TrimSpace(string(plaintext)), nil
}
