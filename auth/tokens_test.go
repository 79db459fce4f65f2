package auth

import (
	"os"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"

	"github.com/vizzuality/rwgo/config"
)

// temporary testing directory
var TESTING_DIR string

// the fernet key used as the service secret in these tests
var testKey fernet.Key

// performs testing setup
func setup() {
	TESTING_DIR, _ = os.MkdirTemp(os.TempDir(), "rwgo-auth-tests-")
	config.Service.DataDirectory = TESTING_DIR
	testKey.Generate()
	config.Service.Secret = testKey.Encode()
}

// performs testing breakdown
func breakdown() {
	os.RemoveAll(TESTING_DIR)
}

func TestTokenRoundTrip(t *testing.T) {
	assert := assert.New(t)
	config.Service.Secret = testKey.Encode()

	assert.Nil(WriteToken("eyJhbGciOiJIUzI1NiJ9.totally-a-jwt"))
	token, err := ReadToken()
	assert.Nil(err)
	assert.Equal("eyJhbGciOiJIUzI1NiJ9.totally-a-jwt", token)

	// the file on disk is sealed, not plaintext
	sealed, err := os.ReadFile(tokenFilePath())
	assert.Nil(err)
	assert.NotContains(string(sealed), "totally-a-jwt")
}

func TestReadTokenWithWrongSecret(t *testing.T) {
	assert := assert.New(t)
	config.Service.Secret = testKey.Encode()
	assert.Nil(WriteToken("my-precious"))

	var otherKey fernet.Key
	otherKey.Generate()
	config.Service.Secret = otherKey.Encode()

	_, err := ReadToken()
	assert.NotNil(err, "A token sealed with a different secret shouldn't verify")
}

func TestMissingTokenFileIsAnError(t *testing.T) {
	assert := assert.New(t)
	config.Service.Secret = testKey.Encode()
	os.Remove(tokenFilePath())

	_, err := ReadToken()
	assert.NotNil(err)
}

func TestUnconfiguredSecretIsAnError(t *testing.T) {
	assert := assert.New(t)
	config.Service.Secret = ""

	assert.NotNil(WriteToken("anything"))
	_, err := ReadToken()
	assert.NotNil(err)
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	setup()
	status := m.Run()
	breakdown()
	os.Exit(status)
}
