package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	// EnvVar may hold the credential JSON blob directly (useful in containers
	// where mounting a file is inconvenient).
	EnvVar = "MONGODB_CREDENTIALS"
	// DefaultPath is the last rung of the fallback chain.
	DefaultPath = "config/mongodb_credentials.json"
)

// ErrNoCredentials is returned when none of the three sources yields a credential.
var ErrNoCredentials = errors.New(
	"no document-store credentials found; provide them via: " +
		"1) explicit credential path, 2) " + EnvVar + " env var, 3) " + DefaultPath)

// Credential is the parsed service credential for the document store.
type Credential struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// Resolve loads a credential using the fixed priority order:
// explicit path, then the environment variable, then the default path.
// An explicit path that does not exist falls through to the next source,
// matching the lenient startup behavior of the rest of the gateway.
func Resolve(explicitPath string) (*Credential, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err == nil {
			return fromFile(explicitPath)
		}
	}

	if blob := os.Getenv(EnvVar); blob != "" {
		cred, err := parse([]byte(blob))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvVar, err)
		}
		return cred, nil
	}

	if _, err := os.Stat(DefaultPath); err == nil {
		return fromFile(DefaultPath)
	}

	return nil, ErrNoCredentials
}

func fromFile(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential file %s: %w", path, err)
	}
	cred, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse credential file %s: %w", path, err)
	}
	return cred, nil
}

func parse(data []byte) (*Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.URI == "" {
		return nil, errors.New("credential is missing required field \"uri\"")
	}
	if c.Database == "" {
		c.Database = "neurotrade"
	}
	return &c, nil
}
