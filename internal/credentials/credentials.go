package credentials

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoEnvironmentCredentials is returned by LoadFromEnvironment when the
// access key variables are unset.
var ErrNoEnvironmentCredentials = errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")

// Credentials holds static access keys for an object store
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewCredentials creates a new credentials instance
func NewCredentials() *Credentials {
	return &Credentials{}
}

// Load resolves credentials for bucket: from passwdFile when it is set,
// otherwise from the environment. It returns empty credentials, not an
// error, when the environment holds none; callers then fall back to the
// SDK's default provider chain.
func Load(passwdFile, bucket string) (*Credentials, error) {
	c := NewCredentials()
	if passwdFile != "" {
		if err := c.LoadFromPasswdFile(passwdFile, bucket); err != nil {
			return nil, err
		}
		return c, nil
	}
	// Unset variables leave c empty; the SDK default chain takes over.
	if err := c.LoadFromEnvironment(); err != nil && !errors.Is(err, ErrNoEnvironmentCredentials) {
		return nil, err
	}
	return c, nil
}

// LoadFromPasswdFile loads credentials from an s3fs passwd file. Each line is
// either ACCESS_KEY:SECRET_KEY or BUCKET:ACCESS_KEY:SECRET_KEY; a line naming
// bucket wins over a default line. Blank lines and # comments are skipped.
func (c *Credentials) LoadFromPasswdFile(path, bucket string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read passwd file: %w", err)
	}

	var defaultKeys, bucketKeys []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ":")
		switch len(parts) {
		case 2:
			if defaultKeys == nil {
				defaultKeys = parts
			}
		case 3:
			if bucket != "" && strings.TrimSpace(parts[0]) == bucket && bucketKeys == nil {
				bucketKeys = parts[1:]
			}
		default:
			return fmt.Errorf("invalid passwd file format on line %d, expected [BUCKET:]ACCESS_KEY:SECRET_KEY", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read passwd file: %w", err)
	}

	keys := bucketKeys
	if keys == nil {
		keys = defaultKeys
	}
	if keys == nil {
		return fmt.Errorf("no credentials for bucket %q in passwd file", bucket)
	}

	c.AccessKeyID = strings.TrimSpace(keys[0])
	c.SecretAccessKey = strings.TrimSpace(keys[1])

	return nil
}

// LoadFromEnvironment loads credentials from environment variables
func (c *Credentials) LoadFromEnvironment() error {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	sessionToken := os.Getenv("AWS_SESSION_TOKEN")

	if accessKey == "" || secretKey == "" {
		return ErrNoEnvironmentCredentials
	}

	c.AccessKeyID = accessKey
	c.SecretAccessKey = secretKey
	c.SessionToken = sessionToken

	return nil
}

// IsValid checks if credentials are valid (both access key and secret are set)
func (c *Credentials) IsValid() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}
