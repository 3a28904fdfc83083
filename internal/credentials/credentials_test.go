package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePasswd(t *testing.T, content string) string {
	t.Helper()
	passwdFile := filepath.Join(t.TempDir(), ".passwd-s3fs")
	if err := os.WriteFile(passwdFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test passwd file: %v", err)
	}
	return passwdFile
}

func TestLoadFromPasswdFile(t *testing.T) {
	passwdFile := writePasswd(t, "TEST_ACCESS_KEY:TEST_SECRET_KEY")

	cred := NewCredentials()
	if err := cred.LoadFromPasswdFile(passwdFile, "any-bucket"); err != nil {
		t.Fatalf("Failed to load credentials: %v", err)
	}

	if cred.AccessKeyID != "TEST_ACCESS_KEY" {
		t.Errorf("Expected AccessKeyID 'TEST_ACCESS_KEY', got '%s'", cred.AccessKeyID)
	}
	if cred.SecretAccessKey != "TEST_SECRET_KEY" {
		t.Errorf("Expected SecretAccessKey 'TEST_SECRET_KEY', got '%s'", cred.SecretAccessKey)
	}
}

func TestLoadFromPasswdFileBucketLine(t *testing.T) {
	passwdFile := writePasswd(t, `# shared keys
DEFAULT_KEY:DEFAULT_SECRET
other:OTHER_KEY:OTHER_SECRET
media:MEDIA_KEY:MEDIA_SECRET
`)

	cred := NewCredentials()
	if err := cred.LoadFromPasswdFile(passwdFile, "media"); err != nil {
		t.Fatalf("Failed to load credentials: %v", err)
	}
	if cred.AccessKeyID != "MEDIA_KEY" || cred.SecretAccessKey != "MEDIA_SECRET" {
		t.Errorf("Expected media keys, got %q/%q", cred.AccessKeyID, cred.SecretAccessKey)
	}

	cred = NewCredentials()
	if err := cred.LoadFromPasswdFile(passwdFile, "unlisted"); err != nil {
		t.Fatalf("Failed to load credentials: %v", err)
	}
	if cred.AccessKeyID != "DEFAULT_KEY" {
		t.Errorf("Expected default key, got %q", cred.AccessKeyID)
	}
}

func TestLoadFromPasswdFileNoMatch(t *testing.T) {
	passwdFile := writePasswd(t, "other:KEY:SECRET\n")

	cred := NewCredentials()
	if err := cred.LoadFromPasswdFile(passwdFile, "media"); err == nil {
		t.Error("Expected error when no line matches the bucket")
	}
}

func TestLoadFromPasswdFileInvalidFormat(t *testing.T) {
	passwdFile := writePasswd(t, "INVALID_FORMAT")

	cred := NewCredentials()
	if err := cred.LoadFromPasswdFile(passwdFile, ""); err == nil {
		t.Error("Expected error for invalid format, got nil")
	}
}

func TestLoadFromPasswdFileNotFound(t *testing.T) {
	cred := NewCredentials()
	if err := cred.LoadFromPasswdFile("/nonexistent/file", ""); err == nil {
		t.Error("Expected error for nonexistent file, got nil")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "ENV_ACCESS_KEY")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "ENV_SECRET_KEY")

	cred := NewCredentials()
	if err := cred.LoadFromEnvironment(); err != nil {
		t.Fatalf("Failed to load credentials from environment: %v", err)
	}

	if cred.AccessKeyID != "ENV_ACCESS_KEY" {
		t.Errorf("Expected AccessKeyID 'ENV_ACCESS_KEY', got '%s'", cred.AccessKeyID)
	}
	if cred.SecretAccessKey != "ENV_SECRET_KEY" {
		t.Errorf("Expected SecretAccessKey 'ENV_SECRET_KEY', got '%s'", cred.SecretAccessKey)
	}
}

func TestLoadFromEnvironmentUnset(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	cred := NewCredentials()
	if err := cred.LoadFromEnvironment(); !errors.Is(err, ErrNoEnvironmentCredentials) {
		t.Fatalf("Expected ErrNoEnvironmentCredentials, got %v", err)
	}
}

func TestLoadFallsBackToEnvironment(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	cred, err := Load("", "bucket")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred.IsValid() {
		t.Error("Expected empty credentials without environment keys")
	}
}

func TestIsValid(t *testing.T) {
	cred := NewCredentials()
	if cred.IsValid() {
		t.Error("Expected invalid credentials for empty cred, got valid")
	}

	cred.AccessKeyID = "TEST_KEY"
	cred.SecretAccessKey = "TEST_SECRET"
	if !cred.IsValid() {
		t.Error("Expected valid credentials, got invalid")
	}
}
