package cmd

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func TestDotenvLoading(t *testing.T) {
	tmpDir := t.TempDir()
	originalDir, _ := os.Getwd()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	defer func() {
		os.Chdir(originalDir)
	}()

	t.Run("LoadEnvFile", func(t *testing.T) {
		os.Unsetenv("STREAMDL_FAIL_ON")

		if err := os.WriteFile(".env", []byte("STREAMDL_FAIL_ON=warning\n"), 0644); err != nil {
			t.Fatalf("Failed to create .env file: %v", err)
		}
		if err := godotenv.Load(); err != nil {
			t.Fatalf("Failed to load .env file: %v", err)
		}

		if got := os.Getenv("STREAMDL_FAIL_ON"); got != "warning" {
			t.Errorf("Expected STREAMDL_FAIL_ON='warning', got '%s'", got)
		}

		os.Remove(".env")
		os.Unsetenv("STREAMDL_FAIL_ON")
	})

	t.Run("MissingEnvFile", func(t *testing.T) {
		os.Remove(".env")

		if err := godotenv.Load(); err == nil {
			t.Error("Expected error when loading non-existent .env file, but got nil")
		}
	})

	t.Run("EnvVarPriority", func(t *testing.T) {
		os.Setenv("STREAMDL_MIN_SEVERITY", "error")

		if err := os.WriteFile(".env", []byte("STREAMDL_MIN_SEVERITY=info\n"), 0644); err != nil {
			t.Fatalf("Failed to create .env file: %v", err)
		}
		if err := godotenv.Load(); err != nil {
			t.Fatalf("Failed to load .env file: %v", err)
		}

		if got := os.Getenv("STREAMDL_MIN_SEVERITY"); got != "error" {
			t.Errorf("Expected STREAMDL_MIN_SEVERITY='error' (existing env var should take precedence), got '%s'", got)
		}

		os.Remove(".env")
		os.Unsetenv("STREAMDL_MIN_SEVERITY")
	})
}
