package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Database.Name != "menubox" {
		t.Errorf("Database.Name: got %q, want %q", cfg.Database.Name, "menubox")
	}
	if cfg.Mail.AppName != "Menubox" {
		t.Errorf("Mail.AppName: got %q, want %q", cfg.Mail.AppName, "Menubox")
	}
	if cfg.Mail.RelayURL == "" {
		t.Error("Mail.RelayURL: got empty, want default")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing JWT_SECRET")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing DB_PASSWORD")
	}
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for short JWT_SECRET")
	}
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "sixteen-chars-ok")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for 16-char secret in production")
	}
}

func TestParseAllowedOrigins_Production(t *testing.T) {
	os.Setenv("ALLOWED_ORIGINS", "https://menubox.app, https://admin.menubox.app")
	defer os.Clearenv()

	origins := parseAllowedOrigins("production")
	if len(origins) != 2 {
		t.Fatalf("got %d origins, want 2", len(origins))
	}
	if origins[1] != "https://admin.menubox.app" {
		t.Errorf("origins[1]: got %q, want trimmed value", origins[1])
	}
}
