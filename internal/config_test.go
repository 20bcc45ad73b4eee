package internal

import "testing"

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Vault.Subfolder != "Meetings" {
		t.Errorf("subfolder = %q", cfg.Vault.Subfolder)
	}
	if !cfg.Wikilinks.Enabled || cfg.Wikilinks.MinTermLength != 3 {
		t.Errorf("wikilinks defaults = %+v", cfg.Wikilinks)
	}
	if cfg.App.HTTP.Enabled {
		t.Error("HTTP server should be off by default")
	}
}

func TestVaultConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty vault path should fail validation")
	}
}

func TestCacheConfig_PathRequired(t *testing.T) {
	cfg := CacheConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty cache path should fail validation")
	}
}

func TestHTTPConfig_PortCheckedOnlyWhenEnabled(t *testing.T) {
	cfg := HTTPConfig{Enabled: false, Port: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled server should skip port validation: %v", err)
	}

	cfg = HTTPConfig{Enabled: true, Port: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled server with port 0 should fail")
	}

	cfg = HTTPConfig{Enabled: true, Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range port should fail")
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 8686}
	if got := cfg.Address(); got != ":8686" {
		t.Errorf("Address() = %q", got)
	}
}

func TestWikilinksConfig_MinLengthCheckedOnlyWhenEnabled(t *testing.T) {
	cfg := WikilinksConfig{Enabled: false, MinTermLength: 0}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled wikilinks should skip validation: %v", err)
	}

	cfg = WikilinksConfig{Enabled: true, MinTermLength: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled wikilinks with zero min length should fail")
	}
}
