package config

import "testing"

func TestAppEnvironmentDefaultsToDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if got := AppEnvironment(); got != EnvironmentDevelopment {
		t.Errorf("AppEnvironment() = %q, want %q", got, EnvironmentDevelopment)
	}
}

func TestAppEnvironmentNormalisesAliases(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"prod", EnvironmentProduction},
		{"PRODUCTION", EnvironmentProduction},
		{"stag", EnvironmentStaging},
		{"development", EnvironmentDevelopment},
	}
	for _, tt := range tests {
		t.Setenv("APP_ENV", tt.raw)
		if got := AppEnvironment(); got != tt.want {
			t.Errorf("AppEnvironment() with APP_ENV=%q = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsProductionLike(t *testing.T) {
	if !IsProductionLike(EnvironmentProduction) || !IsProductionLike(EnvironmentStaging) {
		t.Error("production and staging are production-like")
	}
	if IsProductionLike(EnvironmentDevelopment) {
		t.Error("development is not production-like")
	}
}

func TestResolveEnvSpecificPathKeepsExplicitPath(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	got := resolveEnvSpecificPath("custom.yml", defaultConfigPath, map[string]string{
		EnvironmentProduction: "missing-production.yml",
	})
	if got != "custom.yml" {
		t.Errorf("explicit path must never be overridden, got %q", got)
	}
}
