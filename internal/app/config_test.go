package app

import (
	"reflect"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "JWT_SECRET", "QUESTION_CACHE_TTL_SECONDS", "CORS_ORIGINS", "SINGLE_ATTEMPT", "TRUST_PROXY_HEADERS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("unexpected driver: %s", cfg.DBDriver)
	}
	if cfg.JWTSecret != DefaultJWTSecret {
		t.Fatalf("expected dev secret")
	}
	if cfg.QuestionCacheTTLSeconds != 30 {
		t.Fatalf("unexpected cache ttl: %d", cfg.QuestionCacheTTLSeconds)
	}
	if cfg.TokenTTLHours != 168 {
		t.Fatalf("unexpected token ttl: %d", cfg.TokenTTLHours)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.SingleAttempt {
		t.Fatalf("single attempt should default off")
	}
	if cfg.TrustProxyHeaders {
		t.Fatalf("proxy headers should not be trusted by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("QUESTION_CACHE_TTL_SECONDS", "0")
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("SINGLE_ATTEMPT", "yes")
	t.Setenv("ALLOW_ADMIN_REGISTRATION", "on")
	t.Setenv("LOGIN_MAX_FAILURES", "-3")

	cfg := LoadConfig()
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected driver: %s", cfg.DBDriver)
	}
	if cfg.QuestionCacheTTLSeconds != 0 {
		t.Fatalf("explicit 0 should disable the cache, got %d", cfg.QuestionCacheTTLSeconds)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if !cfg.SingleAttempt || !cfg.AllowAdminRegistration {
		t.Fatalf("expected boolean flags to be enabled")
	}
	if cfg.LoginMaxFailures != 5 {
		t.Fatalf("negative value should fall back, got %d", cfg.LoginMaxFailures)
	}
}

func TestBoolOrDefault(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"0", false},
		{"off", false},
		{"TRUE", true},
		{"maybe", true},
	}
	for _, tc := range cases {
		t.Setenv("MOCKTEST_FLAG", tc.raw)
		if got := boolOrDefault("MOCKTEST_FLAG", true); got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.raw, tc.want, got)
		}
	}
}
