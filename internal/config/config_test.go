package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var configEnvKeys = []string{
	"CONFIG_PATH", "APP_ENV", "LOG_LEVEL", "LISTEN_ADDR", "DB_PATH", "AGENTS_PATH",
	"ACTIONS_PATH", "TIMEZONE", "CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE",
	"EXTERNAL_HTTP_TIMEOUT_SECONDS", "SLACK_BOT_TOKEN", "DIGEST_CHANNEL_ID",
	"DIGEST_SCHEDULE", "LLM_SUMMARY_ENABLED", "ANTHROPIC_API_KEY", "LLM_MODEL",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig("")

	if cfg.Env != "dev" {
		t.Fatalf("unexpected env default: %q", cfg.Env)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr default: %q", cfg.ListenAddr)
	}
	if cfg.DBPath != "./backoffice.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.AgentsPath != "./data/agents.json" {
		t.Fatalf("unexpected agents path default: %q", cfg.AgentsPath)
	}
	if cfg.ActionsPath != "" {
		t.Fatalf("actions path should default to empty, got %q", cfg.ActionsPath)
	}
	if cfg.RateLimit() != 300 {
		t.Fatalf("unexpected rate limit default: %d", cfg.RateLimit())
	}
	if cfg.ExternalHTTPTimeoutSeconds != defaultExternalHTTPTimeoutSeconds {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.LLMModel != defaultLLMModel {
		t.Fatalf("unexpected llm model default: %q", cfg.LLMModel)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.DigestConfigured() {
		t.Fatal("digest should be disabled by default")
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
env: "prod"
listen_addr: ":9000"
db_path: "/tmp/yaml.db"
agents_path: "/etc/backoffice/agents.json"
timezone: "America/Los_Angeles"
cors_origins: ["https://yaml.example.com"]
rate_limit_per_minute: 0
slack_bot_token: "xoxb-yaml"
digest_channel_id: "C123"
digest_schedule: "0 18 * * 1-5"
external_http_timeout_seconds: 75
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")

	cfg := LoadConfig("")

	if cfg.Env != "prod" || cfg.ListenAddr != ":9000" {
		t.Fatalf("expected env and listen addr from yaml, got %q %q", cfg.Env, cfg.ListenAddr)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.AgentsPath != "/etc/backoffice/agents.json" {
		t.Fatalf("expected agents path from yaml, got %q", cfg.AgentsPath)
	}
	if cfg.Location.String() != "UTC" {
		t.Fatalf("expected timezone from env override, got %v", cfg.Location)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.RateLimit() != 0 {
		t.Fatalf("explicit zero rate limit should disable limiting, got %d", cfg.RateLimit())
	}
	if cfg.ExternalHTTPTimeoutSeconds != 120 {
		t.Fatalf("expected external HTTP timeout from env override, got %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if !cfg.DigestConfigured() {
		t.Fatal("digest should be configured from yaml")
	}
}

func TestLoadConfigExplicitPathWins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TIMEZONE", "UTC")
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("listen_addr: \":7000\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	other := filepath.Join(t.TempDir(), "other.yaml")
	if err := os.WriteFile(other, []byte("listen_addr: \":6000\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", other)

	cfg := LoadConfig(explicit)
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("expected listen addr from explicit path, got %q", cfg.ListenAddr)
	}
}

func TestDigestWithoutSlackIsDisabled(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DIGEST_SCHEDULE", "30 17 * * *")

	cfg := LoadConfig("")
	if cfg.DigestConfigured() {
		t.Fatal("digest must stay disabled without slack token and channel")
	}
}

func TestParseSchedule(t *testing.T) {
	if _, err := ParseSchedule("0 18 * * 1-5"); err != nil {
		t.Fatalf("ParseSchedule returned error: %v", err)
	}
	if _, err := ParseSchedule("*/5 * * *"); err == nil {
		t.Fatal("expected four-field schedule to fail")
	}
	if _, err := ParseSchedule("0 25 * * *"); err == nil {
		t.Fatal("expected out-of-range hour to fail")
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("BO_TEST_STR", "value")
	envOverride(&s, "BO_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	e := "keep"
	t.Setenv("BO_TEST_EMPTY", "")
	envOverrideAllowEmpty(&e, "BO_TEST_EMPTY")
	if e != "" {
		t.Fatalf("envOverrideAllowEmpty failed, got %q", e)
	}

	i := 1
	t.Setenv("BO_TEST_INT", "42")
	envOverrideInt(&i, "BO_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	b := false
	t.Setenv("BO_TEST_BOOL", "TRUE")
	envOverrideBool(&b, "BO_TEST_BOOL")
	if !b {
		t.Fatalf("envOverrideBool failed, got %v", b)
	}

	var list []string
	t.Setenv("BO_TEST_LIST", " a ,b,, c")
	envOverrideList(&list, "BO_TEST_LIST")
	if len(list) != 3 || list[0] != "a" || list[2] != "c" {
		t.Fatalf("envOverrideList failed, got %v", list)
	}
}

func runFatalSubprocess(t *testing.T, testName, marker string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^"+testName+"$")
	cmd.Env = append(os.Environ(), marker+"=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

func TestLoadConfigInvalidTimezoneFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_TZ_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "Mars/Colony")
		LoadConfig("")
		return
	}
	runFatalSubprocess(t, "TestLoadConfigInvalidTimezoneFatal", "TEST_INVALID_TZ_FATAL")
}

func TestLoadConfigInvalidScheduleFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_CRON_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "UTC")
		_ = os.Setenv("DIGEST_SCHEDULE", "every evening")
		LoadConfig("")
		return
	}
	runFatalSubprocess(t, "TestLoadConfigInvalidScheduleFatal", "TEST_INVALID_CRON_FATAL")
}

func TestLoadConfigLLMWithoutKeyFatal(t *testing.T) {
	if os.Getenv("TEST_LLM_NO_KEY_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "UTC")
		_ = os.Setenv("LLM_SUMMARY_ENABLED", "true")
		_ = os.Unsetenv("ANTHROPIC_API_KEY")
		LoadConfig("")
		return
	}
	runFatalSubprocess(t, "TestLoadConfigLLMWithoutKeyFatal", "TEST_LLM_NO_KEY_FATAL")
}

func TestLoadConfigShortTimeoutFatal(t *testing.T) {
	if os.Getenv("TEST_SHORT_TIMEOUT_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "UTC")
		_ = os.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "2")
		LoadConfig("")
		return
	}
	runFatalSubprocess(t, "TestLoadConfigShortTimeoutFatal", "TEST_SHORT_TIMEOUT_FATAL")
}
