package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "playstat-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "playstat-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_FootballDataConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("FOOTBALL_DATA_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.FootballData.Enabled {
			t.Fatalf("expected FootballData.Enabled=false by default")
		}
		if cfg.FootballData.BaseURL != "https://api.football-data.org/v4" {
			t.Fatalf("unexpected default base url: %q", cfg.FootballData.BaseURL)
		}
	})

	t.Run("enabled requires token", func(t *testing.T) {
		t.Setenv("FOOTBALL_DATA_ENABLED", "true")
		t.Setenv("FOOTBALL_DATA_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when FOOTBALL_DATA_ENABLED=true without token")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("FOOTBALL_DATA_ENABLED", "true")
		t.Setenv("FOOTBALL_DATA_TOKEN", "token")
		t.Setenv("FOOTBALL_DATA_LEAGUE_CODES", "PL, BL1")
		t.Setenv("FOOTBALL_DATA_TIMEOUT", "15s")
		t.Setenv("FOOTBALL_DATA_MAX_RETRIES", "2")
		t.Setenv("FOOTBALL_DATA_REQUESTS_PER_MINUTE", "8")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.FootballData.Enabled {
			t.Fatalf("expected FootballData.Enabled=true")
		}
		if len(cfg.FootballData.LeagueCodes) != 2 || cfg.FootballData.LeagueCodes[1] != "BL1" {
			t.Fatalf("unexpected league codes: %+v", cfg.FootballData.LeagueCodes)
		}
		if cfg.FootballData.Timeout != 15*time.Second || cfg.FootballData.MaxRetries != 2 {
			t.Fatalf("unexpected client settings: %+v", cfg.FootballData)
		}
		if cfg.FootballData.RequestsPerMinute != 8 {
			t.Fatalf("unexpected pace: %d", cfg.FootballData.RequestsPerMinute)
		}
	})
}

func TestLoad_ChainConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("CHAIN_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ChainEnabled {
			t.Fatalf("expected ChainEnabled=false by default")
		}
		if cfg.ChainTimeout != 10*time.Second {
			t.Fatalf("unexpected default chain timeout: %s", cfg.ChainTimeout)
		}
	})

	t.Run("enabled requires target and internal token", func(t *testing.T) {
		t.Setenv("CHAIN_ENABLED", "true")
		t.Setenv("CHAIN_TARGET_BASE_URL", "")
		t.Setenv("INTERNAL_JOB_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when CHAIN_ENABLED=true without required env")
		}
	})

	t.Run("enabled with required values", func(t *testing.T) {
		t.Setenv("CHAIN_ENABLED", "true")
		t.Setenv("CHAIN_TARGET_BASE_URL", "https://playstat.fly.dev")
		t.Setenv("INTERNAL_JOB_TOKEN", "internal-job-token")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.ChainEnabled || cfg.ChainTargetBaseURL != "https://playstat.fly.dev" {
			t.Fatalf("unexpected chain config: %+v", cfg)
		}
		if cfg.InternalJobToken != "internal-job-token" {
			t.Fatalf("unexpected internal job token: %q", cfg.InternalJobToken)
		}
	})
}

func TestLoad_TargetLocalesParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("TARGET_LOCALES", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		want := []string{"en", "ko", "es", "ja"}
		if len(cfg.TargetLocales) != len(want) {
			t.Fatalf("unexpected locales: %+v", cfg.TargetLocales)
		}
		for i, loc := range want {
			if cfg.TargetLocales[i] != loc {
				t.Fatalf("unexpected locales: %+v", cfg.TargetLocales)
			}
		}
	})

	t.Run("custom list with glossary", func(t *testing.T) {
		t.Setenv("TARGET_LOCALES", "en, ko")
		t.Setenv("TRANSLATE_GLOSSARY", "derby, el clasico")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.TargetLocales) != 2 || cfg.TargetLocales[1] != "ko" {
			t.Fatalf("unexpected locales: %+v", cfg.TargetLocales)
		}
		if len(cfg.GlossaryTerms) != 2 || cfg.GlossaryTerms[1] != "el clasico" {
			t.Fatalf("unexpected glossary: %+v", cfg.GlossaryTerms)
		}
	})
}
