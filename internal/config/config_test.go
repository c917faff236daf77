package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Artifacts: ArtifactsConfig{CatalogPath: "data/movies.json", MatrixPath: "data/similarity.bin"},
		Posters:   PostersConfig{Provider: "none"},
		Cache:     CacheConfig{Driver: "none"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingArtifacts(t *testing.T) {
	cfg := validConfig()
	cfg.Artifacts.MatrixPath = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing matrix path")
	}
	if err.Error() != "artifacts.matrix_path is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_PosterProvider(t *testing.T) {
	tests := []struct {
		name    string
		posters PostersConfig
		wantErr bool
	}{
		{"none", PostersConfig{Provider: "none"}, false},
		{"tmdb with key", PostersConfig{Provider: "tmdb", APIKey: "k"}, false},
		{"tmdb with token", PostersConfig{Provider: "tmdb", AccessToken: "t"}, false},
		{"tmdb without credentials", PostersConfig{Provider: "tmdb"}, true},
		{"unknown provider", PostersConfig{Provider: "omdb"}, true},
		{"negative rate", PostersConfig{Provider: "none", RatePerSec: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Posters = tt.posters
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CacheDriver(t *testing.T) {
	tests := []struct {
		name    string
		cache   CacheConfig
		wantErr bool
	}{
		{"none", CacheConfig{Driver: "none"}, false},
		{"redis", CacheConfig{Driver: "redis", Addrs: []string{"localhost:6379"}}, false},
		{"valkey", CacheConfig{Driver: "valkey", Addrs: []string{"localhost:6379"}}, false},
		{"redis without addrs", CacheConfig{Driver: "redis"}, true},
		{"unknown driver", CacheConfig{Driver: "memcached"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Cache = tt.cache
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Recommend.Limit != 5 {
		t.Errorf("expected Limit=5, got %d", cfg.Recommend.Limit)
	}
	if cfg.Posters.Provider != "none" {
		t.Errorf("expected provider none without credentials, got %q", cfg.Posters.Provider)
	}
	if cfg.Posters.Workers != 5 {
		t.Errorf("expected Workers=5, got %d", cfg.Posters.Workers)
	}
	if cfg.Posters.Burst != 5 {
		t.Errorf("expected Burst=5, got %d", cfg.Posters.Burst)
	}
	if cfg.Posters.Breaker.FailureThreshold != 5 {
		t.Errorf("expected FailureThreshold=5, got %d", cfg.Posters.Breaker.FailureThreshold)
	}
	if cfg.Posters.PlaceholderURL != "https://via.placeholder.com/150?text=No+Poster" {
		t.Errorf("unexpected placeholder %q", cfg.Posters.PlaceholderURL)
	}
	if cfg.Cache.Driver != "none" {
		t.Errorf("expected cache driver none, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("expected TTLHours=168, got %d", cfg.Cache.TTLHours)
	}
}

func TestApplyDefaults_ProviderFromCredentials(t *testing.T) {
	cfg := Config{Posters: PostersConfig{APIKey: "k"}}
	cfg.ApplyDefaults()

	if cfg.Posters.Provider != "tmdb" {
		t.Errorf("expected provider tmdb, got %q", cfg.Posters.Provider)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Recommend: RecommendConfig{Limit: 8},
		Posters:   PostersConfig{Provider: "none", Workers: 2, Burst: 7, PlaceholderURL: "/static/none.png"},
		Cache:     CacheConfig{Driver: "redis", TTLHours: 1},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Recommend.Limit != 8 {
		t.Errorf("expected Limit=8, got %d", cfg.Recommend.Limit)
	}
	if cfg.Posters.Workers != 2 || cfg.Posters.Burst != 7 {
		t.Errorf("workers/burst overridden: %d/%d", cfg.Posters.Workers, cfg.Posters.Burst)
	}
	if cfg.Posters.PlaceholderURL != "/static/none.png" {
		t.Errorf("placeholder overridden: %q", cfg.Posters.PlaceholderURL)
	}
	if cfg.Cache.Driver != "redis" || cfg.Cache.TTLHours != 1 {
		t.Errorf("cache overridden: %+v", cfg.Cache)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MOVIEREC_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("a: ${MOVIEREC_TEST_KEY}\nb: ${MOVIEREC_UNSET_VAR:-fallback}\nc: ${MOVIEREC_UNSET_VAR}")))
	want := "a: secret\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoad_FromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o750); err != nil {
		t.Fatal(err)
	}
	yml := `
http:
  port: ${MOVIEREC_TEST_PORT:-9090}
artifacts:
  catalog_path: movies.json
  matrix_path: similarity.bin
posters:
  api_key: ${MOVIEREC_TEST_TMDB_KEY}
`
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOVIEREC_TEST_TMDB_KEY", "abc")
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Posters.Provider != "tmdb" || cfg.Posters.APIKey != "abc" {
		t.Errorf("unexpected posters config: %+v", cfg.Posters)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
