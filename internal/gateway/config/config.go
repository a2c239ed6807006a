package config

import (
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"fnsearch/internal/artifact"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `toml:"env"`
	DB       DBConfig       `toml:"db"`
	Web      WebConfig      `toml:"web"`
	Scrape   ScrapeConfig   `toml:"scrape"`
	Artifact ArtifactConfig `toml:"artifact"`
	Log      LogConfig      `toml:"log"`
}

// DBConfig selects the store backend. URL wins over the discrete fields;
// with neither set the JSON file at FilePath is used.
type DBConfig struct {
	URL      string `toml:"url"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"db"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	FilePath string `toml:"file"`
}

type WebConfig struct {
	Port          string `toml:"bind_address"`
	AllowedOrigin string `toml:"allowed_origin"`
	DefaultLimit  int    `toml:"default_limit"`
	MaxLimit      int    `toml:"max_limit"`
	// RefreshEvery rebuilds the index periodically when > 0.
	RefreshEvery Duration `toml:"refresh_every"`
}

type ScrapeConfig struct {
	CacheDir   string   `toml:"cache_dir"`
	GitBin     string   `toml:"git_bin"`
	GitTimeout Duration `toml:"git_timeout"`
	Workers    int      `toml:"workers"`
	CatalogURL string   `toml:"catalog_url"`
}

type ArtifactConfig struct {
	artifact.S3Config
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
	Color bool   `toml:"color"`
}

// Duration decodes TOML strings such as "30s" and plain integers as seconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if secs, err := strconv.Atoi(s); err == nil {
		d.Duration = time.Duration(secs) * time.Second
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	d.Duration = v
	return nil
}

// Load reads .env, parses args, applies the optional TOML file and then
// environment overrides.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("fnsearch", flag.ContinueOnError)
	file := fs.String("config", os.Getenv("FNSEARCH_CONFIG"), "TOML configuration file")
	port := fs.String("port", "", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := LoadFile(*file)
	if err != nil {
		return nil, err
	}
	if *port != "" {
		cfg.Web.Port = normalizePort(*port)
	}
	return cfg, nil
}

// LoadFile is Load without flags; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if path = strings.TrimSpace(path); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), cfg.Env)
	cfg.DB.URL = firstNonEmpty(strings.TrimSpace(os.Getenv("DATABASE_URL")), cfg.DB.URL)
	cfg.DB.FilePath = firstNonEmpty(strings.TrimSpace(os.Getenv("STORE_FILE")), cfg.DB.FilePath)
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		cfg.Web.Port = envPort
	}
	cfg.Web.AllowedOrigin = firstNonEmpty(strings.TrimSpace(os.Getenv("ALLOWED_ORIGIN")), cfg.Web.AllowedOrigin)
	cfg.Scrape.CacheDir = firstNonEmpty(strings.TrimSpace(os.Getenv("REPOS_CACHE_DIR")), cfg.Scrape.CacheDir)
	cfg.Scrape.GitBin = firstNonEmpty(strings.TrimSpace(os.Getenv("GIT_BIN")), cfg.Scrape.GitBin)
	if raw := strings.TrimSpace(os.Getenv("GIT_TIMEOUT")); raw != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(raw)); err == nil {
			cfg.Scrape.GitTimeout = d
		}
	}
	cfg.Log.Level = firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), cfg.Log.Level)
	applyArtifactEnv(&cfg.Artifact, cfg.Env)
}

func applyArtifactEnv(a *ArtifactConfig, env string) {
	a.Endpoint = firstNonEmpty(resolveArtifactEndpoint(env), a.Endpoint)
	a.Region = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), a.Region, "us-east-1")
	a.AccessKey = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), a.AccessKey)
	a.SecretKey = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), a.SecretKey)
	a.Bucket = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), a.Bucket)
	if raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			a.UseSSL = v
		}
	}
	a.Enabled = a.Enabled || a.S3Config.Enabled()
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func normalize(cfg *Config) {
	cfg.Web.Port = normalizePort(cfg.Web.Port)
	if cfg.Web.DefaultLimit <= 0 {
		cfg.Web.DefaultLimit = 10
	}
	if cfg.Web.MaxLimit < cfg.Web.DefaultLimit {
		cfg.Web.MaxLimit = max(100, cfg.Web.DefaultLimit)
	}
	if cfg.Scrape.Workers <= 0 {
		cfg.Scrape.Workers = 4
	}
	if cfg.Scrape.GitTimeout.Duration <= 0 {
		cfg.Scrape.GitTimeout.Duration = 2 * time.Minute
	}
}

func normalizePort(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

// DSN returns the Postgres connection string, or "" for the file backend.
func (c DBConfig) DSN() string {
	if strings.TrimSpace(c.URL) != "" {
		return strings.TrimSpace(c.URL)
	}
	if strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Name) == "" {
		return ""
	}
	host := c.Host
	if c.Port > 0 {
		host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   host,
		Path:   "/" + c.Name,
	}
	return u.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
