package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Supabase  SupabaseConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Access    AccessConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
	// Appointments are grouped into days in this zone.
	Timezone string
}

func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type SupabaseConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string
	// JWTSecret verifies access tokens issued by Supabase Auth.
	JWTSecret   string
	JWTAudience string
}

type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// ApplicationName tags the connections in pg_stat_activity.
	ApplicationName string
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
	if d.ApplicationName != "" {
		dsn += " application_name=" + d.ApplicationName
	}
	return dsn
}

type StorageConfig struct {
	Driver string
	Bucket string
	// CompensateOrphans removes an uploaded attachment when the record
	// insert that should reference it fails.
	CompensateOrphans bool
}

type AccessConfig struct {
	// StrictRecheck re-evaluates the appointment write rule when an
	// appointment status changes.
	StrictRecheck     bool
	LinkageCandidates int
	AccessLogLimit    int
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	// Insecure exports over plain HTTP, for a collector sidecar.
	Insecure      bool
	ExportTimeout time.Duration
	SampleRate    float64
}

type CORSConfig struct {
	AllowedOrigins []string
	// Origins ending in one of these suffixes are also allowed
	// (preview deployments).
	AllowedOriginSuffixes []string
	AllowedMethods        []string
	AllowedHeaders        []string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

func NewConfig() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "paranox-api"),
			Environment: getEnv("ENVIRONMENT", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
			Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
		},
		Supabase: SupabaseConfig{
			URL:         getEnv("SUPABASE_URL", ""),
			AnonKey:     getEnv("SUPABASE_ANON_KEY", ""),
			ServiceKey:  getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:   getEnv("JWT_SECRET", ""),
			JWTAudience: getEnv("JWT_AUDIENCE", "authenticated"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", DriverSupabase)),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "paranox"),
			User:            getEnv("DB_USER", "paranox"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			ApplicationName: getEnv("DB_APPLICATION_NAME", "paranox-api"),
		},
		Storage: StorageConfig{
			Driver:            strings.ToLower(getEnv("STORAGE_DRIVER", DriverSupabase)),
			Bucket:            getEnv("STORAGE_BUCKET", "medical-records"),
			CompensateOrphans: getEnvBool("STORAGE_COMPENSATE_ORPHANS", false),
		},
		Access: AccessConfig{
			StrictRecheck:     getEnvBool("ACCESS_STRICT_RECHECK", false),
			LinkageCandidates: getEnvInt("ACCESS_LINKAGE_CANDIDATES", 20),
			AccessLogLimit:    getEnvInt("ACCESS_LOG_LIMIT", 50),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:       getEnvBool("TRACING_ENABLED", false),
			ServiceName:   getEnv("TRACING_SERVICE_NAME", "paranox-api"),
			Endpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:      getEnvBool("TRACING_INSECURE", true),
			ExportTimeout: getEnvDuration("TRACING_EXPORT_TIMEOUT", 5*time.Second),
			SampleRate:    getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins:        getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedOriginSuffixes: getEnvSlice("ALLOWED_ORIGIN_SUFFIXES", []string{".vercel.app"}),
			AllowedMethods:        getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{
				"Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
				"Accept", "Origin", "Cache-Control", "X-Requested-With", "X-Request-ID",
			}),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST", 40),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) IsProduction() bool {
	return cfg.App.Environment == "production"
}

func (cfg *Config) Validate() error {
	var errs []string

	if cfg.Supabase.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	switch cfg.Store.Driver {
	case DriverSupabase, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER %q is not one of supabase, postgres, memory", cfg.Store.Driver))
	}
	switch cfg.Storage.Driver {
	case DriverSupabase, DriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER %q is not one of supabase, memory", cfg.Storage.Driver))
	}

	if cfg.Store.Driver == DriverSupabase || cfg.Storage.Driver == DriverSupabase {
		if cfg.Supabase.URL == "" {
			errs = append(errs, "SUPABASE_URL is required for the supabase driver")
		}
		if cfg.Supabase.ServiceKey == "" {
			errs = append(errs, "SUPABASE_SERVICE_ROLE_KEY is required for the supabase driver")
		}
	}

	if cfg.Store.Driver == DriverPostgres && cfg.Database.Password == "" && cfg.App.Environment != "development" {
		errs = append(errs, "DB_PASSWORD is required in non-development environments")
	}

	if cfg.IsProduction() && cfg.Store.Driver == DriverMemory {
		errs = append(errs, "STORE_DRIVER=memory is not allowed in production")
	}

	if cfg.Access.LinkageCandidates <= 0 {
		errs = append(errs, "ACCESS_LINKAGE_CANDIDATES must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
