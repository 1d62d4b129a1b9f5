package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/smallbiznis/paydash/pkg/db"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PAYDASH"

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	Host  string
	Port  int
	Debug bool

	LogLevel  string
	LogFormat string

	OtelEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OtelSamplingRatio float64

	Dataset DatasetConfig
}

// DatasetConfig selects where the payroll records are read from.
type DatasetConfig struct {
	Driver    string
	Path      string
	Delimiter string
	Table     string

	// SeedFrom is a delimited file copied into Table when Table is empty.
	SeedFrom string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// DB returns the connection settings for SQL drivers.
func (d DatasetConfig) DB() db.Config {
	return db.Config{
		Type:     d.Driver,
		Host:     d.DBHost,
		Port:     d.DBPort,
		Name:     d.DBName,
		User:     d.DBUser,
		Password: d.DBPassword,
		SSLMode:  d.DBSSLMode,
		Path:     d.Path,
	}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads .env, the environment and the process flags.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Args[1:])
}

// LoadFrom builds the configuration from args and the environment.
func LoadFrom(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	flags := pflag.NewFlagSet("paydash", pflag.ContinueOnError)
	flags.String("host", v.GetString("host"), "address to listen on")
	flags.Int("port", v.GetInt("port"), "port to listen on")
	flags.Bool("debug", v.GetBool("debug"), "enable debug mode")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppVersion:        v.GetString("app.version"),
		Environment:       v.GetString("environment"),
		Host:              strings.TrimSpace(v.GetString("host")),
		Port:              v.GetInt("port"),
		Debug:             v.GetBool("debug"),
		LogLevel:          strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		OtelEnabled:       v.GetBool("otel.enabled"),
		OTLPEndpoint:      strings.TrimSpace(v.GetString("otel.endpoint")),
		OTLPProtocol:      strings.ToLower(strings.TrimSpace(v.GetString("otel.protocol"))),
		OtelSamplingRatio: v.GetFloat64("otel.sampling_ratio"),
		Dataset: DatasetConfig{
			Driver:     strings.ToLower(strings.TrimSpace(v.GetString("dataset.driver"))),
			Path:       strings.TrimSpace(v.GetString("dataset.path")),
			Delimiter:  v.GetString("dataset.delimiter"),
			Table:      strings.TrimSpace(v.GetString("dataset.table")),
			SeedFrom:   strings.TrimSpace(v.GetString("dataset.seed_from")),
			DBHost:     v.GetString("dataset.db.host"),
			DBPort:     v.GetString("dataset.db.port"),
			DBName:     v.GetString("dataset.db.name"),
			DBUser:     v.GetString("dataset.db.user"),
			DBPassword: v.GetString("dataset.db.password"),
			DBSSLMode:  v.GetString("dataset.db.sslmode"),
		},
	}
	if cfg.Debug && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "paydash")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("environment", "development")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8050)
	v.SetDefault("debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.protocol", "grpc")
	v.SetDefault("otel.sampling_ratio", 0.1)
	v.SetDefault("dataset.driver", DriverCSV)
	v.SetDefault("dataset.path", "data/nyc-payroll.csv")
	v.SetDefault("dataset.delimiter", ",")
	v.SetDefault("dataset.table", "payroll_records")
	v.SetDefault("dataset.seed_from", "")
	v.SetDefault("dataset.db.host", "localhost")
	v.SetDefault("dataset.db.port", "5432")
	v.SetDefault("dataset.db.name", "payroll")
	v.SetDefault("dataset.db.user", "postgres")
	v.SetDefault("dataset.db.password", "")
	v.SetDefault("dataset.db.sslmode", "disable")
}

// Validate reports configuration that cannot start the service.
func (c Config) Validate() error {
	var errs error
	if c.Host == "" {
		errs = errors.Join(errs, errors.New("host cannot be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = errors.Join(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.Dataset.Driver {
	case DriverCSV:
		if c.Dataset.Path == "" {
			errs = errors.Join(errs, errors.New("dataset.path is required for csv"))
		}
		if len([]rune(c.Dataset.Delimiter)) != 1 {
			errs = errors.Join(errs, fmt.Errorf("dataset.delimiter must be a single character, got %q", c.Dataset.Delimiter))
		}
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if c.Dataset.Table == "" {
			errs = errors.Join(errs, errors.New("dataset.table is required for sql drivers"))
		}
		if c.Dataset.SeedFrom != "" && len([]rune(c.Dataset.Delimiter)) != 1 {
			errs = errors.Join(errs, fmt.Errorf("dataset.delimiter must be a single character, got %q", c.Dataset.Delimiter))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unsupported dataset.driver %q", c.Dataset.Driver))
	}
	return errs
}
