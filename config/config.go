package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/viktsys/woolauction/analysis"
	"github.com/viktsys/woolauction/filter"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Query    QueryConfig    `mapstructure:"query"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Exports  ExportsConfig  `mapstructure:"exports"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`
}

// DSN renders the postgres keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.TimeZone)
}

// RedisConfig configures the response cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	Output        string `mapstructure:"output"`
	AnalyticsPath string `mapstructure:"analytics_path"`
}

// TypeMatchConfig picks substring or exact wool type matching per endpoint.
type TypeMatchConfig struct {
	Search   string `mapstructure:"search"`
	Charts   string `mapstructure:"charts"`
	Compare  string `mapstructure:"compare"`
	Analysis string `mapstructure:"analysis"`
}

type QueryConfig struct {
	RowLimit   int             `mapstructure:"row_limit"`
	PriceFloor int64           `mapstructure:"price_floor"`
	TypeMatch  TypeMatchConfig `mapstructure:"type_match"`
}

type AnalysisConfig struct {
	ScenarioWindowDays int           `mapstructure:"scenario_window_days"`
	Quality            QualityConfig `mapstructure:"quality"`
}

type QualityConfig struct {
	MicronMin float64 `mapstructure:"micron_min"`
	MicronMax float64 `mapstructure:"micron_max"`
	VMMax     float64 `mapstructure:"vm_max"`
	YieldMin  float64 `mapstructure:"yield_min"`
	YieldMax  float64 `mapstructure:"yield_max"`
	KgMin     float64 `mapstructure:"kg_min"`
	KgMax     float64 `mapstructure:"kg_max"`
}

func (q QualityConfig) Bounds() analysis.QualityBounds {
	return analysis.QualityBounds{
		MicronMin: q.MicronMin,
		MicronMax: q.MicronMax,
		VMMax:     q.VMMax,
		YieldMin:  q.YieldMin,
		YieldMax:  q.YieldMax,
		KgMin:     q.KgMin,
		KgMax:     q.KgMax,
	}
}

type ExportsConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	FileWorkers int    `mapstructure:"file_workers"`
	BatchSize   int    `mapstructure:"batch_size"`
	DBWorkers   int    `mapstructure:"db_workers"`
}

// Load reads .env, then the optional YAML file, then WOOL_* environment
// variables. file may be empty to search the default locations.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MaxRowLimit caps the rows a search may return.
const MaxRowLimit = 1000

func (c *Config) Validate() error {
	if c.Query.RowLimit <= 0 || c.Query.RowLimit > MaxRowLimit {
		return fmt.Errorf("query.row_limit must be between 1 and %d, got %d", MaxRowLimit, c.Query.RowLimit)
	}
	if c.Analysis.ScenarioWindowDays <= 0 {
		return fmt.Errorf("analysis.scenario_window_days must be positive")
	}
	for name, mode := range map[string]string{
		"search":   c.Query.TypeMatch.Search,
		"charts":   c.Query.TypeMatch.Charts,
		"compare":  c.Query.TypeMatch.Compare,
		"analysis": c.Query.TypeMatch.Analysis,
	} {
		if _, err := filter.ParseMatchMode(mode); err != nil {
			return fmt.Errorf("query.type_match.%s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "woolauction")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.connect_backoff", time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.analytics_path", "analytics.jsonl")

	v.SetDefault("query.row_limit", MaxRowLimit)
	v.SetDefault("query.price_floor", filter.DefaultPriceFloor)
	v.SetDefault("query.type_match.search", string(filter.MatchSubstring))
	v.SetDefault("query.type_match.charts", string(filter.MatchSubstring))
	v.SetDefault("query.type_match.compare", string(filter.MatchExact))
	v.SetDefault("query.type_match.analysis", string(filter.MatchSubstring))

	d := analysis.DefaultQualityBounds
	v.SetDefault("analysis.scenario_window_days", 365)
	v.SetDefault("analysis.quality.micron_min", d.MicronMin)
	v.SetDefault("analysis.quality.micron_max", d.MicronMax)
	v.SetDefault("analysis.quality.vm_max", d.VMMax)
	v.SetDefault("analysis.quality.yield_min", d.YieldMin)
	v.SetDefault("analysis.quality.yield_max", d.YieldMax)
	v.SetDefault("analysis.quality.kg_min", d.KgMin)
	v.SetDefault("analysis.quality.kg_max", d.KgMax)

	v.SetDefault("exports.data_dir", "data")
	v.SetDefault("exports.file_workers", 4)
	v.SetDefault("exports.batch_size", 1000)
	v.SetDefault("exports.db_workers", 4)
}

// bindLegacyEnv keeps the plain DB_* variables working alongside WOOL_DATABASE_*.
func bindLegacyEnv(v *viper.Viper) error {
	for key, env := range map[string]string{
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.name":     "DB_NAME",
		"database.sslmode":  "DB_SSLMODE",
	} {
		prefixed := "WOOL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}
