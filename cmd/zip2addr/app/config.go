package app

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/ingest"
)

// EnvPrefix prefixes every configuration environment variable,
// e.g. ZIP2ADDR_DATA_DIR.
const EnvPrefix = "ZIP2ADDR"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Pipeline configuration
	DataDir     string
	WorkDir     string
	JSONPath    string
	DBPath      string
	RomanZip    string
	KanaZip     string
	RomanCSV    string
	KanaCSV     string
	CommitEvery int

	// Logging configuration. LogLevel is the --log-level flag; EnvLogLevel
	// comes from LOG_LEVEL and only applies when no flag chose a level.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (ZIP2ADDR_*)
// 3. .env files
// 4. Config file (--config, or .zip2addr.yaml in $HOME or the working directory)
// 5. Defaults
//
// An explicitly named config file that cannot be read is an error; a
// missing default config file is not.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".zip2addr")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", "failed to read "+configFile, err)
		}
	}

	dataDir := v.GetString("data_dir")
	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		DataDir:     dataDir,
		WorkDir:     v.GetString("work_dir"),
		JSONPath:    orJoin(v.GetString("json_path"), dataDir, constants.JSONFilename),
		DBPath:      orJoin(v.GetString("db_path"), dataDir, constants.DatabaseFilename),
		RomanZip:    v.GetString("roman_zip"),
		KanaZip:     v.GetString("kana_zip"),
		RomanCSV:    v.GetString("roman_csv"),
		KanaCSV:     v.GetString("kana_csv"),
		CommitEvery: v.GetInt("commit_every"),

		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if config.CommitEvery < 0 {
		return nil, errors.NewConfigError("commit_every", "must not be negative", nil)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", constants.DefaultDataDir)
	v.SetDefault("work_dir", "")
	v.SetDefault("json_path", "")
	v.SetDefault("db_path", "")
	v.SetDefault("roman_zip", constants.RomanZipFilename)
	v.SetDefault("kana_zip", constants.KanaZipFilename)
	v.SetDefault("roman_csv", constants.RomanCSVFilename)
	v.SetDefault("kana_csv", constants.KanaCSVFilename)
	v.SetDefault("commit_every", 0)
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// IngestConfig converts the configuration into pipeline settings.
func (c *Config) IngestConfig() ingest.Config {
	cfg := ingest.DefaultConfig(c.DataDir)
	cfg.WorkDir = c.WorkDir
	cfg.JSONPath = c.JSONPath
	cfg.DBPath = c.DBPath
	cfg.RomanZip = c.RomanZip
	cfg.KanaZip = c.KanaZip
	cfg.RomanCSV = c.RomanCSV
	cfg.KanaCSV = c.KanaCSV
	cfg.CommitEvery = c.CommitEvery
	return cfg
}

// loadEnvFiles loads environment variables from .env files.
// Values already in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// orJoin returns path, or dir/name when path is empty.
func orJoin(path, dir, name string) string {
	if path != "" {
		return path
	}
	return filepath.Join(dir, name)
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
