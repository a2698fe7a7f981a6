package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeIngest = "ingest"
	ModeServe  = "serve"

	// Default values
	DefaultPort         = 5002
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultDatabasePath = "ratsit_data.db"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the Ratsit Atlas application
type Config struct {
	// Run mode: "ingest" parses PDFs into the database, "serve" runs the dashboard
	Mode string
	Host string
	Port int

	// PDF configuration
	PDFDirectory string

	// Storage configuration
	DatabasePath string

	// Optional YAML file mapping postal codes to map coordinates
	CoordinatesFile string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:         ModeServe,
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		DatabasePath: DefaultDatabasePath,
		Version:      "1.0.0",
		ServerName:   "ratsit-atlas",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}
	if cfg.DatabasePath != "" {
		if expandedPath, err := filepath.Abs(cfg.DatabasePath); err == nil {
			cfg.DatabasePath = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("RATSIT")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("db", cfg.DatabasePath)
	viper.SetDefault("coords", cfg.CoordinatesFile)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'ingest' to parse PDFs into the database, 'serve' to run the dashboard")
	pflag.String("host", cfg.Host, "Server host address (serve mode only)")
	pflag.Int("port", cfg.Port, "Server port (serve mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing the catalogue PDF files (ingest mode only)")
	pflag.String("db", cfg.DatabasePath, "Path to the SQLite database file")
	pflag.String("coords", cfg.CoordinatesFile, "Optional YAML file mapping postal codes to map coordinates")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("db", pflag.Lookup("db"))
	_ = viper.BindPFlag("coords", pflag.Lookup("coords"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nRatsit Atlas - income catalogue extraction and dashboard\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --mode=ingest --dir=/path/to/pdfs       # parse PDFs into the database\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=serve --db=ratsit_data.db        # run the dashboard (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=serve --host=0.0.0.0 --port=5002 # dashboard on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_MODE        Run mode\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_HOST        Server host\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_PORT        Server port\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_DIR         PDF directory\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_DB          SQLite database path\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_COORDS      Coordinates YAML file\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  RATSIT_MAXFILESIZE Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.DatabasePath = viper.GetString("db")
	cfg.CoordinatesFile = viper.GetString("coords")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeIngest && c.Mode != ModeServe {
		return errors.New("mode must be either 'ingest' or 'serve'")
	}

	// Validate port range (only for serve mode)
	if c.Mode == ModeServe && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate database path
	if c.DatabasePath == "" {
		return errors.New("database path cannot be empty")
	}

	// Validate PDF directory (only needed when ingesting)
	if c.Mode == ModeIngest {
		if c.PDFDirectory == "" {
			return errors.New("PDF directory cannot be empty")
		}
		if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
		}
	}

	// Validate coordinates file if configured
	if c.CoordinatesFile != "" {
		if _, err := os.Stat(c.CoordinatesFile); err != nil {
			return fmt.Errorf("cannot access coordinates file %s: %w", c.CoordinatesFile, err)
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, DatabasePath: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.DatabasePath, c.LogLevel, c.MaxFileSize)
}

// IsServeMode returns true if the application runs the web dashboard
func (c *Config) IsServeMode() bool {
	return c.Mode == ModeServe
}

// IsIngestMode returns true if the application ingests PDF files
func (c *Config) IsIngestMode() bool {
	return c.Mode == ModeIngest
}
