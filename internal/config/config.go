package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// EnvPrefix is prepended to every environment variable name
	EnvPrefix = "MCP_PDF_FETCH"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultTimeout       = 30 * time.Second
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultMinConfidence = 0.5
	DefaultAxiomDataset  = "mcp-pdf-fetcher"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is on the command line
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the PDF fetcher
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Fetch configuration
	MaxFileSize int64 // Maximum download size in bytes
	Timeout     time.Duration
	UserAgent   string

	// One-shot pipeline run; empty starts the MCP server
	URL string

	// Stage configuration
	ConfigDir             string
	ExportSchema          string
	ExportDest            string
	ContractMinConfidence float64

	// Logging
	LogLevel  string
	LogFile   string
	LogPretty bool

	AxiomToken   string
	AxiomOrg     string
	AxiomDataset string

	// Application configuration
	Version    string
	ServerName string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:                  ModeStdio, // Default to stdio mode for MCP compatibility
		Host:                  DefaultHost,
		Port:                  DefaultPort,
		MaxFileSize:           DefaultMaxFileSize,
		Timeout:               DefaultTimeout,
		UserAgent:             DefaultUserAgent,
		ContractMinConfidence: DefaultMinConfidence,
		LogLevel:              DefaultLogLevel,
		AxiomDataset:          DefaultAxiomDataset,
		Version:               "1.0.0",
		ServerName:            "mcp-pdf-fetcher",
	}
}

// LoadFromFlags reads .env, environment variables and command line flags into a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	loadDotEnv()
	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.ConfigDir != "" {
		if expandedPath, err := filepath.Abs(cfg.ConfigDir); err == nil {
			cfg.ConfigDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env from the working directory without overriding the real environment
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("timeout", cfg.Timeout)
	viper.SetDefault("useragent", cfg.UserAgent)
	viper.SetDefault("url", cfg.URL)
	viper.SetDefault("configdir", cfg.ConfigDir)
	viper.SetDefault("export.schema", cfg.ExportSchema)
	viper.SetDefault("export.dest", cfg.ExportDest)
	viper.SetDefault("contract.minconfidence", cfg.ContractMinConfidence)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logfile", cfg.LogFile)
	viper.SetDefault("logpretty", cfg.LogPretty)
	viper.SetDefault("axiom.token", cfg.AxiomToken)
	viper.SetDefault("axiom.org", cfg.AxiomOrg)
	viper.SetDefault("axiom.dataset", cfg.AxiomDataset)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for streamable HTTP")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF download size in bytes")
	pflag.Duration("timeout", cfg.Timeout, "Download timeout")
	pflag.String("useragent", cfg.UserAgent, "User-Agent header sent with downloads")
	pflag.String("url", cfg.URL, "Process one sharing URL, print the JSON export and exit")
	pflag.String("configdir", cfg.ConfigDir, "Directory holding stage configuration such as export schemas")
	pflag.String("export-schema", cfg.ExportSchema, "JSON Schema for exports (relative to configdir; built-in when empty)")
	pflag.String("export-dest", cfg.ExportDest, "Export destination: directory or s3://bucket/prefix (none when empty)")
	pflag.Float64("contract-minconfidence", cfg.ContractMinConfidence, "Minimum confidence to classify text as a contract")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logfile", cfg.LogFile, "Also write logs to this file, rotated")
	pflag.Bool("logpretty", cfg.LogPretty, "Human-readable console logs")
	pflag.String("axiom-dataset", cfg.AxiomDataset, "Axiom dataset for forwarded logs")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("timeout", pflag.Lookup("timeout"))
	_ = viper.BindPFlag("useragent", pflag.Lookup("useragent"))
	_ = viper.BindPFlag("url", pflag.Lookup("url"))
	_ = viper.BindPFlag("configdir", pflag.Lookup("configdir"))
	_ = viper.BindPFlag("export.schema", pflag.Lookup("export-schema"))
	_ = viper.BindPFlag("export.dest", pflag.Lookup("export-dest"))
	_ = viper.BindPFlag("contract.minconfidence", pflag.Lookup("contract-minconfidence"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("logfile", pflag.Lookup("logfile"))
	_ = viper.BindPFlag("logpretty", pflag.Lookup("logpretty"))
	_ = viper.BindPFlag("axiom.dataset", pflag.Lookup("axiom-dataset"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Fetcher - fetch shared PDFs from Google Drive or Dropbox and extract their text\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081  # streamable HTTP on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --url='https://www.dropbox.com/s/<key>/contract.pdf?dl=0' --export-dest=./exports\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (a .env file in the working directory is also read):\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE, _HOST, _PORT, _MAXFILESIZE, _TIMEOUT, _USERAGENT\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_CONFIGDIR, _EXPORT_SCHEMA, _EXPORT_DEST, _CONTRACT_MINCONFIDENCE\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOGLEVEL, _LOGFILE, _LOGPRETTY\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_AXIOM_TOKEN, _AXIOM_ORG, _AXIOM_DATASET\n", EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Timeout = viper.GetDuration("timeout")
	cfg.UserAgent = viper.GetString("useragent")
	cfg.URL = viper.GetString("url")
	cfg.ConfigDir = viper.GetString("configdir")
	cfg.ExportSchema = viper.GetString("export.schema")
	cfg.ExportDest = viper.GetString("export.dest")
	cfg.ContractMinConfidence = viper.GetFloat64("contract.minconfidence")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFile = viper.GetString("logfile")
	cfg.LogPretty = viper.GetBool("logpretty")
	cfg.AxiomToken = viper.GetString("axiom.token")
	cfg.AxiomOrg = viper.GetString("axiom.org")
	cfg.AxiomDataset = viper.GetString("axiom.dataset")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.ContractMinConfidence < 0 || c.ContractMinConfidence > 1 {
		return fmt.Errorf("contract minimum confidence must be between 0 and 1, got %v", c.ContractMinConfidence)
	}

	if c.ConfigDir != "" {
		info, err := os.Stat(c.ConfigDir)
		if err != nil {
			return fmt.Errorf("cannot access config directory %s: %w", c.ConfigDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config directory %s is not a directory", c.ConfigDir)
		}
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

// String returns a string representation of the configuration; secrets are not printed
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, LogLevel: %s, MaxFileSize: %d, Timeout: %s, ExportDest: %s, Axiom: %t}",
		c.Mode, c.Host, c.Port, c.LogLevel, c.MaxFileSize, c.Timeout, c.ExportDest, c.AxiomToken != "")
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsOneShot returns true if a single URL should be processed instead of serving MCP
func (c *Config) IsOneShot() bool {
	return c.URL != ""
}
