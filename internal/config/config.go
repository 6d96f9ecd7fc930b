// Package config provides functionality for managing configuration options
// for the application using command-line flags, a .env file, a JSON config
// file and environment variables, applied in that order.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string. Empty selects the
	// in-memory note store.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// EnvFile is the path to an optional .env file.
	EnvFile string

	// LogLevel is the minimum level written by the logger.
	LogLevel string

	// StopTimeout is how long note streams outlive their last subscriber.
	StopTimeout time.Duration

	// KeepAlive is the interval between database listener pings.
	KeepAlive time.Duration

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string
}

// fileOptions mirrors Options in the JSON config file. Durations are strings
// such as "500ms".
type fileOptions struct {
	Address     *string `json:"address"`
	DatabaseDSN *string `json:"database_dsn"`
	LogLevel    *string `json:"log_level"`
	StopTimeout *string `json:"stop_timeout"`
	KeepAlive   *string `json:"keep_alive"`
	TLSCert     *string `json:"tls_cert"`
	TLSKey      *string `json:"tls_key"`
}

// Parse parses the process arguments and environment. It exits on invalid
// configuration.
func Parse() *Options {
	options, err := ParseArgs(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatalf("error while loading configuration: %v", err)
	}
	return options
}

// ParseArgs builds Options from args, then the .env file, the config file and
// the environment, each overriding the previous.
func ParseArgs(name string, args []string) (*Options, error) {
	options := &Options{}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fset.StringVar(&options.DatabaseDSN, "d", "", "db address, empty for in-memory storage")
	fset.StringVar(&options.Config, "config", "config.json", "path to config file")
	fset.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fset.StringVar(&options.EnvFile, "env", ".env", "path to .env file")
	fset.StringVar(&options.LogLevel, "l", "info", "log level")
	fset.DurationVar(&options.StopTimeout, "stop-timeout", 500*time.Millisecond, "how long streams outlive their last subscriber")
	fset.DurationVar(&options.KeepAlive, "keep-alive", 90*time.Second, "database listener ping interval")
	fset.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	fset.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	// Variables already present in the environment win over the .env file.
	if options.EnvFile != "" {
		if err := godotenv.Load(options.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error while reading env file: %w", err)
		}
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if options.Config != "" {
		if err := options.loadFile(options.Config); err != nil {
			return nil, err
		}
	}

	if err := options.loadEnv(); err != nil {
		return nil, err
	}
	return options, nil
}

func (o *Options) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	setString(&o.Port, f.Address)
	setString(&o.DatabaseDSN, f.DatabaseDSN)
	setString(&o.LogLevel, f.LogLevel)
	setString(&o.TLSCert, f.TLSCert)
	setString(&o.TLSKey, f.TLSKey)
	if f.StopTimeout != nil {
		if o.StopTimeout, err = time.ParseDuration(*f.StopTimeout); err != nil {
			return fmt.Errorf("invalid stop_timeout in config file: %w", err)
		}
	}
	if f.KeepAlive != nil {
		if o.KeepAlive, err = time.ParseDuration(*f.KeepAlive); err != nil {
			return fmt.Errorf("invalid keep_alive in config file: %w", err)
		}
	}
	return nil
}

func (o *Options) loadEnv() error {
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		o.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		o.DatabaseDSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		o.LogLevel = level
	}
	if v := os.Getenv("STOP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STOP_TIMEOUT: %w", err)
		}
		o.StopTimeout = d
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
