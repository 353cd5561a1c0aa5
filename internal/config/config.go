// Package config loads and validates the orchestrator's HCL configuration.
package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/verilogica/orchestrator/pkg/existdb"
)

// Config is the top-level configuration for the orchestrator.
//
// Example (config.hcl):
//
//	listen_addr = ":8000"
//	log_level   = "info"
//
//	store {
//	  base_url = "http://existdb:8080/exist/rest/db"
//	  username = "admin"
//	  password = "..."
//	  timeout  = "20s"
//	}
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	// Default: ":8000".
	ListenAddr string `hcl:"listen_addr,optional"`

	// LogLevel sets the minimum log level (trace, debug, info, warn, error).
	// Default: "info".
	LogLevel string `hcl:"log_level,optional"`

	// Store configures the eXist-db endpoint and credentials. Required.
	Store *Store `hcl:"store,block"`
}

// Store is the configuration block for the backing XML document store.
// Timeout is carried as a string here because HCL decodes durations as
// strings; ClientConfig parses it.
type Store struct {
	BaseURL  string `hcl:"base_url"`
	Username string `hcl:"username"`
	Password string `hcl:"password"`
	Timeout  string `hcl:"timeout,optional"`
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration, reporting all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Store == nil {
		result = multierror.Append(result, fmt.Errorf("store block is required"))
		return result.ErrorOrNil()
	}

	if c.Store.BaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("store.base_url is required"))
	}
	if c.Store.Username == "" {
		result = multierror.Append(result, fmt.Errorf("store.username is required"))
	}
	if c.Store.Password == "" {
		result = multierror.Append(result, fmt.Errorf("store.password is required"))
	}
	if c.Store.Timeout != "" {
		if _, err := time.ParseDuration(c.Store.Timeout); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("store.timeout is not a valid duration: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// ClientConfig converts the store block into the existdb client
// configuration.
func (s *Store) ClientConfig() (*existdb.Config, error) {
	cfg := &existdb.Config{
		BaseURL:  s.BaseURL,
		Username: s.Username,
		Password: s.Password,
	}

	if s.Timeout != "" {
		timeout, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid store timeout: %w", err)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}
