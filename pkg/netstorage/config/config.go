// Package config loads netstorage client settings from code, the
// environment, .env files and configuration files.
//
//	cfg, err := config.Load(config.WithDotEnv(), config.WithEnv())
//	if err != nil {
//		return err
//	}
//	client, err := cfg.BuildClient(netstorage.WithLogger(logger))
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tendant/netstorage/pkg/netstorage"
)

// Option applies configuration to a ClientConfig instance.
type Option func(*ClientConfig) error

// Load constructs a ClientConfig by applying the supplied options on top of
// library defaults, in order.
func Load(opts ...Option) (*ClientConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ClientConfig {
	return ClientConfig{
		Timeout:         30 * time.Second,
		ListConcurrency: 1,
	}
}

// ClientConfig is the flat, serializable form of a client configuration.
type ClientConfig struct {
	Host                string `yaml:"host" json:"host" toml:"host" env:"NETSTORAGE_HOST"`
	StaticHost          string `yaml:"static_host" json:"static_host" toml:"static_host" env:"NETSTORAGE_STATIC_HOST"`
	CPCode              string `yaml:"cp_code" json:"cp_code" toml:"cp_code" env:"NETSTORAGE_CP_CODE"`
	RestrictedDirectory string `yaml:"restricted_directory" json:"restricted_directory" toml:"restricted_directory" env:"NETSTORAGE_RESTRICTED_DIRECTORY"`
	WorkingDirectory    string `yaml:"working_directory" json:"working_directory" toml:"working_directory" env:"NETSTORAGE_WORKING_DIRECTORY"`

	KeyName string `yaml:"key_name" json:"key_name" toml:"key_name" env:"NETSTORAGE_KEY_NAME"`
	Key     string `yaml:"key" json:"key" toml:"key" env:"NETSTORAGE_KEY"`

	ProxyHTTP  string `yaml:"proxy_http" json:"proxy_http" toml:"proxy_http" env:"NETSTORAGE_PROXY_HTTP"`
	ProxyHTTPS string `yaml:"proxy_https" json:"proxy_https" toml:"proxy_https" env:"NETSTORAGE_PROXY_HTTPS"`

	Timeout         time.Duration `yaml:"timeout" json:"timeout" toml:"timeout" env:"NETSTORAGE_TIMEOUT"`
	ListConcurrency int           `yaml:"list_concurrency" json:"list_concurrency" toml:"list_concurrency" env:"NETSTORAGE_LIST_CONCURRENCY"`
}

// Validate reports missing or out of range settings.
func (c *ClientConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, "host")
	}
	if strings.TrimSpace(c.CPCode) == "" {
		missing = append(missing, "cp_code")
	}
	if c.KeyName == "" {
		missing = append(missing, "key_name")
	}
	if c.Key == "" {
		missing = append(missing, "key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", netstorage.ErrInvalidConfig, strings.Join(missing, ", "))
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", netstorage.ErrInvalidConfig)
	}
	if c.ListConcurrency < 0 {
		return fmt.Errorf("%w: list_concurrency must not be negative", netstorage.ErrInvalidConfig)
	}
	return nil
}

// NetStorage converts c into the client's Config.
func (c *ClientConfig) NetStorage() netstorage.Config {
	cfg := netstorage.Config{
		Host:                c.Host,
		StaticHost:          c.StaticHost,
		CPCode:              c.CPCode,
		RestrictedDirectory: c.RestrictedDirectory,
		WorkingDirectory:    netstorage.PathFromString(c.WorkingDirectory),
		Credential:          netstorage.NewCredential(c.KeyName, c.Key),
	}
	if c.ProxyHTTP != "" || c.ProxyHTTPS != "" {
		cfg.Proxy = &netstorage.Proxy{HTTP: c.ProxyHTTP, HTTPS: c.ProxyHTTPS}
	}
	return cfg
}

// BuildClient creates a Client from the configuration. opts are applied
// after the ones derived from c and may override them.
func (c *ClientConfig) BuildClient(opts ...netstorage.Option) (*netstorage.Client, error) {
	options := []netstorage.Option{
		netstorage.WithTimeout(c.Timeout),
		netstorage.WithListConcurrency(c.ListConcurrency),
	}
	options = append(options, opts...)

	client, err := netstorage.New(c.NetStorage(), options...)
	if err != nil {
		return nil, fmt.Errorf("build netstorage client: %w", err)
	}
	return client, nil
}
