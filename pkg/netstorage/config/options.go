package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithEnv applies the NETSTORAGE_* environment variables that are set:
//
//	NETSTORAGE_HOST, NETSTORAGE_STATIC_HOST, NETSTORAGE_CP_CODE
//	NETSTORAGE_RESTRICTED_DIRECTORY, NETSTORAGE_WORKING_DIRECTORY
//	NETSTORAGE_KEY_NAME, NETSTORAGE_KEY
//	NETSTORAGE_PROXY_HTTP, NETSTORAGE_PROXY_HTTPS
//	NETSTORAGE_TIMEOUT (e.g. "45s"), NETSTORAGE_LIST_CONCURRENCY
//
// Unset variables leave the current values alone.
func WithEnv() Option {
	return func(c *ClientConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// WithDotEnv loads .env files into the process environment and then applies
// WithEnv. Variables already present in the environment win. Without paths
// an optional ./.env is read.
func WithDotEnv(paths ...string) Option {
	return func(c *ClientConfig) error {
		if err := godotenv.Load(paths...); err != nil {
			if len(paths) > 0 || !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load dotenv: %w", err)
			}
		}
		return WithEnv()(c)
	}
}

// WithFile reads a YAML, JSON, TOML or .env file. Environment variables
// override the file content.
func WithFile(path string) Option {
	return func(c *ClientConfig) error {
		if path == "" {
			return fmt.Errorf("config file path cannot be empty")
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithHost sets the upload host and, unless set already, the static host.
func WithHost(host string) Option {
	return func(c *ClientConfig) error {
		if host == "" {
			return fmt.Errorf("host cannot be empty")
		}
		c.Host = host
		if c.StaticHost == "" {
			c.StaticHost = host
		}
		return nil
	}
}

// WithStaticHost sets the host serving published objects.
func WithStaticHost(host string) Option {
	return func(c *ClientConfig) error {
		c.StaticHost = host
		return nil
	}
}

// WithCPCode sets the storage group.
func WithCPCode(cpCode string) Option {
	return func(c *ClientConfig) error {
		if cpCode == "" {
			return fmt.Errorf("cp code cannot be empty")
		}
		c.CPCode = cpCode
		return nil
	}
}

// WithCredential sets the upload account key name and key.
func WithCredential(keyName, key string) Option {
	return func(c *ClientConfig) error {
		if keyName == "" || key == "" {
			return fmt.Errorf("key name and key cannot be empty")
		}
		c.KeyName = keyName
		c.Key = key
		return nil
	}
}

func WithRestrictedDirectory(dir string) Option {
	return func(c *ClientConfig) error {
		c.RestrictedDirectory = dir
		return nil
	}
}

func WithWorkingDirectory(dir string) Option {
	return func(c *ClientConfig) error {
		c.WorkingDirectory = dir
		return nil
	}
}

// WithProxy routes requests through the given proxies. Either may be empty.
func WithProxy(httpProxy, httpsProxy string) Option {
	return func(c *ClientConfig) error {
		c.ProxyHTTP = httpProxy
		c.ProxyHTTPS = httpsProxy
		return nil
	}
}

// WithTimeout bounds every request. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *ClientConfig) error {
		if d < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		c.Timeout = d
		return nil
	}
}

// WithListConcurrency sets how many directories a recursive listing fetches
// at once.
func WithListConcurrency(n int) Option {
	return func(c *ClientConfig) error {
		if n < 0 {
			return fmt.Errorf("list concurrency must not be negative")
		}
		c.ListConcurrency = n
		return nil
	}
}
