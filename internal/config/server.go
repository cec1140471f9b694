package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/JaimeStill/saldo/pkg/settings"
)

const (
	EnvServerHost            = "SALDO_SERVER_HOST"
	EnvServerPort            = "SALDO_SERVER_PORT"
	EnvServerReadTimeout     = "SALDO_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "SALDO_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "SALDO_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds the HTTP listener. The write timeout covers a whole
// reconciliation run, so it defaults well above the read timeout.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies SALDO_SERVER_* overrides and defaults, then validates.
func (c *ServerConfig) Finalize() error {
	settings.Env(&c.Host, EnvServerHost)
	settings.EnvInt(&c.Port, EnvServerPort)
	settings.Env(&c.ReadTimeout, EnvServerReadTimeout)
	settings.Env(&c.WriteTimeout, EnvServerWriteTimeout)
	settings.Env(&c.ShutdownTimeout, EnvServerShutdownTimeout)

	settings.Default(&c.Host, "0.0.0.0")
	settings.Default(&c.Port, 8080)
	settings.Default(&c.ReadTimeout, "1m")
	settings.Default(&c.WriteTimeout, "15m")
	settings.Default(&c.ShutdownTimeout, "30s")

	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	for field, value := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := settings.Duration(field, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *ServerConfig) Merge(overlay *ServerConfig) {
	settings.Merge(&c.Host, overlay.Host)
	settings.Merge(&c.Port, overlay.Port)
	settings.Merge(&c.ReadTimeout, overlay.ReadTimeout)
	settings.Merge(&c.WriteTimeout, overlay.WriteTimeout)
	settings.Merge(&c.ShutdownTimeout, overlay.ShutdownTimeout)
}
