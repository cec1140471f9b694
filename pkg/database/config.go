package database

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/JaimeStill/saldo/pkg/settings"
)

// Config holds the PostgreSQL connection that stores documents, ledgers
// and prompt overrides. Durations are Go duration strings.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration is valid after Finalize.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration bounds the startup ping and readiness checks.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn is the keyword/value form the pgx stdlib driver opens.
func (c *Config) Dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// URL is the postgres:// form golang-migrate expects. The password is
// escaped and omitted when empty.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.User),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// Finalize applies environment overrides and defaults, then validates.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		settings.Env(&c.Host, env.Host)
		settings.EnvInt(&c.Port, env.Port)
		settings.Env(&c.Name, env.Name)
		settings.Env(&c.User, env.User)
		settings.Env(&c.Password, env.Password)
		settings.Env(&c.SSLMode, env.SSLMode)
		settings.EnvInt(&c.MaxOpenConns, env.MaxOpenConns)
		settings.EnvInt(&c.MaxIdleConns, env.MaxIdleConns)
		settings.Env(&c.ConnMaxLifetime, env.ConnMaxLifetime)
		settings.Env(&c.ConnTimeout, env.ConnTimeout)
	}

	settings.Default(&c.Host, "localhost")
	settings.Default(&c.Port, 5432)
	settings.Default(&c.SSLMode, "disable")
	settings.Default(&c.MaxOpenConns, 25)
	settings.Default(&c.MaxIdleConns, 5)
	settings.Default(&c.ConnMaxLifetime, "15m")
	settings.Default(&c.ConnTimeout, "5s")

	return c.validate()
}

// Merge replaces the fields set in overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.Host, overlay.Host)
	settings.Merge(&c.Port, overlay.Port)
	settings.Merge(&c.Name, overlay.Name)
	settings.Merge(&c.User, overlay.User)
	settings.Merge(&c.Password, overlay.Password)
	settings.Merge(&c.SSLMode, overlay.SSLMode)
	settings.Merge(&c.MaxOpenConns, overlay.MaxOpenConns)
	settings.Merge(&c.MaxIdleConns, overlay.MaxIdleConns)
	settings.Merge(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	settings.Merge(&c.ConnTimeout, overlay.ConnTimeout)
}

func (c *Config) validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name required"))
	}
	if c.User == "" {
		errs = append(errs, errors.New("user required"))
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errs = append(errs, fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns))
	}
	if _, err := settings.Duration("conn_max_lifetime", c.ConnMaxLifetime); err != nil {
		errs = append(errs, err)
	}
	if _, err := settings.Duration("conn_timeout", c.ConnTimeout); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
