package middleware

import "github.com/JaimeStill/saldo/pkg/settings"

// CORSConfig is the cross-origin policy for browser clients of the API.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig fields.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies environment overrides, then defaults. List variables
// are comma separated.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if env != nil {
		settings.EnvBool(&c.Enabled, env.Enabled)
		settings.EnvList(&c.Origins, env.Origins)
		settings.EnvList(&c.AllowedMethods, env.AllowedMethods)
		settings.EnvList(&c.AllowedHeaders, env.AllowedHeaders)
		settings.EnvBool(&c.AllowCredentials, env.AllowCredentials)
		settings.EnvInt(&c.MaxAge, env.MaxAge)
	}

	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
	return nil
}

// Merge replaces the fields set in overlay. An overlay can switch CORS
// and credentials on but not off; the environment variables can do both.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	settings.Merge(&c.Enabled, overlay.Enabled)
	settings.Merge(&c.AllowCredentials, overlay.AllowCredentials)
	settings.Merge(&c.MaxAge, overlay.MaxAge)
	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
}
