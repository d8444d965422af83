package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/devicelab-dev/reel-publisher/pkg/core"
)

// Environment variables.
const (
	EnvEmail    = "EMAIL"
	EnvPassword = "PASSWORD"
	EnvHeadless = "HEADLESS"
	EnvVideoDir = "VIDEO_DIR"
)

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored; with no
// arguments ".env" in the working directory is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return core.ErrInvalidConfig.WithMessage("cannot load " + f).WithCause(err)
		}
	}
	return nil
}

// Credentials reads the login credential from the environment.
func Credentials() (core.Credential, error) {
	cred := core.Credential{
		Identifier: strings.TrimSpace(os.Getenv(EnvEmail)),
		Secret:     os.Getenv(EnvPassword),
	}

	var missing []string
	if cred.Identifier == "" {
		missing = append(missing, EnvEmail)
	}
	if cred.Secret == "" {
		missing = append(missing, EnvPassword)
	}
	if len(missing) > 0 {
		return core.Credential{}, core.ErrMissingCredential.
			WithMessage("missing " + strings.Join(missing, " and ")).
			WithDetails(map[string]interface{}{"variables": missing})
	}
	return cred, nil
}

// ApplyEnv overrides configuration from HEADLESS and VIDEO_DIR.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvHeadless); ok && v != "" {
		headless, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return core.ErrInvalidConfig.WithMessagef("%s=%q is not a boolean", EnvHeadless, v)
		}
		c.Browser.Headless = headless
	}
	if v := os.Getenv(EnvVideoDir); v != "" {
		c.Post.MediaDir = v
	}
	return nil
}
