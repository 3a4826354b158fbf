// Package config resolves CLI settings from built-in defaults, a config
// file, environment variables, and command-line flags, highest-precedence
// source winning per field. Resolution is a pure function of its inputs;
// file loading lives in file.go.
package config

import (
	"net/url"
	"strconv"
	"time"

	liperr "github.com/bitinglip/bitinglip-cli/pkg/errors"
	"github.com/bitinglip/bitinglip-cli/pkg/serializer"
)

// Environment variables recognized by the resolver.
const (
	EnvAPIURL  = "BITINGLIP_API_URL"
	EnvAPIKey  = "BITINGLIP_API_KEY"
	EnvFormat  = "BITINGLIP_FORMAT"
	EnvVerbose = "BITINGLIP_VERBOSE"
	EnvConfig  = "BITINGLIP_CONFIG"
)

// Settings is the immutable, fully resolved configuration for one
// invocation. It is built once by Resolve and never mutated afterward.
type Settings struct {
	Endpoint *url.URL
	APIKey   string // empty means absent; no Authorization header is sent
	Format   serializer.Format
	Timeout  time.Duration
	Retries  int
	Verbose  bool
}

// Defaults are the built-in fallback values.
type Defaults struct {
	APIURL    string
	Format    string
	TimeoutMs int
	Retries   int
}

// BuiltinDefaults returns the defaults applied when no other source sets a
// field.
func BuiltinDefaults() Defaults {
	return Defaults{
		APIURL:    "http://localhost:8080",
		Format:    string(serializer.FormatTable),
		TimeoutMs: 30000,
		Retries:   3,
	}
}

// FileConfig is the parsed config-file content. Pointer fields distinguish
// "unset" from zero values.
type FileConfig struct {
	APIURL    string `yaml:"api_url"`
	APIKey    string `yaml:"api_key"`
	Format    string `yaml:"format"`
	TimeoutMs *int   `yaml:"timeout_ms"`
	Retries   *int   `yaml:"retries"`
	Verbose   *bool  `yaml:"verbose"`
}

// Overrides are the explicit command-line flag values. Nil means the flag
// was not given.
type Overrides struct {
	APIURL    *string
	APIKey    *string
	Format    *string
	TimeoutMs *int
	Retries   *int
	Verbose   *bool
}

// Resolve merges the four configuration sources into Settings. Each field
// is resolved independently: flag over environment over file over default.
func Resolve(defaults Defaults, file *FileConfig, env map[string]string, flags Overrides) (*Settings, error) {
	if file == nil {
		file = &FileConfig{}
	}

	rawURL := pickString(flags.APIURL, env[EnvAPIURL], file.APIURL, defaults.APIURL)
	endpoint, err := parseEndpoint(rawURL)
	if err != nil {
		return nil, err
	}

	apiKey := pickString(flags.APIKey, env[EnvAPIKey], file.APIKey, "")

	rawFormat := pickString(flags.Format, env[EnvFormat], file.Format, defaults.Format)
	format := serializer.Format(rawFormat)
	if format.IsUnknown() {
		return nil, liperr.Newf(liperr.KindConfigInvalid,
			"unknown output format %q, valid formats are %v", rawFormat, serializer.SupportedFormats())
	}

	timeoutMs := pickInt(flags.TimeoutMs, file.TimeoutMs, defaults.TimeoutMs)
	if timeoutMs <= 0 {
		return nil, liperr.Newf(liperr.KindConfigInvalid, "timeout must be positive, got %d ms", timeoutMs)
	}

	retries := pickInt(flags.Retries, file.Retries, defaults.Retries)
	if retries < 0 {
		return nil, liperr.Newf(liperr.KindConfigInvalid, "retries must not be negative, got %d", retries)
	}

	verbose, err := resolveVerbose(flags.Verbose, env[EnvVerbose], file.Verbose)
	if err != nil {
		return nil, err
	}

	return &Settings{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Format:   format,
		Timeout:  time.Duration(timeoutMs) * time.Millisecond,
		Retries:  retries,
		Verbose:  verbose,
	}, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, liperr.Wrap(liperr.KindConfigInvalid,
			"endpoint "+strconv.Quote(raw)+" is not a valid URL", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, liperr.Newf(liperr.KindConfigInvalid,
			"endpoint %q must be an absolute http(s) URL", raw)
	}
	return u, nil
}

func resolveVerbose(flag *bool, envVal string, fileVal *bool) (bool, error) {
	if flag != nil {
		return *flag, nil
	}
	if envVal != "" {
		v, err := strconv.ParseBool(envVal)
		if err != nil {
			return false, liperr.Newf(liperr.KindConfigInvalid,
				"%s=%q is not a boolean", EnvVerbose, envVal)
		}
		return v, nil
	}
	if fileVal != nil {
		return *fileVal, nil
	}
	return false, nil
}

func pickString(flag *string, envVal, fileVal, def string) string {
	if flag != nil {
		return *flag
	}
	if envVal != "" {
		return envVal
	}
	if fileVal != "" {
		return fileVal
	}
	return def
}

func pickInt(flag *int, fileVal *int, def int) int {
	if flag != nil {
		return *flag
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}
