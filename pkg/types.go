package pkg

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nunit-reporter/nunit-reporter/pkg/actions"
)

const (
	ProjectName = "nunit-reporter"

	KeyPath                  = "path"
	KeyNumFailures           = "numFailures"
	KeyAccessToken           = "access-token"
	KeyReportTitle           = "reportTitle"
	KeyRepository            = "repository"
	KeySHA                   = "sha"
	KeyEventPath             = "event-path"
	KeyWorkspace             = "workspace"
	KeyAPIURL                = "api-url"
	KeyAnnotationsPerRequest = "annotations-per-request"
	KeyLogLevel              = "log-level"
	KeyConfig                = "config"

	// EnvPrefix matches how the Actions runner exposes step inputs.
	EnvPrefix = "INPUT"
)

// Config holds the inputs of one run.
type Config struct {
	Path                  string
	NumFailures           int
	AccessToken           string
	ReportTitle           string
	Owner                 string
	Repo                  string
	SHA                   string
	EventPath             string
	Workspace             string
	APIURL                string
	AnnotationsPerRequest int
}

// ConfigError reports missing or invalid inputs.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid input " + e.Key + ": " + e.Reason
}

// BindEnv wires the runner environment into v. Step inputs come from
// INPUT_<KEY>, the workflow context from the GITHUB_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	bindings := map[string][]string{
		KeyAccessToken: {"INPUT_ACCESS-TOKEN", "GITHUB_TOKEN"},
		KeyRepository:  {"GITHUB_REPOSITORY"},
		KeySHA:         {"GITHUB_SHA"},
		KeyEventPath:   {"GITHUB_EVENT_PATH"},
		KeyWorkspace:   {"GITHUB_WORKSPACE"},
		KeyAPIURL:      {"GITHUB_API_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Warnf("Unable to bind env for %s: %v", key, err)
		}
	}
}

// DefaultConfigFile is the YAML file read when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, ProjectName, "config.yaml")
}

// ReadConfigFile merges a YAML config file into v. A missing default file is
// not an error, an explicit one is.
func ReadConfigFile(v *viper.Viper) error {
	file := v.GetString(KeyConfig)
	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile()
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if !explicit {
			log.Debugf("No config file loaded from %s: %v", file, err)
			return nil
		}
		return errors.Wrapf(err, "reading config file %s", file)
	}
	log.Debugf("Loaded config file %s", v.ConfigFileUsed())
	return nil
}

// NewConfig reads the run inputs from v.
func NewConfig(v *viper.Viper) (*Config, error) {
	c := &Config{
		Path:                  strings.TrimSpace(v.GetString(KeyPath)),
		AccessToken:           v.GetString(KeyAccessToken),
		ReportTitle:           v.GetString(KeyReportTitle),
		SHA:                   v.GetString(KeySHA),
		EventPath:             v.GetString(KeyEventPath),
		Workspace:             v.GetString(KeyWorkspace),
		APIURL:                v.GetString(KeyAPIURL),
		AnnotationsPerRequest: v.GetInt(KeyAnnotationsPerRequest),
	}

	// numFailures is accepted for compatibility and not consulted yet.
	if raw := strings.TrimSpace(v.GetString(KeyNumFailures)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Warnf("Ignoring invalid %s %q: %v", KeyNumFailures, raw, err)
		} else {
			c.NumFailures = n
		}
	}

	if slug := v.GetString(KeyRepository); slug != "" {
		owner, repo, err := actions.Repository(slug)
		if err != nil {
			return nil, &ConfigError{Key: KeyRepository, Reason: err.Error()}
		}
		c.Owner, c.Repo = owner, repo
	}
	return c, nil
}

// Validate checks the inputs needed to publish a check run.
func (c *Config) Validate() error {
	switch {
	case c.Path == "":
		return &ConfigError{Key: KeyPath, Reason: "a report path is required"}
	case c.AccessToken == "":
		return &ConfigError{Key: KeyAccessToken, Reason: "an access token is required"}
	case c.Owner == "" || c.Repo == "":
		return &ConfigError{Key: KeyRepository, Reason: "owner/repo is required"}
	case c.SHA == "":
		return &ConfigError{Key: KeySHA, Reason: "a commit SHA is required"}
	case c.AnnotationsPerRequest < 0:
		return &ConfigError{Key: KeyAnnotationsPerRequest, Reason: "must not be negative"}
	}
	return nil
}
