// Package cfg loads the squashbot configuration file.
package cfg

import (
	"errors"
	"io"

	"github.com/pelletier/go-toml"
)

// DefTriggerLabel is the label that marks pull requests for automatic
// merging when no label is configured.
const DefTriggerLabel = "automerge"

type Config struct {
	HTTPListenAddr            string             `toml:"http_server_listen_addr"`
	HTTPSListenAddr           string             `toml:"https_server_listen_addr"`
	HTTPSCertFile             string             `toml:"https_ssl_cert_file"`
	HTTPSKeyFile              string             `toml:"https_ssl_key_file"`
	HTTPGithubWebhookEndpoint string             `toml:"github_webhook_endpoint"`
	HTTPMetricsEndpoint       string             `toml:"metrics_endpoint"`
	GithubWebHookSecret       string             `toml:"github_webhook_secret"`
	GithubAPIToken            string             `toml:"github_api_token"`
	LogFormat                 string             `toml:"log_format"`
	LogTimeKey                string             `toml:"log_time_key"`
	LogLevel                  string             `toml:"log_level"`
	TriggerLabel              string             `toml:"trigger_label"`
	DryRun                    bool               `toml:"dry_run"`
	Repositories              []GithubRepository `toml:"repository"`
}

type GithubRepository struct {
	Owner          string `toml:"owner"`
	RepositoryName string `toml:"repository"`
}

func Load(reader io.Reader) (*Config, error) {
	result := Config{
		TriggerLabel:        DefTriggerLabel,
		LogFormat:           "logfmt",
		LogLevel:            "info",
		HTTPMetricsEndpoint: "/metrics",
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	if err := result.validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *Config) validate() error {
	if len(r.Repositories) == 0 {
		return errors.New("no repository is configured")
	}

	for _, repo := range r.Repositories {
		if repo.Owner == "" || repo.RepositoryName == "" {
			return errors.New("repository entries must have a non-empty owner and repository value")
		}
	}

	if r.TriggerLabel == "" {
		return errors.New("trigger_label must not be empty")
	}

	return nil
}

func (r *Config) Marshal(writer io.Writer) error {
	return toml.NewEncoder(writer).Encode(r)
}
