// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// INFINI Migrate is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// transfer strategy, a global run mode, not a per-index choice
const (
	ModeReindex  = "reindex"
	ModeSnapshot = "snapshot"
)

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ClusterConfig identifies one cluster endpoint, every component receives it
// at construction, nothing reads ambient global connection state.
type ClusterConfig struct {
	Endpoint  string     `yaml:"endpoint"`
	BasicAuth *BasicAuth `yaml:"basic_auth"`

	// RequestTimeoutInSeconds bounds a single remote call, not the task
	// the call starts.
	RequestTimeoutInSeconds int `yaml:"request_timeout_in_seconds"`
}

func (c *ClusterConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutInSeconds <= 0 {
		return 600 * time.Second
	}
	return time.Duration(c.RequestTimeoutInSeconds) * time.Second
}

// RenameConfig rewrites index names on the destination side, empty pattern
// keeps names unchanged. Replacement uses Go regexp group references ($1).
type RenameConfig struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

type ReindexConfig struct {
	Slices            int     `yaml:"slices"`
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // <=0 means unthrottled
}

type SnapshotConfig struct {
	Repository string `yaml:"repository"`
	// Snapshot name, generated per run when empty
	Name string `yaml:"name"`
}

type Config struct {
	Source ClusterConfig `yaml:"source"`
	Target ClusterConfig `yaml:"target"`

	Mode string `yaml:"mode"`

	// index selection, Index and Regex are mutually exclusive, both empty
	// selects all non-system indices
	Index string `yaml:"index"`
	Regex string `yaml:"regex"`

	Rename   RenameConfig   `yaml:"rename"`
	Reindex  ReindexConfig  `yaml:"reindex"`
	Snapshot SnapshotConfig `yaml:"snapshot"`

	Workers               int  `yaml:"workers"`
	PollIntervalInSeconds int  `yaml:"poll_interval_in_seconds"`
	SkipClusterObjects    bool `yaml:"skip_cluster_objects"`
	SkipVersionCheck      bool `yaml:"skip_version_check"`
	ShowProgress          bool `yaml:"show_progress"`
}

func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalInSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalInSeconds) * time.Second
}

func DefaultConfig() *Config {
	return &Config{
		Mode: ModeReindex,
		Reindex: ReindexConfig{
			Slices:            4,
			BatchSize:         1000,
			RequestsPerSecond: -1,
		},
		Workers:               1,
		PollIntervalInSeconds: 30,
	}
}

// LoadFile merges the yaml document at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file [%v]", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file [%v]", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Source.Endpoint == "" {
		return errors.New("source cluster endpoint is required")
	}
	if c.Target.Endpoint == "" {
		return errors.New("target cluster endpoint is required")
	}
	if c.Mode != ModeReindex && c.Mode != ModeSnapshot {
		return errors.Errorf("unknown migration mode [%v]", c.Mode)
	}
	if c.Index != "" && c.Regex != "" {
		return errors.New("index and regex selection are mutually exclusive")
	}
	if c.Mode == ModeSnapshot && c.Snapshot.Repository == "" {
		return errors.New("snapshot repository is required in snapshot mode")
	}
	if (c.Rename.Pattern == "") != (c.Rename.Replacement == "") {
		return errors.New("rename pattern and replacement must be set together")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}
