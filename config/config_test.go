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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Source.Endpoint = "http://source:9200"
	cfg.Target.Endpoint = "http://target:9200"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ModeReindex, cfg.Mode)
	assert.Equal(t, 4, cfg.Reindex.Slices)
	assert.Equal(t, 1000, cfg.Reindex.BatchSize)
	assert.Equal(t, float64(-1), cfg.Reindex.RequestsPerSecond)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.Equal(t, 600*time.Second, cfg.Source.RequestTimeout())
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.yml")
	doc := `
source:
  endpoint: http://source:9200
  basic_auth:
    username: elastic
    password: secret
target:
  endpoint: http://target:9200
mode: snapshot
snapshot:
  repository: backup-repo
rename:
  pattern: "^(.*)$"
  replacement: "new_$1"
workers: 4
poll_interval_in_seconds: 5
`
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := LoadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "http://source:9200", cfg.Source.Endpoint)
	assert.Equal(t, "elastic", cfg.Source.BasicAuth.Username)
	assert.Equal(t, ModeSnapshot, cfg.Mode)
	assert.Equal(t, "backup-repo", cfg.Snapshot.Repository)
	assert.Equal(t, "new_$1", cfg.Rename.Replacement)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())

	// untouched keys keep their defaults
	assert.Equal(t, 4, cfg.Reindex.Slices)
	assert.Equal(t, 1000, cfg.Reindex.BatchSize)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Source.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Target.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Mode = "rsync"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Index = "orders"
	cfg.Regex = "orders-.*"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Mode = ModeSnapshot
	assert.Error(t, cfg.Validate(), "snapshot mode requires a repository")
	cfg.Snapshot.Repository = "backup-repo"
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Rename.Pattern = "^(.*)$"
	assert.Error(t, cfg.Validate(), "pattern without replacement")
	cfg.Rename.Replacement = "new_$1"
	assert.NoError(t, cfg.Validate())
}

func TestValidateNormalizesWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = 0
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Workers)
}
