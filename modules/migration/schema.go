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

package migration

import (
	"strings"
	"sync"

	log "github.com/cihub/seelog"
	"github.com/pkg/errors"
	"github.com/ryanuber/go-glob"

	"infini.sh/migrate/core/elastic"
)

// SchemaOrigin tags where a destination schema came from so either path can
// be forced and observed deterministically.
type SchemaOrigin string

const (
	SchemaFromTemplate SchemaOrigin = "template"
	SchemaFromSource   SchemaOrigin = "direct-copy"
)

// SchemaSpec is the settings/mappings/aliases set applied to the destination
// index, consumed once per descriptor.
type SchemaSpec struct {
	Origin       SchemaOrigin
	TemplateName string
	Settings     map[string]interface{}
	Mappings     map[string]interface{}
	Aliases      map[string]interface{}
}

// settings keys assigned by the cluster at creation time, they must not leak
// into the destination cluster
var clusterAssignedKeys = []string{"version", "uuid", "provided_name"}

func stripClusterMetadata(settings map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range settings {
		assigned := false
		for _, prefix := range clusterAssignedKeys {
			if strings.HasPrefix(k, prefix) {
				assigned = true
				break
			}
		}
		if !assigned {
			out[k] = v
		}
	}
	return out
}

// Provisioner creates the destination index for each descriptor, deriving
// the schema from the first matching source index template or, failing
// that, copying it from the live source index. Templates are fetched once
// per run and reused across descriptors.
type Provisioner struct {
	source elastic.API
	target elastic.API

	templatesOnce sync.Once
	templates     []elastic.NamedIndexTemplate
	templatesErr  error
}

func NewProvisioner(source, target elastic.API) *Provisioner {
	return &Provisioner{source: source, target: target}
}

func (p *Provisioner) loadTemplates() ([]elastic.NamedIndexTemplate, error) {
	p.templatesOnce.Do(func() {
		p.templates, p.templatesErr = p.source.GetIndexTemplates()
	})
	return p.templates, p.templatesErr
}

// matchTemplate evaluates template glob patterns in enumeration order,
// first match wins.
func (p *Provisioner) matchTemplate(indexName string) (*elastic.NamedIndexTemplate, error) {
	templates, err := p.loadTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch index templates")
	}
	for i := range templates {
		tpl := &templates[i]
		if tpl.IndexTemplate == nil {
			continue
		}
		for _, pattern := range tpl.IndexTemplate.IndexPatterns {
			if glob.Glob(pattern, indexName) {
				return tpl, nil
			}
		}
	}
	return nil, nil
}

// Provision derives the destination schema and applies it. A destination
// index that already exists is treated as provisioned by an earlier run.
func (p *Provisioner) Provision(desc IndexDescriptor) (*SchemaSpec, error) {
	spec, err := p.buildSpec(desc)
	if err != nil {
		return nil, err
	}

	body := &elastic.CreateIndexRequest{
		Settings: spec.Settings,
		Mappings: spec.Mappings,
	}
	// template-derived aliases ride along on the create call, direct-copied
	// aliases are applied separately below
	if spec.Origin == SchemaFromTemplate {
		body.Aliases = spec.Aliases
	}

	err = p.target.CreateIndex(desc.Destination, body)
	if err != nil {
		if elastic.IsConflict(err) {
			log.Infof("index [%v] already exists on target, treating as provisioned", desc.Destination)
			return spec, nil
		}
		return nil, errors.Wrapf(err, "failed to create index [%v]", desc.Destination)
	}

	if spec.Origin == SchemaFromSource {
		for alias := range spec.Aliases {
			if err := p.target.PutAlias(desc.Destination, alias); err != nil {
				return nil, errors.Wrapf(err, "failed to copy alias [%v] onto [%v]", alias, desc.Destination)
			}
		}
	}

	log.Infof("created index [%v] from %v", desc.Destination, spec.Origin)
	return spec, nil
}

func (p *Provisioner) buildSpec(desc IndexDescriptor) (*SchemaSpec, error) {
	tpl, err := p.matchTemplate(desc.Source)
	if err != nil {
		return nil, err
	}

	if tpl != nil {
		log.Infof("using template [%v] for index [%v]", tpl.Name, desc.Source)
		spec := &SchemaSpec{
			Origin:       SchemaFromTemplate,
			TemplateName: tpl.Name,
		}
		if t := tpl.IndexTemplate.Template; t != nil {
			spec.Settings = stripClusterMetadata(t.Settings)
			spec.Mappings = t.Mappings
			spec.Aliases = t.Aliases
		}
		return spec, nil
	}

	log.Infof("no template matches [%v], copying settings/mappings from source", desc.Source)

	settings, err := p.source.GetIndexSettings(desc.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read settings of [%v]", desc.Source)
	}
	mappings, err := p.source.GetMapping(desc.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mappings of [%v]", desc.Source)
	}
	aliasNames, err := p.source.GetAliases(desc.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read aliases of [%v]", desc.Source)
	}

	aliases := map[string]interface{}{}
	for _, name := range aliasNames {
		aliases[name] = struct{}{}
	}

	return &SchemaSpec{
		Origin:   SchemaFromSource,
		Settings: stripClusterMetadata(settings),
		Mappings: mappings,
		Aliases:  aliases,
	}, nil
}
