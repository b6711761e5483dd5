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

package cluster

import (
	"github.com/buger/jsonparser"
	log "github.com/cihub/seelog"
	"github.com/pkg/errors"

	"infini.sh/migrate/core/util"
)

func getBody(client Requester, path string) ([]byte, error) {
	result, err := client.Request(util.Verb_GET, path, nil)
	if err != nil {
		return nil, err
	}
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		return nil, errors.Errorf("GET %v returned status %v", path, result.StatusCode)
	}
	return result.Body, nil
}

func putBody(client Requester, path string, body []byte) error {
	result, err := client.Request(util.Verb_PUT, path, body)
	if err != nil {
		return err
	}
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		return errors.Errorf("PUT %v returned status %v: %v", path, result.StatusCode,
			util.SubString(string(result.Body), 0, 512))
	}
	return nil
}

// syncKeyedObjects copies every entry of a map-shaped response, one put per
// key. A failing entry is logged and skipped so the rest of the kind still
// copies.
func syncKeyedObjects(source, target Requester, getPath string, putPrefix string,
	wrap func(id string, body []byte) []byte) (int, error) {

	data, err := getBody(source, getPath)
	if err != nil {
		return 0, err
	}

	copied := 0
	err = jsonparser.ObjectEach(data, func(key []byte, value []byte, _ jsonparser.ValueType, _ int) error {
		id := string(key)
		body := value
		if wrap != nil {
			body = wrap(id, value)
		}
		if err := putBody(target, putPrefix+id, body); err != nil {
			log.Errorf("failed to copy [%v] to %v: %v", id, putPrefix, err)
			return nil
		}
		copied++
		return nil
	})
	return copied, err
}

// syncNamedArray copies every element of an array-shaped response where each
// element carries its name and payload under the given keys.
func syncNamedArray(source, target Requester, getPath, arrayKey, nameKey, bodyKey, putPrefix string) (int, error) {
	data, err := getBody(source, getPath)
	if err != nil {
		return 0, err
	}

	copied := 0
	_, err = jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		name, err := jsonparser.GetString(value, nameKey)
		if err != nil {
			log.Errorf("skipping %v entry without [%v] field", arrayKey, nameKey)
			return
		}
		body, _, _, err := jsonparser.Get(value, bodyKey)
		if err != nil {
			log.Errorf("skipping [%v], no [%v] payload", name, bodyKey)
			return
		}
		if err := putBody(target, putPrefix+name, body); err != nil {
			log.Errorf("failed to copy [%v] to %v: %v", name, putPrefix, err)
			return
		}
		copied++
	}, arrayKey)
	return copied, err
}

func syncComponentTemplates(source, target Requester) (int, error) {
	return syncNamedArray(source, target,
		"/_component_template", "component_templates", "name", "component_template", "/_component_template/")
}

func syncIndexTemplates(source, target Requester) (int, error) {
	return syncNamedArray(source, target,
		"/_index_template", "index_templates", "name", "index_template", "/_index_template/")
}

func syncIngestPipelines(source, target Requester) (int, error) {
	return syncKeyedObjects(source, target, "/_ingest/pipeline", "/_ingest/pipeline/", nil)
}

func syncStoredScripts(source, target Requester) (int, error) {
	data, err := getBody(source, "/_cluster/state/metadata?filter_path=metadata.stored_scripts")
	if err != nil {
		return 0, err
	}

	scripts, _, _, err := jsonparser.Get(data, "metadata", "stored_scripts")
	if err != nil {
		// no stored scripts on the source
		return 0, nil
	}

	copied := 0
	jsonparser.ObjectEach(scripts, func(key []byte, value []byte, _ jsonparser.ValueType, _ int) error {
		id := string(key)
		body := append(append([]byte(`{"script":`), value...), '}')
		if err := putBody(target, "/_scripts/"+id, body); err != nil {
			log.Errorf("failed to copy stored script [%v]: %v", id, err)
			return nil
		}
		copied++
		return nil
	})
	return copied, nil
}

func syncILMPolicies(source, target Requester) (int, error) {
	return syncKeyedObjects(source, target, "/_ilm/policy", "/_ilm/policy/",
		func(id string, value []byte) []byte {
			policy, _, _, err := jsonparser.Get(value, "policy")
			if err != nil {
				return value
			}
			return append(append([]byte(`{"policy":`), policy...), '}')
		})
}

func syncRoles(source, target Requester) (int, error) {
	return syncKeyedObjects(source, target, "/_security/role", "/_security/role/", nil)
}

func syncUsers(source, target Requester) (int, error) {
	return syncKeyedObjects(source, target, "/_security/user", "/_security/user/", nil)
}

func syncRoleMappings(source, target Requester) (int, error) {
	return syncKeyedObjects(source, target, "/_security/role_mapping", "/_security/role_mapping/", nil)
}

// fields the source cluster stamped onto the object, rejected on create
var transformAssignedFields = [][]string{{"id"}, {"create_time"}, {"version"}, {"authorization"}}

func syncTransforms(source, target Requester) (int, error) {
	data, err := getBody(source, "/_transform")
	if err != nil {
		return 0, err
	}

	copied := 0
	_, err = jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		id, err := jsonparser.GetString(value, "id")
		if err != nil {
			log.Errorf("skipping transform entry without id")
			return
		}
		body := value
		for _, field := range transformAssignedFields {
			body = jsonparser.Delete(body, field...)
		}
		if err := putBody(target, "/_transform/"+id, body); err != nil {
			log.Errorf("failed to copy transform [%v]: %v", id, err)
			return
		}
		copied++
	}, "transforms")
	return copied, err
}

func syncRollupJobs(source, target Requester) (int, error) {
	data, err := getBody(source, "/_rollup/job/_all")
	if err != nil {
		return 0, err
	}

	copied := 0
	_, err = jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		config, _, _, err := jsonparser.Get(value, "config")
		if err != nil {
			log.Errorf("skipping rollup job entry without config")
			return
		}
		id, err := jsonparser.GetString(config, "id")
		if err != nil {
			log.Errorf("skipping rollup job config without id")
			return
		}
		body := jsonparser.Delete(config, "id")
		if err := putBody(target, "/_rollup/job/"+id, body); err != nil {
			log.Errorf("failed to copy rollup job [%v]: %v", id, err)
			return
		}
		copied++
	}, "jobs")
	return copied, err
}

func syncWatchers(source, target Requester) (int, error) {
	data, err := getBody(source, "/_watcher/_query/watches")
	if err != nil {
		return 0, err
	}

	copied := 0
	_, err = jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		id, err := jsonparser.GetString(value, "_id")
		if err != nil {
			log.Errorf("skipping watch entry without _id")
			return
		}
		watch, _, _, err := jsonparser.Get(value, "watch")
		if err != nil {
			log.Errorf("skipping watch [%v], no watch payload", id)
			return
		}
		if err := putBody(target, "/_watcher/watch/"+id, watch); err != nil {
			log.Errorf("failed to copy watch [%v]: %v", id, err)
			return
		}
		copied++
	}, "watches")
	return copied, err
}

func syncEnrichPolicies(source, target Requester) (int, error) {
	data, err := getBody(source, "/_enrich/policy")
	if err != nil {
		return 0, err
	}

	copied := 0
	_, err = jsonparser.ArrayEach(data, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		config, _, _, err := jsonparser.Get(value, "config")
		if err != nil {
			log.Errorf("skipping enrich policy entry without config")
			return
		}

		// the policy type is the single top-level key, its name moves into
		// the request path
		var policyType, name string
		jsonparser.ObjectEach(config, func(key []byte, inner []byte, _ jsonparser.ValueType, _ int) error {
			policyType = string(key)
			name, _ = jsonparser.GetString(inner, "name")
			return nil
		})
		if policyType == "" || name == "" {
			log.Errorf("skipping malformed enrich policy entry")
			return
		}

		body := jsonparser.Delete(config, policyType, "name")
		if err := putBody(target, "/_enrich/policy/"+name, body); err != nil {
			log.Errorf("failed to copy enrich policy [%v]: %v", name, err)
			return
		}
		copied++
	}, "policies")
	return copied, err
}
