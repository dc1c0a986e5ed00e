/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var defaultNamedQueries = NewNamedQueryRegistry()

// NamedQueryProvider is implemented by entities that declare their own
// queries, keyed by name ("User.findByUK").
type NamedQueryProvider interface {
	NamedQueries() map[string]string
}

// NamedQuery is a query registered under a name. Query text uses ":param"
// placeholders and may reference entity type names in FROM/UPDATE clauses.
type NamedQuery struct {
	Name        string `yaml:"name"`
	Query       string `yaml:"query"`
	Description string `yaml:"description,omitempty"`
}

// NamedQueryFile is the YAML layout read by LoadFile.
type NamedQueryFile struct {
	NamedQueries []NamedQuery `yaml:"named_queries"`
}

// NamedQueryRegistry stores named queries. Lookups ignore case.
type NamedQueryRegistry struct {
	mu      sync.RWMutex
	queries map[string]NamedQuery
}

func NewNamedQueryRegistry() *NamedQueryRegistry {
	return &NamedQueryRegistry{queries: make(map[string]NamedQuery)}
}

// Register adds or replaces the query stored under name.
func (r *NamedQueryRegistry) Register(name, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[strings.ToLower(name)] = NamedQuery{Name: name, Query: query}
}

// Lookup returns the query text registered under name.
func (r *NamedQueryRegistry) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[strings.ToLower(name)]
	return q.Query, ok
}

// Names returns the registered names in sorted order.
func (r *NamedQueryRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.queries))
	for _, q := range r.queries {
		names = append(names, q.Name)
	}
	sort.Strings(names)
	return names
}

// LoadFile registers every query listed in a YAML file.
func (r *NamedQueryRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read named query file: %w", err)
	}
	var file NamedQueryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse named query file %s: %w", path, err)
	}
	for i, q := range file.NamedQueries {
		if strings.TrimSpace(q.Name) == "" || strings.TrimSpace(q.Query) == "" {
			return fmt.Errorf("named query #%d in %s needs both name and query", i+1, path)
		}
		r.Register(q.Name, q.Query)
	}
	return nil
}

// Resolve looks name up on model (when it is a NamedQueryProvider) and then
// in the registry.
func (r *NamedQueryRegistry) Resolve(model interface{}, name string) (string, bool) {
	if p, ok := model.(NamedQueryProvider); ok {
		for k, q := range p.NamedQueries() {
			if strings.EqualFold(k, name) {
				return q, true
			}
		}
	}
	return r.Lookup(name)
}

// DefaultNamedQueries returns the process-wide registry.
func DefaultNamedQueries() *NamedQueryRegistry {
	return defaultNamedQueries
}

// RegisterNamedQuery adds a query to the process-wide registry.
func RegisterNamedQuery(name, query string) {
	defaultNamedQueries.Register(name, query)
}

// LoadNamedQueries loads a YAML file into the process-wide registry.
func LoadNamedQueries(path string) error {
	return defaultNamedQueries.LoadFile(path)
}
