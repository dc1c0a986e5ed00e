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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	d := DefaultConnectionConfig()
	assert.Equal(t, "sqlite", cfg.ConnectionConfig.Type)
	assert.Equal(t, d.MaxOpenConns, cfg.ConnectionConfig.MaxOpenConns)
	assert.Equal(t, d.SlowQueryTime, cfg.ConnectionConfig.SlowQueryTime)
	assert.False(t, cfg.SchemaConfig.CreateTablesOnStartup)
	assert.Empty(t, cfg.QueryConfig.NamedQueryFiles)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "easydao.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
connection_config:
  type: postgres
  host: db.local
  port: 5433
  dbname: shop
  slow_query_time: 500ms
schema_config:
  create_tables_on_startup: true
query_config:
  named_query_files:
    - queries/orders.yaml
`), 0o600))
	t.Setenv("EASYDAO_CONNECTION_CONFIG_USERNAME", "app")
	t.Setenv("EASYDAO_CONNECTION_CONFIG_HOST", "db.internal")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	c := cfg.ConnectionConfig
	assert.Equal(t, "postgres", c.Type)
	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, 5433, c.Port)
	assert.Equal(t, "app", c.Username)
	assert.Equal(t, "shop", c.DBName)
	assert.Equal(t, 500*time.Millisecond, c.SlowQueryTime)
	assert.True(t, cfg.SchemaConfig.CreateTablesOnStartup)
	assert.Equal(t, []string{"queries/orders.yaml"}, cfg.QueryConfig.NamedQueryFiles)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_NAME", ":memory:")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("DB_SLOW_QUERY_TIME", "250ms")

	cfg := &ConnectionConfig{Type: "mysql", Port: 3306}
	_, err := NewDatabaseFactory().CreateFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, ":memory:", cfg.DBName)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.SlowQueryTime)
}
