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
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables read by LoadConfig, e.g.
// EASYDAO_CONNECTION_CONFIG_HOST.
const EnvPrefix = "EASYDAO"

// LoadConfig reads a YAML/JSON/TOML config file (optional when path is empty),
// applies EASYDAO_* environment variables, and fills unset connection values
// from DefaultConnectionConfig.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setConfigDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	d := DefaultConnectionConfig()
	v.SetDefault("connection_config.type", "sqlite")
	v.SetDefault("connection_config.host", "")
	v.SetDefault("connection_config.port", 0)
	v.SetDefault("connection_config.username", "")
	v.SetDefault("connection_config.password", "")
	v.SetDefault("connection_config.dbname", "")
	v.SetDefault("connection_config.sslmode", "")
	v.SetDefault("connection_config.max_idle_conns", d.MaxIdleConns)
	v.SetDefault("connection_config.max_open_conns", d.MaxOpenConns)
	v.SetDefault("connection_config.conn_max_lifetime", d.ConnMaxLifetime)
	v.SetDefault("connection_config.conn_max_idle_time", d.ConnMaxIdleTime)
	v.SetDefault("connection_config.connect_timeout", d.ConnectTimeout)
	v.SetDefault("connection_config.read_timeout", d.ReadTimeout)
	v.SetDefault("connection_config.write_timeout", d.WriteTimeout)
	v.SetDefault("connection_config.enable_reconnect", d.EnableReconnect)
	v.SetDefault("connection_config.reconnect_interval", d.ReconnectInterval)
	v.SetDefault("connection_config.max_reconnect_tries", d.MaxReconnectTries)
	v.SetDefault("connection_config.health_check_interval", d.HealthCheckInterval)
	v.SetDefault("connection_config.enable_query_log", d.EnableQueryLog)
	v.SetDefault("connection_config.slow_query_time", d.SlowQueryTime)
	v.SetDefault("schema_config.create_tables_on_startup", false)
	v.SetDefault("query_config.named_query_files", []string{})
}
