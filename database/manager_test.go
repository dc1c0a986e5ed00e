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
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type gadget struct {
	bun.BaseModel `bun:"table:gadgets,alias:g"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type part struct {
	bun.BaseModel `bun:"table:parts,alias:p"`

	ID       int64 `bun:"id,pk,autoincrement"`
	GadgetID int64 `bun:"gadget_id"`
}

func TestSqliteDSN(t *testing.T) {
	cases := map[string]string{
		"":                      "file::memory:",
		":memory:":              ":memory:",
		"file::memory:?cache=1": "file::memory:?cache=1",
		"file:app.sqlite":       "file:app.sqlite",
		"data/app.db":           "data/app.db",
		"app":                   "app.db",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
	assert.True(t, isMemoryDSN("file:shared?mode=memory&cache=shared"))
	assert.False(t, isMemoryDSN("app.db"))
}

func TestModelRegistryPriority(t *testing.T) {
	r := newModelRegistry()
	r.Register(NewModelAdapter((*part)(nil), 2))
	r.Register(NewModelAdapter((*gadget)(nil), 1))

	models := r.Models()
	require.Len(t, models, 2)
	assert.IsType(t, (*gadget)(nil), models[0].Instance())
	assert.IsType(t, (*part)(nil), models[1].Instance())
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewDatabaseManager(&ConnectionConfig{Type: "sqlite", DBName: ":memory:", MaxOpenConns: 8})
	m.SetLogger(NewLogger("TEST"))

	assert.Error(t, m.Ping(ctx))
	assert.False(t, m.HealthCheck(ctx).Healthy)

	require.NoError(t, m.Connect(ctx))
	t.Cleanup(func() { _ = m.Disconnect() })

	require.NoError(t, CreateTables(ctx, m.GetDB(), (*gadget)(nil), (*part)(nil)))
	require.NoError(t, CreateTables(ctx, m.GetDB(), (*gadget)(nil)), "existing tables are kept")

	_, err := m.GetDB().NewInsert().Model(&gadget{Name: "lamp"}).Exec(ctx)
	require.NoError(t, err)
	n, err := m.GetDB().NewSelect().Model((*gadget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := m.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.MaxOpenConns)
	assert.Equal(t, 1, m.GetStats().MaxOpenConns)

	require.NoError(t, m.Disconnect())
	assert.Nil(t, m.GetDB())
	assert.Equal(t, &DBStats{}, m.GetStats())
}

func newCheckedManager(t *testing.T) *defaultDatabaseManager {
	t.Helper()
	m := NewDatabaseManager(&ConnectionConfig{
		Type:                "sqlite",
		DBName:              ":memory:",
		HealthCheckInterval: 5 * time.Millisecond,
		EnableReconnect:     true,
		MaxReconnectTries:   100,
		ReconnectInterval:   time.Millisecond,
	}).(*defaultDatabaseManager)
	m.SetLogger(NewLogger("TEST"))
	return m
}

func (dm *defaultDatabaseManager) healthCheckStop() chan struct{} {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.stopHealthCheck
}

func TestDisconnectStopsHealthCheck(t *testing.T) {
	ctx := context.Background()
	m := newCheckedManager(t)

	require.NoError(t, m.Connect(ctx))
	stop := m.healthCheckStop()
	require.NotNil(t, stop)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, m.Disconnect())
	select {
	case <-stop:
	default:
		t.Fatal("stop channel not closed")
	}
	assert.Nil(t, m.healthCheckStop())

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, m.GetDB(), "connection reopened after disconnect")
	assert.False(t, m.HealthCheck(ctx).Healthy)

	require.NoError(t, m.Connect(ctx))
	t.Cleanup(func() { _ = m.Disconnect() })
	restarted := m.healthCheckStop()
	require.NotNil(t, restarted)
	assert.NotEqual(t, stop, restarted)
}

func TestHealthCheckReconnects(t *testing.T) {
	ctx := context.Background()
	m := newCheckedManager(t)

	require.NoError(t, m.Connect(ctx))
	t.Cleanup(func() { _ = m.Disconnect() })

	old := m.GetDB()
	require.NoError(t, old.Close())

	require.Eventually(t, func() bool {
		db := m.GetDB()
		return db != nil && db != old && db.PingContext(ctx) == nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, m.HealthCheck(ctx).Healthy)
}

func TestMySQLDSN(t *testing.T) {
	dsn := mysqlDSN(&ConnectionConfig{
		Host:           "db",
		Port:           3306,
		Username:       "app",
		Password:       "secret",
		DBName:         "shop",
		ConnectTimeout: 5 * time.Second,
	})
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ClientFoundRows)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "gadget", modelName((*gadget)(nil)))
	assert.Equal(t, "part", modelName(&part{}))
	assert.Equal(t, "<nil>", modelName(nil))
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	f := NewDatabaseFactory()
	_, err := f.CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")

	_, err = f.CreateFromConfig(nil)
	assert.Error(t, err)

	assert.Error(t, f.InitializeDatabase(context.Background(), false))
	assert.False(t, f.GetHealthStatus(context.Background()).Healthy)
	assert.Nil(t, f.GetDB())
}

func TestInitDBLoadsNamedQueryFiles(t *testing.T) {
	_, err := InitDB(&Config{
		ConnectionConfig: ConnectionConfig{Type: "sqlite"},
		QueryConfig:      QueryConfig{NamedQueryFiles: []string{"testdata/missing.yaml"}},
	})
	assert.Error(t, err)
	assert.Nil(t, GetDB())

	db, err := InitDB(&Config{ConnectionConfig: ConnectionConfig{Type: "sqlite"}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })
	assert.Same(t, db, GetDB())
	assert.NotNil(t, GetDatabaseManager())
	assert.Equal(t, "sqlite", GetConfig().ConnectionConfig.Type)
}
