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

package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" DEBUG "))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("verbose"))
}

func TestNewLoggerIsShared(t *testing.T) {
	a := NewLogger("UTILS-SHARED")
	assert.Same(t, a, NewLogger("UTILS-SHARED"))

	assert.True(t, SetLoggerLevel("UTILS-SHARED", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("UTILS-MISSING", "error"))
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DAO", NameWidth: 6, DisableColors: true}
	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{"b": 2, "a": 1})
	entry.Level = logrus.WarnLevel
	entry.Message = "slow query"

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Contains(t, line, "   WARN")
	assert.Contains(t, line, "[   DAO] : slow query a=1 b=2")
}

func TestJSONLogFormatter(t *testing.T) {
	var buf bytes.Buffer
	lg := logrus.New()
	lg.SetOutput(&buf)
	lg.SetFormatter(&JSONLogFormatter{LoggerName: "QUERY"})
	lg.WithField("error", assert.AnError).Error("failed")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "QUERY", out["logger"])
	assert.Equal(t, "failed", out["msg"])
	assert.Equal(t, "error", out["level"])
	assert.Equal(t, assert.AnError.Error(), out["error"])
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("EASYDAO_TEST_FLAG", "yes")
	assert.True(t, EnvDefaultBool("EASYDAO_TEST_FLAG", true))
	t.Setenv("EASYDAO_TEST_FLAG", "false")
	assert.False(t, EnvDefaultBool("EASYDAO_TEST_FLAG", true))
	assert.Equal(t, "fallback", EnvDefaultString("EASYDAO_TEST_UNSET", "fallback"))
}
