package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	assert.Contains(t, buf.String(), "info test")
}

func TestZerologLoggerComponentField(t *testing.T) {
	t.Setenv("APP_ENV", "")
	var buf bytes.Buffer
	NewZerologLoggerTo(&buf, "search").Infof("started %s", "genetic")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "search", line["component"])
	assert.Equal(t, "started genetic", line["message"])
}

func TestSetGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	SetGlobalLevel(Config{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetGlobalLevel(Config{Level: "bogus"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	var buf bytes.Buffer
	NewZerologLoggerTo(&buf, "x").Infof("hidden")
	assert.Empty(t, buf.String())

	c := Config{}
	c.SetDefaults()
	assert.Equal(t, "info", c.Level)
}
