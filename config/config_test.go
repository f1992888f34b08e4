package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {"AppPort": "9090", "JWTSecret": "s", "RateLimitPerMinute": 30,
		        "AllowedOrigins": ["https://a.example", "https://b.example"],
		        "Timezone": "Asia/Seoul", "MissionResetInterval": "5m"},
		"database": {"Driver": "sqlite", "DatabaseURI": "file.db"},
		"redis": {"Enabled": true, "RedisPort": 6380},
		"coach": {"Model": "gpt-4o-mini", "Timeout": "3s", "Seed": 9},
		"metrics": {"Enabled": true, "User": "prom"},
		"notice": {"Title": "Hi"}
	}`), 0o600))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))
	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, c.MissionResetInterval)
	assert.Equal(t, "sqlite", c.Driver)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, "gpt-4o-mini", c.CoachModel)
	assert.Equal(t, 3*time.Second, c.CoachTimeout)
	assert.Equal(t, int64(9), c.CoachSeed)
	assert.True(t, c.MetricsEnabled)
	assert.Equal(t, "Hi", c.NoticeTitle)
}

func TestLoadJSONConfigMissingAndInvalid(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "absent.json"), &c))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	assert.Error(t, loadJSONConfig(bad, &c))
}

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, c.MissionResetInterval)
	assert.Equal(t, "mysql", c.Driver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, "gpt-4", c.CoachModel)
	assert.Equal(t, 15*time.Second, c.CoachTimeout)
	assert.NotZero(t, c.CoachSeed)

	pg := AppConfig{Driver: "postgres"}
	applyDefaults(&pg)
	assert.Equal(t, "5432", pg.DBPort)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7000")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://x.example , ,https://y.example")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("COACH_TIMEOUT", "2s")
	t.Setenv("APP_TIMEZONE", "UTC")

	c := AppConfig{AppPort: "8080", CoachAPIKey: "from-json"}
	applyEnvOverrides(&c)
	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, c.AllowedOrigins)
	assert.Equal(t, DriverMemory, c.Driver)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, "sk-openai", c.CoachAPIKey)
	assert.Equal(t, 2*time.Second, c.CoachTimeout)
	assert.Equal(t, "UTC", c.Timezone)

	t.Setenv("COACH_API_KEY", "sk-coach")
	applyEnvOverrides(&c)
	assert.Equal(t, "sk-coach", c.CoachAPIKey, "COACH_API_KEY wins over OPENAI_API_KEY")
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, AppConfig{}.Location())
	assert.Equal(t, time.Local, AppConfig{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, time.UTC, AppConfig{Timezone: "UTC"}.Location())
}

func TestSetAppliesDefaults(t *testing.T) {
	Set(AppConfig{JWTSecret: "x", NoticeTitle: "Custom"})
	got := Get()
	assert.Equal(t, "Custom", got.NoticeTitle)
	assert.Equal(t, "8080", got.AppPort)
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(AppConfig{Driver: DriverMemory})
	require.NoError(t, err)
	assert.Nil(t, db)

	_, err = OpenDatabase(AppConfig{Driver: "oracle"})
	assert.Error(t, err)

	db, err = OpenDatabase(AppConfig{Driver: "sqlite", DatabaseURI: "file:config_test?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)
	type scratchTable struct {
		ID   uint
		Name string
	}
	require.NoError(t, Migrate(db, &scratchTable{}))
	assert.True(t, db.Migrator().HasTable(&scratchTable{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}
