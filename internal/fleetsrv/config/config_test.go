package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { _ = LoadConfig("") })

	dir := t.TempDir()
	file := filepath.Join(dir, "fleetsrv.toml")
	content := `
server_port = "9090"
auto_migrate = true

[db]
host = "db.internal"
dbname = "fleet"

[auth]
signing_key = "from-file"
token_validity = "1d"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv("FLEET_SIGNING_KEY", "from-env")

	require.NoError(t, LoadConfig(file))
	c := Config()
	assert.Equal(t, "9090", c.ServerPort)
	assert.True(t, c.AutoMigrate)
	assert.Equal(t, "db.internal", c.DB.Host)
	assert.Equal(t, 5432, c.DB.Port)
	assert.Equal(t, "from-env", c.Auth.SigningKey)
	assert.Equal(t, "fleetmanage", c.Auth.Issuer)
	assert.Equal(t, 1024, c.Activity.QueueSize)

	assert.Error(t, LoadConfig(filepath.Join(dir, "missing.toml")))
}

func TestLoadConfigRejectsBadValidity(t *testing.T) {
	t.Cleanup(func() { _ = LoadConfig("") })
	file := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(file, []byte("[auth]\ntoken_validity = \"forever\"\n"), 0o600))
	assert.Error(t, LoadConfig(file))
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5433, User: "u", DBName: "d", SSLMode: "disable", Password: "p'w", StatementTimeout: "5s", LockTimeout: "250ms"}
	dsn := c.DSN()
	assert.Contains(t, dsn, "host=h port=5433 user=u dbname=d sslmode=disable")
	assert.Contains(t, dsn, `password='p\'w'`)
	assert.Contains(t, dsn, "statement_timeout=5000")
	assert.Contains(t, dsn, "lock_timeout=250")
}

func TestParseTokenDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"12h", 12 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"2y", 2 * 365 * 24 * time.Hour, false},
		{"5", 0, true},
		{"xd", 0, true},
		{"3w", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTokenDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, time.Second, MustDuration("bogus", time.Second))
	assert.Equal(t, 2*time.Second, MustDuration("2s", time.Second))
}
