package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
api:
  port: "5000"
database:
  driver: sqlite
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	conf, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "5000", conf.API.Port)
	assert.Equal(t, 24*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, "sqlite", conf.Database.Driver)
	assert.Equal(t, "inventory", conf.Database.Name)
	assert.Equal(t, "local", conf.Storage.Disk)
	assert.Equal(t, int64(16<<20), conf.Storage.MaxUploadSize)
	assert.Equal(t, "BT", conf.Billing.NumberPrefix)
	assert.Equal(t, 5, conf.Inventory.LowStockThreshold)
	assert.False(t, conf.Redis.Enabled())
}

func TestLoad_EnvOverridesKeysMissingFromFile(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("API_JWT_SIGNING_KEY", "secret")
	t.Setenv("DATABASE_DSN", "file:test.db")
	t.Setenv("DATABASE_USER", "stock")
	t.Setenv("DATABASE_PASSWORD", "pw")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("STORAGE_DISK", "s3")
	t.Setenv("STORAGE_S3_BUCKET", "receipts")
	t.Setenv("STORAGE_S3_KEY", "AKIA")
	t.Setenv("STORAGE_S3_SECRET", "shh")
	t.Setenv("STORAGE_S3_ENDPOINT", "http://minio:9000")

	conf, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "9999", conf.API.Port)
	assert.Equal(t, "secret", conf.API.JWTSigningKey)
	assert.Equal(t, "file:test.db", conf.Database.DSN)
	assert.Equal(t, "stock", conf.Database.User)
	assert.Equal(t, "pw", conf.Database.Password)
	assert.Equal(t, "localhost:6379", conf.Redis.Addr)
	assert.Equal(t, 2, conf.Redis.DB)
	assert.True(t, conf.Redis.Enabled())
	assert.Equal(t, "s3", conf.Storage.Disk)
	assert.Equal(t, "receipts", conf.Storage.S3Bucket)
	assert.Equal(t, "AKIA", conf.Storage.S3Key)
	assert.Equal(t, "shh", conf.Storage.S3Secret)
	assert.Equal(t, "http://minio:9000", conf.Storage.S3Endpoint)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
