package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"db_driver":"postgres","app_port":"9000","order_strict_transitions":true}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nAPP_PORT=\"9100\"\nS3_BUCKET=prints\n"), 0o644))

	require.NoError(t, loadFrom(jsonFile(jsonPath), dotenvFile(envPath),
		environment([]string{"IDENTITY_DRIVER=remote", "RATE_LIMIT_PER_MINUTE=42"})))

	assert.Equal(t, "postgres", get("DB_DRIVER", ""))
	assert.Equal(t, "9100", get("APP_PORT", ""), ".env wins over app.json")
	assert.Equal(t, "prints", get("S3_BUCKET", ""))
	assert.Equal(t, "remote", get("IDENTITY_DRIVER", ""), "environment wins over files")
	assert.Equal(t, "true", get("ORDER_STRICT_TRANSITIONS", ""))
	assert.Equal(t, "42", get("RATE_LIMIT_PER_MINUTE", ""))
}

func TestDotenvSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"export S3_BUCKET=prints\n"+
			"IDENTITY_REDIRECT_URL='https://app.example/cb#x'\n"+
			"APP_PORT=9200 # local override\n"), 0o644))

	kv, err := dotenvFile(path)()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"S3_BUCKET":             "prints",
		"IDENTITY_REDIRECT_URL": "https://app.example/cb#x",
		"APP_PORT":              "9200",
	}, kv)
}

func TestDotenvRejectsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=1\njust words\n"), 0o644))

	_, err := dotenvFile(path)()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")
}

func TestLoadFromFilesMissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFrom(jsonFile(filepath.Join(dir, "nope.json")), dotenvFile(filepath.Join(dir, ".nope"))))
	assert.Equal(t, defaultAllowedEmailDomain, get("ALLOWED_EMAIL_DOMAIN", ""))
}

func TestTypedGetters(t *testing.T) {
	Set("FEATURE_X", "yes")
	Set("SOME_TIMEOUT", "3s")
	Set("SOME_COUNT", "12")
	Set("BROKEN_TIMEOUT", "soon")

	assert.True(t, Bool("FEATURE_X", false))
	assert.False(t, Bool("FEATURE_MISSING", false))
	assert.Equal(t, 3*time.Second, Duration("SOME_TIMEOUT", time.Second))
	assert.Equal(t, time.Second, Duration("BROKEN_TIMEOUT", time.Second))
	assert.Equal(t, 12, Int("SOME_COUNT", 0))
}

func TestDatabaseDriverFallsBackToSQLite(t *testing.T) {
	Set("DB_DRIVER", "oracle")
	t.Cleanup(func() { Set("DB_DRIVER", defaultDatabaseDriver) })

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
}

func TestCORSOriginsSplits(t *testing.T) {
	Set("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Cleanup(func() { Set("CORS_ORIGINS", "") })

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())
}

func TestTrustedProxiesDefaultsToNone(t *testing.T) {
	assert.Empty(t, TrustedProxies())

	Set("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Cleanup(func() { Set("TRUSTED_PROXIES", "") })
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, TrustedProxies())
}
