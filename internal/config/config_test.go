package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourorg/s3-publish/internal/progress"
	"github.com/yourorg/s3-publish/internal/publish"
)

func parse(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvAccessKey, "")
	t.Setenv(EnvSecretKey, "")
	cfg, err := Load(parse(t), nil)
	require.NoError(t, err)
	assert.True(t, cfg.Recursive)
	assert.True(t, cfg.AnimatedProgress)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, progress.StyleAuto, cfg.ProgressStyle)
	assert.Equal(t, publish.DefaultDelay, cfg.Delay)
	assert.Empty(t, cfg.Prefix)
	assert.Empty(t, cfg.AccessKey)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `{
  "service": "digitalocean",
  "region": "fra1",
  "access_key": "file-ak",
  "bucket_name": "file-bucket",
  "prefix": "file/",
  "recursive": false,
  "dry_run": true,
  "delay": "250ms"
}`)
	t.Setenv(EnvAccessKey, "env-ak")
	t.Setenv(EnvSecretKey, "env-sk")

	cfg, err := Load(parse(t, "--config", path, "--region", "ams3", "--prefix", "cli/"), nil)
	require.NoError(t, err)
	assert.Equal(t, "digitalocean", cfg.Service, "file beats default")
	assert.Equal(t, "ams3", cfg.Region, "flag beats file")
	assert.Equal(t, "cli/", cfg.Prefix)
	assert.Equal(t, "file-ak", cfg.AccessKey, "file beats env")
	assert.Equal(t, "env-sk", cfg.SecretKey, "env fills what nobody else set")
	assert.Equal(t, "file-bucket", cfg.Bucket)
	assert.False(t, cfg.Recursive)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFlagBeatsEnv(t *testing.T) {
	t.Setenv(EnvAccessKey, "env-ak")
	cfg, err := Load(parse(t, "--access-key", "cli-ak"), nil)
	require.NoError(t, err)
	assert.Equal(t, "cli-ak", cfg.AccessKey)
}

func TestLoadNegativeFlags(t *testing.T) {
	path := writeFile(t, `{"recursive": true, "animated_progress": true}`)
	cfg, err := Load(parse(t, "-c", path, "--no-recursive", "--no-animated-progress"), nil)
	require.NoError(t, err)
	assert.False(t, cfg.Recursive)
	assert.False(t, cfg.AnimatedProgress)
}

func TestLoadBadFileIgnored(t *testing.T) {
	for name, path := range map[string]string{
		"malformed": writeFile(t, `{"service": `),
		"missing":   filepath.Join(t.TempDir(), "nope.json"),
	} {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			cfg, err := Load(parse(t, "--config", path, "--service", "aws"), zap.New(core))
			require.NoError(t, err)
			assert.Equal(t, "aws", cfg.Service)
			assert.Equal(t, 1, logs.FilterMessage("failed to read configuration file, ignoring it").Len())
		})
	}
}

func TestLoadActionFlags(t *testing.T) {
	cfg, err := Load(parse(t, "--create-config", "--list-buckets", "-v"), nil)
	require.NoError(t, err)
	assert.True(t, cfg.CreateConfig)
	assert.True(t, cfg.ListBuckets)
	assert.True(t, cfg.Verbose)
}

func TestValidate(t *testing.T) {
	full := Config{Service: "aws", Region: "us-east-1", AccessKey: "a", SecretKey: "s"}
	assert.NoError(t, full.Validate())

	err := Config{Service: "aws"}.Validate()
	require.ErrorIs(t, err, ErrMissingParameter)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{KeyRegion, KeyAccessKey, KeySecretKey}, ve.Missing)
	assert.Equal(t, "missing required parameter: region, access_key, secret_key", err.Error())

	bad := full
	bad.Service = "gcs"
	assert.ErrorIs(t, bad.Validate(), ErrUnknownService)

	custom := full
	custom.Service = "custom"
	assert.NoError(t, custom.Validate(), "custom needs no endpoint")

	neg := full
	neg.Delay = -time.Second
	assert.Error(t, neg.Validate())
}

func TestRequireBucket(t *testing.T) {
	assert.ErrorIs(t, Config{}.RequireBucket(), ErrMissingParameter)
	assert.NoError(t, Config{Bucket: "b"}.RequireBucket())
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), SampleFile)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	require.NoError(t, WriteSample(path))

	t.Setenv(EnvAccessKey, "")
	cfg, err := Load(parse(t, "--config", path), nil)
	require.NoError(t, err)
	assert.Equal(t, "digitalocean", cfg.Service)
	assert.Equal(t, "fra1", cfg.Region)
	assert.Equal(t, "YOUR_ACCESS_KEY", cfg.AccessKey)
	assert.Equal(t, "YOUR_SECRET_KEY", cfg.SecretKey)
	assert.Equal(t, "your-bucket-name", cfg.Bucket)
	assert.Equal(t, "path/to/files/", cfg.Prefix)
	assert.True(t, cfg.Recursive)
	assert.Empty(t, cfg.EndpointURL)
	assert.Equal(t, publish.DefaultDelay, cfg.Delay)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"delay": "100ms"`)
}

func TestLoadDelayFormats(t *testing.T) {
	cfg, err := Load(parse(t, "--delay", "2s"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Delay)

	for name, body := range map[string]string{
		"bare number":  `{"delay": 0.5}`,
		"integer":      `{"delay": 100}`,
		"not duration": `{"delay": "soon"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(parse(t, "--config", writeFile(t, body)), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "100ms")
		})
	}
}
