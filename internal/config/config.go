// Package config resolves run settings from CLI flags, an optional JSON
// config file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yourorg/s3-publish/internal/logging"
	"github.com/yourorg/s3-publish/internal/progress"
	"github.com/yourorg/s3-publish/internal/publish"
	"github.com/yourorg/s3-publish/internal/services"
)

// Config file keys.
const (
	KeyService          = "service"
	KeyRegion           = "region"
	KeyAccessKey        = "access_key"
	KeySecretKey        = "secret_key"
	KeyEndpointURL      = "endpoint_url"
	KeyBucket           = "bucket_name"
	KeyPrefix           = "prefix"
	KeyRecursive        = "recursive"
	KeyDryRun           = "dry_run"
	KeyAnimatedProgress = "animated_progress"
	KeyProgressStyle    = "progress_style"
	KeyDelay            = "delay"
	KeyMetricsAddr      = "metrics_addr"
)

// Credential fallbacks, consulted only when neither a flag nor the file sets them.
const (
	EnvAccessKey = "AWS_ACCESS_KEY_ID"
	EnvSecretKey = "AWS_SECRET_ACCESS_KEY"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrUnknownService   = errors.New("unknown service")
)

// ValidationError lists the required keys that resolved empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingParameter, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrMissingParameter }

// Config is the resolved run configuration.
type Config struct {
	Service          string
	Region           string
	AccessKey        string
	SecretKey        string
	EndpointURL      string
	Bucket           string
	Prefix           string
	Recursive        bool
	DryRun           bool
	AnimatedProgress bool
	ProgressStyle    string
	Delay            time.Duration
	MetricsAddr      string

	// Flag-only switches.
	ConfigFile   string
	CreateConfig bool
	ListBuckets  bool
	Verbose      bool
}

// flag name -> config key for every flag that also has a file key.
var bindings = map[string]string{
	"service":           KeyService,
	"region":            KeyRegion,
	"access-key":        KeyAccessKey,
	"secret-key":        KeySecretKey,
	"endpoint-url":      KeyEndpointURL,
	"bucket":            KeyBucket,
	"prefix":            KeyPrefix,
	"recursive":         KeyRecursive,
	"dry-run":           KeyDryRun,
	"animated-progress": KeyAnimatedProgress,
	"progress-style":    KeyProgressStyle,
	"delay":             KeyDelay,
	"metrics-addr":      KeyMetricsAddr,
}

// RegisterFlags declares every CLI flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "configuration file path (JSON)")
	fs.Bool("create-config", false, "write a sample config.json and exit")

	fs.String("service", "", "storage service: "+strings.Join(services.IDs(), ", "))
	fs.String("region", "", "region name")
	fs.String("access-key", "", "access key id")
	fs.String("secret-key", "", "secret access key")
	fs.String("endpoint-url", "", "custom endpoint URL")

	fs.String("bucket", "", "bucket name")
	fs.String("prefix", "", "object prefix to filter by")
	fs.Bool("recursive", true, "include subdirectories")
	fs.Bool("no-recursive", false, "only process objects directly under the prefix")
	fs.Bool("dry-run", false, "show what would be done without making changes")
	fs.Bool("list-buckets", false, "list available buckets and exit")

	fs.Bool("animated-progress", true, "show a live progress display")
	fs.Bool("no-animated-progress", false, "log every object instead of showing a live display")
	fs.String("progress-style", progress.StyleAuto, "progress renderer: auto, rich or simple")
	fs.Duration("delay", publish.DefaultDelay, "pause between two ACL updates")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address (empty disables)")
	fs.BoolP("verbose", "v", false, "enable debug logging")
}

// Load resolves a Config from parsed flags. Precedence is a changed flag,
// then the config file, then the credential environment variables, then the
// default. A config file that cannot be read is logged and ignored.
func Load(fs *pflag.FlagSet, log *zap.Logger) (Config, error) {
	log = logging.OrNop(log)
	v := viper.New()
	v.SetDefault(KeyRecursive, true)
	v.SetDefault(KeyAnimatedProgress, true)
	v.SetDefault(KeyProgressStyle, progress.StyleAuto)
	v.SetDefault(KeyDelay, publish.DefaultDelay)

	for flag, key := range bindings {
		f := fs.Lookup(flag)
		if f == nil {
			return Config{}, fmt.Errorf("config: flag --%s not registered", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", flag, err)
		}
	}
	if changed(fs, "no-recursive") {
		v.Set(KeyRecursive, false)
	}
	if changed(fs, "no-animated-progress") {
		v.Set(KeyAnimatedProgress, false)
	}

	cfg := Config{
		ConfigFile:   stringFlag(fs, "config"),
		CreateConfig: boolFlag(fs, "create-config"),
		ListBuckets:  boolFlag(fs, "list-buckets"),
		Verbose:      boolFlag(fs, "verbose"),
	}
	if cfg.ConfigFile != "" {
		v.SetConfigFile(cfg.ConfigFile)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			log.Error("failed to read configuration file, ignoring it", zap.String("path", cfg.ConfigFile), zap.Error(err))
		} else {
			log.Debug("configuration file loaded", zap.String("path", cfg.ConfigFile))
		}
	}

	cfg.Service = v.GetString(KeyService)
	cfg.Region = v.GetString(KeyRegion)
	cfg.AccessKey = v.GetString(KeyAccessKey)
	cfg.SecretKey = v.GetString(KeySecretKey)
	cfg.EndpointURL = v.GetString(KeyEndpointURL)
	cfg.Bucket = v.GetString(KeyBucket)
	cfg.Prefix = v.GetString(KeyPrefix)
	cfg.Recursive = v.GetBool(KeyRecursive)
	cfg.DryRun = v.GetBool(KeyDryRun)
	cfg.AnimatedProgress = v.GetBool(KeyAnimatedProgress)
	cfg.ProgressStyle = v.GetString(KeyProgressStyle)
	delay, err := durationValue(v.Get(KeyDelay))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeyDelay, err)
	}
	cfg.Delay = delay
	cfg.MetricsAddr = v.GetString(KeyMetricsAddr)

	if cfg.AccessKey == "" {
		cfg.AccessKey = os.Getenv(EnvAccessKey)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = os.Getenv(EnvSecretKey)
	}
	return cfg, nil
}

// Validate checks the parameters every storage operation needs.
func (c Config) Validate() error {
	var missing []string
	for _, p := range []struct{ key, val string }{
		{KeyService, c.Service},
		{KeyRegion, c.Region},
		{KeyAccessKey, c.AccessKey},
		{KeySecretKey, c.SecretKey},
	} {
		if p.val == "" {
			missing = append(missing, p.key)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if _, ok := services.Lookup(c.Service); !ok {
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownService, c.Service, strings.Join(services.IDs(), ", "))
	}
	if c.Delay < 0 {
		return fmt.Errorf("config: negative delay %s", c.Delay)
	}
	return nil
}

// RequireBucket reports a missing bucket, needed by everything but --list-buckets.
func (c Config) RequireBucket() error {
	if c.Bucket == "" {
		return &ValidationError{Missing: []string{KeyBucket}}
	}
	return nil
}

// durationValue accepts a time.Duration or a Go duration string such as
// "100ms". Bare numbers are rejected since their unit is ambiguous.
func durationValue(raw any) (time.Duration, error) {
	switch x := raw.(type) {
	case time.Duration:
		return x, nil
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			return 0, fmt.Errorf("want a duration such as \"100ms\": %w", err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("want a duration string such as \"100ms\", got %v (%T)", raw, raw)
	}
}

func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

func stringFlag(fs *pflag.FlagSet, name string) string {
	s, _ := fs.GetString(name)
	return s
}

func boolFlag(fs *pflag.FlagSet, name string) bool {
	b, _ := fs.GetBool(name)
	return b
}
