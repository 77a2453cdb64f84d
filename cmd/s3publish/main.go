package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/yourorg/s3-publish/internal/config"
	"github.com/yourorg/s3-publish/internal/enumerate"
	"github.com/yourorg/s3-publish/internal/logging"
	znmetrics "github.com/yourorg/s3-publish/internal/metrics"
	"github.com/yourorg/s3-publish/internal/progress"
	"github.com/yourorg/s3-publish/internal/publish"
	"github.com/yourorg/s3-publish/internal/services"
	"github.com/yourorg/s3-publish/internal/storage"
)

var errCancelled = errors.New("operation cancelled by user")

// newStore connects to the object store; overridden in tests.
var newStore = func(ctx context.Context, sc storage.SessionConfig) (storage.ObjectStore, error) {
	return storage.NewSession(ctx, sc)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3publish",
		Short: "Make objects public on S3-compatible storage services",
		Long: `s3publish lists the objects under a prefix and grants each one public-read
access, one object at a time.

Supported services: aws, digitalocean, wasabi, backblaze, minio, custom.`,
		Example: `  s3publish --config config.json
  s3publish --service digitalocean --region fra1 \
    --access-key KEY --secret-key SECRET --bucket my-bucket --prefix images/
  s3publish --config config.json --dry-run
  s3publish --config config.json --list-buckets
  s3publish --create-config`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, stdout, stderr io.Writer) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	boot := logging.New(logging.Options{Verbose: verbose, Out: stderr})
	cfg, err := config.Load(cmd.Flags(), boot)
	if err != nil {
		return err
	}

	if cfg.CreateConfig {
		if err := config.WriteSample(config.SampleFile); err != nil {
			return err
		}
		boot.Info("sample configuration file created", zap.String("path", config.SampleFile))
		boot.Info("please edit the configuration file with your credentials")
		return nil
	}
	if err := cfg.Validate(); err != nil {
		boot.Error("missing or invalid parameters, use --help for usage", zap.Error(err))
		return err
	}

	animated := cfg.AnimatedProgress && !cfg.ListBuckets
	zl, level := logging.NewWithLevel(logging.Options{Verbose: cfg.Verbose, Out: stderr})
	defer zl.Sync()

	znmetrics.Init()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := znmetrics.Serve(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zl.Warn("metrics server stopped", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
			}
		}()
	}

	store, err := newStore(ctx, storage.SessionConfig{
		Service:     cfg.Service,
		Region:      cfg.Region,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		EndpointURL: cfg.EndpointURL,
	})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", services.DisplayName(cfg.Service), err)
	}
	endpoint := services.ResolveEndpoint(cfg.Service, cfg.Region, cfg.EndpointURL)
	zl.Info("connected", zap.String("service", services.DisplayName(cfg.Service)), zap.String("region", cfg.Region), zap.String("endpoint", endpoint))

	if cfg.ListBuckets {
		return listBuckets(ctx, store, stdout, zl)
	}
	if err := cfg.RequireBucket(); err != nil {
		zl.Error("bucket name is required", zap.Error(err))
		return err
	}

	var sink progress.Sink = progress.Discard{}
	if animated {
		r, err := progress.NewRenderer(cfg.ProgressStyle, stdout, isTerminal(stdout))
		if err != nil {
			return err
		}
		sink = &quietWhileRunning{
			Sink:   progress.NewReporter(r),
			level:  level,
			normal: level.Level(),
			quiet:  logging.Options{Verbose: cfg.Verbose, Quiet: true}.EffectiveLevel(),
		}
	}

	mgr := publish.NewManager(
		enumerate.New(store, zl),
		publish.New(store, zl, publish.Config{Delay: cfg.Delay, Sink: sink}),
		zl,
	)
	res, batch := mgr.MakePublic(ctx, publish.Request{
		Bucket:    cfg.Bucket,
		Prefix:    cfg.Prefix,
		Recursive: cfg.Recursive,
		DryRun:    cfg.DryRun,
	})
	if ctx.Err() != nil {
		zl.Warn("operation cancelled by user", zap.Int("processed", res.Success+res.Failed), zap.Int("total", res.Total))
		return errCancelled
	}

	fmt.Fprintf(stdout, "Results: %s successful, %s failed, %d total\n",
		color.GreenString("%d", res.Success), color.RedString("%d", res.Failed), res.Total)
	if res.Success > 0 && !cfg.DryRun {
		fmt.Fprintln(stdout, color.GreenString("Files are now publicly accessible!"))
		fmt.Fprintf(stdout, "  Service: %s\n  Region:  %s\n  Bucket:  %s\n  Prefix:  %s\n",
			services.DisplayName(cfg.Service), cfg.Region, cfg.Bucket, cfg.Prefix)
		if len(batch) > 0 {
			fmt.Fprintf(stdout, "  Example: %s\n", services.URLFor(cfg.Service, cfg.Region, endpoint, cfg.Bucket, batch[0].Key))
		}
	}
	return nil
}

// quietWhileRunning raises the log floor only while the live display owns
// the terminal.
type quietWhileRunning struct {
	progress.Sink
	level  zap.AtomicLevel
	normal zapcore.Level
	quiet  zapcore.Level
}

func (q *quietWhileRunning) Start(total int) {
	q.level.SetLevel(q.quiet)
	q.Sink.Start(total)
}

func (q *quietWhileRunning) Stop() {
	q.Sink.Stop()
	q.level.SetLevel(q.normal)
}

func listBuckets(ctx context.Context, store storage.ObjectStore, stdout io.Writer, zl *zap.Logger) error {
	names, err := store.ListBuckets(ctx)
	if err != nil {
		zl.Error("failed to list buckets", zap.Bool("clientError", storage.IsClientError(err)), zap.Error(err))
	}
	if len(names) == 0 {
		zl.Warn("no buckets found or failed to list buckets")
		return nil
	}
	fmt.Fprintln(stdout, "Available buckets:")
	for _, n := range names {
		fmt.Fprintf(stdout, "  - %s\n", n)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
