package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	featurehub "github.com/JorgeRod2594/feature-hub"
	"github.com/JorgeRod2594/feature-hub/internal/config"
	huberrors "github.com/JorgeRod2594/feature-hub/internal/errors"
	"github.com/JorgeRod2594/feature-hub/pkg/source"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		configDir string
		metrics   bool
		tracing   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured feature app pages",
		Long: `Serve the configured feature app pages.

The server renders each page server-side, then keeps connected
browsers in step over a WebSocket as the page's module settles.

Module sources come from the configured backends: http(s) URLs,
a local directory, or an S3 bucket.

Examples:
  featurehub serve
  featurehub serve --addr=:3000
  featurehub serve --config=./deploy --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, configDir, metrics, tracing)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing featurehub.yaml and .env")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Instrument module loads and expose /metrics")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Wrap module loads in OpenTelemetry spans")

	return cmd
}

func runServe(addr, configDir string, metrics, tracing bool) error {
	// Load config
	cfg, err := config.Load(configDir)
	if err != nil {
		return huberrors.FromError(err, "E003").
			WithSuggestion(fmt.Sprintf("check %s.yaml in %s", config.ConfigFileName, configDir))
	}

	// Apply command-line overrides
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if metrics {
		cfg.Server.Metrics = true
	}
	if tracing {
		cfg.Server.Tracing = true
	}

	if len(cfg.Pages) == 0 {
		return huberrors.New("E002").
			WithSuggestion("add a pages entry to the config file").
			WithExample(pagesExample)
	}
	if !cfg.HasSource() {
		return huberrors.New("E001").
			WithSuggestion("set sources.file.dir, sources.http.base_url or sources.s3.bucket").
			WithExample(sourcesExample)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// Print banner
	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	if cfg.Static.Dir != "" {
		if _, err := os.Stat(cfg.Static.Dir); err != nil {
			warn("static dir %q does not exist; assets will 404", cfg.Static.Dir)
		}
	}

	ml, cleanup, err := buildLoader(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	app := featurehub.New(featurehub.Config{
		Loader:        ml,
		Pages:         configPages(cfg.Pages),
		Static:        staticConfig(cfg.Static),
		Manager:       managerConfig(cfg.Loading),
		Metrics:       cfg.Server.Metrics,
		Tracing:       cfg.Server.Tracing,
		RenderTimeout: cfg.Server.RenderTimeout(),
		Logger:        logger,
	})
	defer app.Close()

	// Start fetching every page's module before the first request.
	app.PreloadPages()

	info("pages:    %d", len(cfg.Pages))
	info("sources:  %s", sourceSummary(cfg))
	if cfg.Server.Metrics {
		info("metrics:  http://localhost%s/metrics", cfg.Server.Addr)
	}
	fmt.Println()
	success("Listening on %s", cfg.Server.Addr)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: app}

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		fmt.Println("\n\n  Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return huberrors.FromError(err, "E041")
		}
		return nil
	case err := <-errCh:
		return huberrors.FromError(err, "E040").
			WithSuggestion(fmt.Sprintf("is another process listening on %s?", cfg.Server.Addr))
	}
}

// buildLoader assembles the module source backends into one loader.
// The returned cleanup releases the wasm runtime, if one was started.
func buildLoader(cfg *config.Config, logger *slog.Logger) (featurehub.ModuleLoader, func(), error) {
	cleanup := func() {}

	var decOpts []source.DecoderOption
	if cfg.Wasm.Enabled {
		rt := source.NewWasmRuntime(context.Background(),
			source.WithMemoryPages(uint32(cfg.Wasm.MemoryPages)),
			source.WithWasmLogger(logger),
		)
		cleanup = func() { rt.Close(context.Background()) }
		decOpts = append(decOpts, source.WithWasm(rt))
	}
	dec := source.NewDecoder(decOpts...)

	mux := source.NewMux()

	// http(s) always handles absolute URLs; a base URL additionally
	// lets it resolve relative sources.
	httpOpts := []source.HTTPOption{
		source.WithHTTPClient(&http.Client{Timeout: cfg.Sources.HTTP.Timeout()}),
		source.WithMaxSize(cfg.Sources.MaxModuleBytes),
	}
	if cfg.Sources.HTTP.BaseURL != "" {
		base, err := url.Parse(cfg.Sources.HTTP.BaseURL)
		if err != nil {
			cleanup()
			return nil, nil, huberrors.New("E004").
				WithDetail(fmt.Sprintf("sources.http.base_url %q could not be parsed", cfg.Sources.HTTP.BaseURL)).
				Wrap(err)
		}
		httpOpts = append(httpOpts, source.WithBaseURL(base))
	}
	httpBackend := source.NewHTTP(dec, httpOpts...)
	mux.Handle("http", httpBackend)
	mux.Handle("https", httpBackend)

	// Relative sources go to the file backend when one is configured,
	// otherwise to http resolution against the base URL.
	if cfg.Sources.File.Dir != "" {
		fileBackend := source.NewFile(cfg.Sources.File.Dir, dec,
			source.WithFileMaxSize(cfg.Sources.MaxModuleBytes))
		mux.Fallback(fileBackend)
	} else if cfg.Sources.HTTP.BaseURL != "" {
		mux.Fallback(httpBackend)
	}

	if cfg.Sources.S3.Bucket != "" {
		client := s3.New(s3.Options{
			Region:      cfg.Sources.S3.Region,
			Credentials: s3Credentials(),
		})
		mux.Handle("s3", source.NewS3(client, cfg.Sources.S3.Bucket, dec,
			source.WithS3MaxSize(cfg.Sources.MaxModuleBytes)))
	}

	return mux, cleanup, nil
}

// s3Credentials reads static credentials from the environment, falling
// back to anonymous access for public buckets.
func s3Credentials() aws.CredentialsProvider {
	key := os.Getenv("AWS_ACCESS_KEY_ID")
	if key == "" {
		return aws.AnonymousCredentials{}
	}
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	session := os.Getenv("AWS_SESSION_TOKEN")
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     key,
			SecretAccessKey: secret,
			SessionToken:    session,
			Source:          "environment",
		}, nil
	})
}

// newLogger builds the process logger from the log config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// configPages converts the config page table into the app's.
func configPages(pages []config.PageConfig) []featurehub.Page {
	out := make([]featurehub.Page, len(pages))
	for i, p := range pages {
		sheets := make([]featurehub.Stylesheet, len(p.Stylesheets))
		for j, s := range p.Stylesheets {
			sheets[j] = featurehub.Stylesheet{Href: s.Href, Media: s.Media}
		}
		out[i] = featurehub.Page{
			Path:        p.Path,
			Title:       p.Title,
			Src:         p.Src,
			Key:         p.Key,
			Stylesheets: sheets,
		}
	}
	return out
}

// staticConfig converts the static asset config into the app's.
func staticConfig(cfg config.StaticConfig) featurehub.StaticConfig {
	strategy := featurehub.CacheControlNone
	if cfg.Cache == config.CacheProduction {
		strategy = featurehub.CacheControlProduction
	}
	return featurehub.StaticConfig{
		Dir:          cfg.Dir,
		Prefix:       cfg.Prefix,
		CacheControl: strategy,
		ManifestPath: cfg.Manifest,
	}
}

// managerConfig converts the loading config into the app's.
func managerConfig(cfg config.LoadingConfig) featurehub.ManagerConfig {
	return featurehub.ManagerConfig{
		Timeout:    cfg.Timeout(),
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay(),
	}
}

// sourceSummary names the enabled source backends for startup output.
func sourceSummary(cfg *config.Config) string {
	var parts []string
	if cfg.Sources.File.Dir != "" {
		parts = append(parts, fmt.Sprintf("file (%s)", cfg.Sources.File.Dir))
	}
	if cfg.Sources.HTTP.BaseURL != "" {
		parts = append(parts, fmt.Sprintf("http (%s)", cfg.Sources.HTTP.BaseURL))
	}
	if cfg.Sources.S3.Bucket != "" {
		parts = append(parts, fmt.Sprintf("s3 (%s)", cfg.Sources.S3.Bucket))
	}
	if len(parts) == 0 {
		return "none"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

const pagesExample = `pages:
  - path: /
    title: Home
    src: apps/home.json`

const sourcesExample = `sources:
  file:
    dir: ./apps`
