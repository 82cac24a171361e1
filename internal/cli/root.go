package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/config"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/pipeline"
	"github.com/rohmanhakim/searchcrawl/internal/server"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	seedURLs        []string
	acceptedDomains []string
	maxLimit        int
	batchSize       int
	outputDir       string
	userAgent       string
	timeout         time.Duration
	shutdownTimeout time.Duration
	skipExtensions  []string
	responseSize    int
	topKPerTerm     int
	listenAddr      string
	logPath         string
)

// parseSeedURLs converts a string slice of URLs to []url.URL
func parseSeedURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("seed URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing seed URL %s: %w", urlStr, err)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "searchcrawl",
	Short: "A local-only crawl/index/search engine.",
	Long: `searchcrawl crawls a set of seed websites, builds a weighted
inverted index over the pages it fetches, and serves it behind a small
HTTP search front end.

The crawl and the index build concurrently: the crawler streams every
fetched page onto a bounded queue, and the indexer drains that queue as
pages arrive, so the search endpoint starts answering queries against
whatever has been indexed so far well before the crawl finishes.

Run "searchcrawl serve" to start crawling and serving.`,
}

// serveCmd runs the crawl/index pipeline and serves search over HTTP until
// SIGINT/SIGTERM (or an HTTP server error); the server keeps answering
// queries after the crawl finishes. It is the only subcommand: everything
// the root's Long description promises lives here.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Crawl the seed URLs, build the index, and serve search over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(seedURLs) == 0 {
			return fmt.Errorf("--seed-url is required: provide at least one seed URL to start crawling")
		}

		parsedURLs, err := parseSeedURLs(seedURLs)
		if err != nil {
			return err
		}

		cfg, err := InitConfigWithError(parsedURLs)
		if err != nil {
			return err
		}

		metadataSink := metadata.NewRecorder(metadata.RecorderOptions{
			LogPath: logPath,
			Console: true,
		})

		p := pipeline.New(cfg, metadataSink)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		crawlDone := make(chan struct{})
		go func() {
			p.Run(ctx)
			close(crawlDone)
		}()

		srv := server.New(p.Indexer(), metadataSink, cfg.ResponseSize(), cfg.TopKPerTerm())
		httpServer := &http.Server{
			Addr:    listenAddr,
			Handler: srv.Handler(),
		}

		serveErr := make(chan error, 1)
		go func() {
			fmt.Printf("listening on %s\n", listenAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serveErr <- err
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			return fmt.Errorf("http server error: %w", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "error shutting down http server: %s\n", err)
		}

		select {
		case <-crawlDone:
		case <-shutdownCtx.Done():
			fmt.Fprintf(os.Stderr, "shutdown timeout reached before the crawl and index drained\n")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more starting URLs (can be repeated)")
	rootCmd.PersistentFlags().StringArrayVar(&acceptedDomains, "accepted-domain", []string{}, "hostname allowlist for links discovered during crawling (defaults to seed hosts)")
	rootCmd.PersistentFlags().IntVar(&maxLimit, "max-limit", 0, "maximum number of distinct URLs fetched per crawl, also the frontier queue capacity (0 keeps the default)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0, "number of URLs fetched concurrently per frontier batch (0 keeps the default)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "output", "root output directory for the index, doc store, page log, and markdown snapshots")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-request HTTP fetch timeout (0 keeps the default)")
	rootCmd.PersistentFlags().DurationVar(&shutdownTimeout, "shutdown-timeout", 0, "time budget for draining in-flight work on shutdown (0 keeps the default)")
	rootCmd.PersistentFlags().StringArrayVar(&skipExtensions, "skip-extension", []string{}, "link file extensions never enqueued (defaults to the built-in asset blocklist)")
	rootCmd.PersistentFlags().IntVar(&responseSize, "response-size", 0, "maximum number of results returned per query (0 keeps the default)")
	rootCmd.PersistentFlags().IntVar(&topKPerTerm, "top-k-per-term", 0, "postings considered per term during OR backfill (0 keeps the default)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen-addr", ":8080", "address the HTTP search front end listens on")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "rotated metadata log file path (empty disables file logging)")

	rootCmd.AddCommand(serveCmd)
}

// InitConfigWithError reads a config file if one is given, or otherwise
// builds a Config from CLI flags, returning any errors. seedUrls is a
// mandatory parameter and must contain at least one valid URL.
func InitConfigWithError(seedUrls []url.URL) (config.Config, error) {
	if len(seedUrls) == 0 {
		return config.Config{}, fmt.Errorf("%w: seedUrls cannot be empty", config.ErrInvalidConfig)
	}

	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault(seedUrls)

	if len(acceptedDomains) > 0 {
		configBuilder = configBuilder.WithAcceptedDomains(acceptedDomains...)
	}
	if maxLimit > 0 {
		configBuilder = configBuilder.WithMaxLimit(maxLimit)
	}
	if batchSize > 0 {
		configBuilder = configBuilder.WithBatchSize(batchSize)
	}
	if outputDir != "" && outputDir != "output" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if shutdownTimeout > 0 {
		configBuilder = configBuilder.WithShutdownTimeout(shutdownTimeout)
	}
	if len(skipExtensions) > 0 {
		configBuilder = configBuilder.WithSkipExtensions(skipExtensions...)
	}
	if responseSize > 0 {
		configBuilder = configBuilder.WithResponseSize(responseSize)
	}
	if topKPerTerm > 0 {
		configBuilder = configBuilder.WithTopKPerTerm(topKPerTerm)
	}

	return configBuilder.Build()
}

// ResetFlags restores every package-level flag variable to its zero value,
// except listenAddr, which goes back to its ":8080" default. Tests call this between cases since cobra flag vars are package globals.
func ResetFlags() {
	cfgFile = ""
	seedURLs = []string{}
	acceptedDomains = []string{}
	maxLimit = 0
	batchSize = 0
	outputDir = ""
	userAgent = ""
	timeout = 0
	shutdownTimeout = 0
	skipExtensions = []string{}
	responseSize = 0
	topKPerTerm = 0
	listenAddr = ":8080"
	logPath = ""
}

// Test helper functions to set flag values from tests.

func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSeedURLsForTest(urls []string) {
	seedURLs = urls
}

func SetAcceptedDomainsForTest(domains []string) {
	acceptedDomains = domains
}

func SetMaxLimitForTest(n int) {
	maxLimit = n
}

func SetBatchSizeForTest(n int) {
	batchSize = n
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetTimeoutForTest(d time.Duration) {
	timeout = d
}

func SetShutdownTimeoutForTest(d time.Duration) {
	shutdownTimeout = d
}

func SetSkipExtensionsForTest(exts []string) {
	skipExtensions = exts
}

func SetResponseSizeForTest(n int) {
	responseSize = n
}

func SetTopKPerTermForTest(n int) {
	topKPerTerm = n
}
