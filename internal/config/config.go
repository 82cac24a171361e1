package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config is the immutable, validated configuration for a crawl/index/query
// run. It replaces a global mutable settings singleton: every collaborator
// that needs configuration receives a Config value through its constructor.
type Config struct {
	//===============
	// Crawl scope
	//===============
	seedURLs        []url.URL
	acceptedDomains map[string]struct{}

	//===============
	// Limits
	//===============
	// maxLimit bounds both the frontier queue's size and the total number
	// of distinct URLs dequeued for fetching over the run.
	maxLimit  int
	batchSize int

	//===============
	// Fetch
	//===============
	timeout   time.Duration
	userAgent string

	//===============
	// Extraction
	//===============
	skipExtensions map[string]struct{}

	//===============
	// Query
	//===============
	responseSize int
	topKPerTerm  int

	//===============
	// Output
	//===============
	outputDir string

	//===============
	// Shutdown
	//===============
	shutdownTimeout time.Duration
}

type configDTO struct {
	SeedURLs        []string `json:"seedUrls"`
	AcceptedDomains []string `json:"acceptedDomains,omitempty"`
	MaxLimit        int      `json:"maxLimit,omitempty"`
	BatchSize       int      `json:"batchSize,omitempty"`
	Timeout         string   `json:"timeout,omitempty"`
	UserAgent       string   `json:"userAgent,omitempty"`
	SkipExtensions  []string `json:"skipExtensions,omitempty"`
	ResponseSize    int      `json:"responseSize,omitempty"`
	TopKPerTerm     int      `json:"topKPerTerm,omitempty"`
	OutputDir       string   `json:"outputDir,omitempty"`
	ShutdownTimeout string   `json:"shutdownTimeout,omitempty"`
}

// defaultSkipExtensions is the spec's fixed blocklist of link file
// extensions that are never enqueued into the frontier.
var defaultSkipExtensions = []string{
	"css", "js", "png", "jpg", "jpeg", "gif", "svg", "ico",
	"woff", "woff2", "ttf", "pdf",
}

// WithDefault creates a new Config with the provided seed URLs and default
// values for everything else. seedURLs must not be empty; Build() enforces
// this.
func WithDefault(seedURLs []url.URL) *Config {
	return &Config{
		seedURLs:        seedURLs,
		acceptedDomains: map[string]struct{}{},
		maxLimit:        10000,
		batchSize:       20,
		timeout:         10 * time.Second,
		userAgent:       "Mozilla/5.0 (compatible; searchcrawl/1.0; +https://github.com/rohmanhakim/searchcrawl)",
		skipExtensions:  toSet(defaultSkipExtensions),
		responseSize:    10,
		topKPerTerm:      50,
		outputDir:       "output",
		shutdownTimeout: 30 * time.Second,
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func (c *Config) WithSeedURLs(urls []url.URL) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithAcceptedDomains(domains ...string) *Config {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d != "" {
			set[d] = struct{}{}
		}
	}
	c.acceptedDomains = set
	return c
}

func (c *Config) WithMaxLimit(n int) *Config {
	c.maxLimit = n
	return c
}

func (c *Config) WithBatchSize(n int) *Config {
	c.batchSize = n
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.timeout = d
	return c
}

func (c *Config) WithUserAgent(ua string) *Config {
	c.userAgent = ua
	return c
}

func (c *Config) WithSkipExtensions(exts ...string) *Config {
	c.skipExtensions = toSet(exts)
	return c
}

func (c *Config) WithResponseSize(n int) *Config {
	c.responseSize = n
	return c
}

func (c *Config) WithTopKPerTerm(n int) *Config {
	c.topKPerTerm = n
	return c
}

func (c *Config) WithOutputDir(dir string) *Config {
	c.outputDir = dir
	return c
}

func (c *Config) WithShutdownTimeout(d time.Duration) *Config {
	c.shutdownTimeout = d
	return c
}

// Build validates and finalizes the Config. If no accepted domains were
// set, it defaults to the seed URLs' own hostnames.
func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}
	if len(c.acceptedDomains) == 0 {
		c.acceptedDomains = make(map[string]struct{})
		for _, u := range c.seedURLs {
			if u.Host != "" {
				c.acceptedDomains[u.Hostname()] = struct{}{}
			}
		}
	}
	return *c, nil
}

func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto configDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}
	return newConfigFromDTO(dto)
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	seedURLs := make([]url.URL, 0, len(dto.SeedURLs))
	for _, raw := range dto.SeedURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid seed url %q: %s", ErrConfigParsingFail, raw, err)
		}
		seedURLs = append(seedURLs, *u)
	}

	builder := WithDefault(seedURLs)
	if len(dto.AcceptedDomains) > 0 {
		builder = builder.WithAcceptedDomains(dto.AcceptedDomains...)
	}
	if dto.MaxLimit != 0 {
		builder = builder.WithMaxLimit(dto.MaxLimit)
	}
	if dto.BatchSize != 0 {
		builder = builder.WithBatchSize(dto.BatchSize)
	}
	if dto.Timeout != "" {
		d, err := time.ParseDuration(dto.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid timeout %q: %s", ErrConfigParsingFail, dto.Timeout, err)
		}
		builder = builder.WithTimeout(d)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if len(dto.SkipExtensions) > 0 {
		builder = builder.WithSkipExtensions(dto.SkipExtensions...)
	}
	if dto.ResponseSize != 0 {
		builder = builder.WithResponseSize(dto.ResponseSize)
	}
	if dto.TopKPerTerm != 0 {
		builder = builder.WithTopKPerTerm(dto.TopKPerTerm)
	}
	if dto.OutputDir != "" {
		builder = builder.WithOutputDir(dto.OutputDir)
	}
	if dto.ShutdownTimeout != "" {
		d, err := time.ParseDuration(dto.ShutdownTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid shutdownTimeout %q: %s", ErrConfigParsingFail, dto.ShutdownTimeout, err)
		}
		builder = builder.WithShutdownTimeout(d)
	}

	return builder.Build()
}

func (c Config) SeedURLs() []url.URL {
	urls := make([]url.URL, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) AcceptedDomains() map[string]struct{} {
	domains := make(map[string]struct{}, len(c.acceptedDomains))
	for k, v := range c.acceptedDomains {
		domains[k] = v
	}
	return domains
}

func (c Config) MaxLimit() int { return c.maxLimit }

func (c Config) BatchSize() int { return c.batchSize }

func (c Config) Timeout() time.Duration { return c.timeout }

func (c Config) UserAgent() string { return c.userAgent }

func (c Config) SkipExtensions() map[string]struct{} {
	exts := make(map[string]struct{}, len(c.skipExtensions))
	for k, v := range c.skipExtensions {
		exts[k] = v
	}
	return exts
}

func (c Config) ResponseSize() int { return c.responseSize }

func (c Config) TopKPerTerm() int { return c.topKPerTerm }

func (c Config) OutputDir() string { return c.outputDir }

func (c Config) ShutdownTimeout() time.Duration { return c.shutdownTimeout }
