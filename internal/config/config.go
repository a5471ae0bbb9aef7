package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/router"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "spanav.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultRoot is the CSS selector of the element views render into.
	DefaultRoot = "#app"

	// DefaultS3Prefix is the key prefix of archived page views.
	DefaultS3Prefix = "pageviews/"

	// DefaultFlushInterval is how often archived page views are written.
	DefaultFlushInterval = "1m"

	// DefaultMaxBatch is the number of page views that forces a flush.
	DefaultMaxBatch = 500

	// DefaultMaxPending is the number of buffered page views kept while S3 is
	// unreachable. Older ones are dropped.
	DefaultMaxPending = 10000

	// DefaultNamespace is the Prometheus namespace of page view metrics.
	DefaultNamespace = "spanav"
)

// Config represents the complete spanav.json configuration.
type Config struct {
	// Name is the application name.
	Name string `json:"name,omitempty"`

	// BaseRoutes are the prefixes the application is mounted under.
	// Empty means the root base route "/".
	BaseRoutes []string `json:"baseRoutes,omitempty"`

	// Routes are the route table, in matching order.
	Routes []RouteConfig `json:"routes"`

	// Matching selects stricter matching rules.
	Matching MatchingConfig `json:"matching,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Analytics configures where page views are reported.
	Analytics AnalyticsConfig `json:"analytics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig declares one route.
type RouteConfig struct {
	// Pattern is the route key, e.g. "{accountNumber}/order/{orderNumber}".
	Pattern string `json:"pattern"`

	// View is an html/template rendered when the route is active. It is
	// executed with .Vars, .Query and .Route.
	View string `json:"view,omitempty"`

	// Title is shown by "spanav routes".
	Title string `json:"title,omitempty"`
}

// MatchingConfig contains route matching options.
type MatchingConfig struct {
	// AnchoredBase strips base routes only at the start of the path.
	AnchoredBase bool `json:"anchoredBase,omitempty"`

	// StrictSegmentCount requires paths and routes to have equal length.
	StrictSegmentCount bool `json:"strictSegmentCount,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Root is the CSS selector of the element views render into.
	Root string `json:"root,omitempty"`

	// Title is the document title of the application shell.
	Title string `json:"title,omitempty"`

	// AllowedOrigins are extra origins allowed to open the bridge socket.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// AnalyticsConfig contains page view reporting settings.
type AnalyticsConfig struct {
	// Log writes every page view to the log.
	Log bool `json:"log,omitempty"`

	// Prometheus counts page views per route.
	Prometheus PrometheusConfig `json:"prometheus,omitempty"`

	// S3 archives page views as JSON lines.
	S3 S3Config `json:"s3,omitempty"`
}

// PrometheusConfig contains page view metric settings.
type PrometheusConfig struct {
	// Enabled registers the page view counter and serves /metrics.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metric namespace.
	Namespace string `json:"namespace,omitempty"`
}

// S3Config contains page view archive settings. The archive is enabled when
// Bucket is set.
type S3Config struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the region from the AWS environment.
	Region string `json:"region,omitempty"`

	// FlushInterval is a Go duration, e.g. "30s".
	FlushInterval string `json:"flushInterval,omitempty"`

	// MaxBatch forces a flush once this many page views are buffered.
	MaxBatch int `json:"maxBatch,omitempty"`

	// MaxPending caps the buffer; the oldest page views are dropped beyond it.
	MaxPending int `json:"maxPending,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Dev: DevConfig{
			Port: DefaultPort,
			Host: DefaultHost,
			Root: DefaultRoot,
		},
		Analytics: AnalyticsConfig{
			Prometheus: PrometheusConfig{
				Namespace: DefaultNamespace,
			},
			S3: S3Config{
				Prefix:        DefaultS3Prefix,
				FlushInterval: DefaultFlushInterval,
				MaxBatch:      DefaultMaxBatch,
				MaxPending:    DefaultMaxPending,
			},
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for spanav.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("N141").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("N120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("N120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
		if offset, ok := jsonErrorOffset(err); ok {
			line, col := position(data, offset)
			e.WithLocation(path, line, col)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// jsonErrorOffset returns the byte offset a decoding error points at.
func jsonErrorOffset(err error) (int64, bool) {
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return syntaxErr.Offset, true
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return typeErr.Offset, true
	}
	return 0, false
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	if col > 1 {
		// Offset is just past the offending byte.
		col--
	}
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("N120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("N120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Dev
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Root == "" {
		c.Dev.Root = DefaultRoot
	}
	if c.Dev.Title == "" {
		c.Dev.Title = c.Name
	}

	// Analytics
	if c.Analytics.Prometheus.Namespace == "" {
		c.Analytics.Prometheus.Namespace = DefaultNamespace
	}
	if c.Analytics.S3.Prefix == "" {
		c.Analytics.S3.Prefix = DefaultS3Prefix
	}
	if c.Analytics.S3.FlushInterval == "" {
		c.Analytics.S3.FlushInterval = DefaultFlushInterval
	}
	if c.Analytics.S3.MaxBatch == 0 {
		c.Analytics.S3.MaxBatch = DefaultMaxBatch
	}
	if c.Analytics.S3.MaxPending == 0 {
		c.Analytics.S3.MaxPending = DefaultMaxPending
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("N121").
			WithDetail("Port must be between 0 and 65535")
	}

	if len(c.Routes) == 0 {
		return errors.New("N123")
	}

	seen := make(map[string]bool, len(c.Routes))
	for i, r := range c.Routes {
		if seen[r.Pattern] {
			return errors.New("N100").
				WithDetailf("routes[%d]: %q is declared more than once", i, r.Pattern).
				Wrap(router.ErrDuplicateRoute)
		}
		seen[r.Pattern] = true

		if _, err := template.New(r.Pattern).Parse(r.View); err != nil {
			return errors.New("N101").
				WithDetailf("routes[%d] (%q): %v", i, r.Pattern, err).
				Wrap(err)
		}
	}

	if c.Analytics.S3.Bucket != "" {
		d, err := time.ParseDuration(c.Analytics.S3.FlushInterval)
		if err != nil || d <= 0 {
			return errors.New("N122").
				WithDetailf("analytics.s3.flushInterval %q is not a positive duration", c.Analytics.S3.FlushInterval)
		}
		if c.Analytics.S3.MaxBatch < 0 {
			return errors.New("N122").
				WithDetail("analytics.s3.maxBatch must not be negative")
		}
		if c.Analytics.S3.MaxPending < c.Analytics.S3.MaxBatch {
			return errors.New("N122").
				WithDetailf("analytics.s3.maxPending (%d) must be at least maxBatch (%d)",
					c.Analytics.S3.MaxPending, c.Analytics.S3.MaxBatch)
		}
	}

	return nil
}

// BaseRouteSet returns the configured base routes, lowercased.
func (c *Config) BaseRouteSet() router.BaseRoutes {
	return router.NewBaseRoutes(c.BaseRoutes...)
}

// RouterOptions returns the table options selected by Matching.
func (c *Config) RouterOptions() []router.Option {
	var opts []router.Option
	if c.Matching.AnchoredBase {
		opts = append(opts, router.WithAnchoredBase())
	}
	if c.Matching.StrictSegmentCount {
		opts = append(opts, router.WithStrictSegmentCount())
	}
	return opts
}

// FlushInterval returns the parsed S3 flush interval.
func (c *Config) FlushInterval() time.Duration {
	d, err := time.ParseDuration(c.Analytics.S3.FlushInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultFlushInterval)
	}
	return d
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing spanav.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("N141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent holding spanav.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
