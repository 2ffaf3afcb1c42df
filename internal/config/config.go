// Package config loads and validates vectorkit's server configuration.
// Configuration is layered: hardcoded defaults, then a YAML file, then
// VECTORKIT_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete vectorkit server configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" json:"rate_limit"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Backup     BackupConfig     `yaml:"backup" json:"backup"`
	HTTPServer HTTPServerConfig `yaml:"http_server" json:"http_server"`
	RPCServer  RPCServerConfig  `yaml:"rpc_server" json:"rpc_server"`
	Auth       AuthConfig       `yaml:"auth" json:"auth"`
	ObjectStore ObjectStoreConfig `yaml:"object_store" json:"object_store"`
	Lexical    LexicalConfig    `yaml:"lexical" json:"lexical"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// StorageConfig configures the on-disk dataset storage engine.
type StorageConfig struct {
	// DataDir is the root directory under which every dataset gets its own
	// subdirectory.
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// LockRetries is the number of times to retry acquiring a dataset's
	// write lock before failing the commit.
	LockRetries int `yaml:"lock_retries" json:"lock_retries"`
	// LockRetryBaseDelay is the initial backoff between lock attempts;
	// each retry doubles it.
	LockRetryBaseDelay time.Duration `yaml:"lock_retry_base_delay" json:"lock_retry_base_delay"`
	// HandleCacheSize bounds the number of open dataset handles kept warm.
	HandleCacheSize int `yaml:"handle_cache_size" json:"handle_cache_size"`
}

// IndexConfig configures ANN index selection and build policy.
type IndexConfig struct {
	// AutoSelectThreshold is loaded and validated but not read outside this
	// package; the index package's own row-count thresholds (see
	// index.EffectiveType) decide when HNSW/IVF replaces a flat scan.
	AutoSelectThreshold int `yaml:"auto_select_threshold" json:"auto_select_threshold"`
	// HNSWM is the HNSW graph's per-node connection count (M).
	HNSWM int `yaml:"hnsw_m" json:"hnsw_m"`
	// HNSWEfConstruction is the HNSW build-time candidate list size.
	HNSWEfConstruction int `yaml:"hnsw_ef_construction" json:"hnsw_ef_construction"`
	// HNSWEfSearch is loaded and validated but not read outside this
	// package; HNSW searches use an efSearch of 50 when a request gives none.
	HNSWEfSearch int `yaml:"hnsw_ef_search" json:"hnsw_ef_search"`
	// IVFNlist is the default number of coarse-quantizer clusters.
	IVFNlist int `yaml:"ivf_nlist" json:"ivf_nlist"`
	// IVFNprobe is loaded and validated but not read outside this package;
	// IVF searches probe 10 clusters when a request gives no nprobe.
	IVFNprobe int `yaml:"ivf_nprobe" json:"ivf_nprobe"`
	// RebuildWorkers sets how many goroutines the ingest pipeline uses to
	// validate a batch's rows. It does not bound index rebuilds.
	RebuildWorkers int `yaml:"rebuild_workers" json:"rebuild_workers"`
	// OverscanFactor is loaded and validated (it must be >= 1.0) but not
	// read outside this package; the query engine multiplies k by its own
	// fixed factor of 10 when retrieving candidates ahead of post-filtering.
	OverscanFactor float64 `yaml:"overscan_factor" json:"overscan_factor"`
}

// RateLimitConfig configures the default per-tenant rate limiting strategy.
type RateLimitConfig struct {
	Strategy          string        `yaml:"strategy" json:"strategy"` // sliding_window|fixed_window|token_bucket|leaky_bucket
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
	BucketCapacity    int           `yaml:"bucket_capacity" json:"bucket_capacity"`
	RefillPerSecond   float64       `yaml:"refill_per_second" json:"refill_per_second"`
	// OperationLimits caps specific operations (by ratelimit.Operation name,
	// e.g. "search", "batch_insert") to a fixed requests-per-minute ceiling,
	// checked before the general strategy quota above.
	OperationLimits map[string]int `yaml:"operation_limits" json:"operation_limits"`
}

// CacheConfig configures the result/metadata cache.
type CacheConfig struct {
	Backend          string        `yaml:"backend" json:"backend"` // lru|kv
	LRUSize          int           `yaml:"lru_size" json:"lru_size"`
	DatasetTTL       time.Duration `yaml:"dataset_ttl" json:"dataset_ttl"`
	SearchResultTTL  time.Duration `yaml:"search_result_ttl" json:"search_result_ttl"`
	VectorRecordTTL  time.Duration `yaml:"vector_record_ttl" json:"vector_record_ttl"`
	EmbeddingTTL     time.Duration `yaml:"embedding_ttl" json:"embedding_ttl"`
}

// BackupConfig configures the backup engine and its retention policy.
type BackupConfig struct {
	Dir             string        `yaml:"dir" json:"dir"`
	RetentionCount  int           `yaml:"retention_count" json:"retention_count"`
	RetentionMaxAge time.Duration `yaml:"retention_max_age" json:"retention_max_age"`
}

// HTTPServerConfig configures the chi-based HTTP/JSON API.
type HTTPServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins" json:"cors_origins"`
}

// RPCServerConfig configures the gRPC API.
type RPCServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// AuthConfig configures tenant authentication.
type AuthConfig struct {
	// Mode names the authentication scheme, "api_key" or "bearer". Only
	// Validate reads it; the serve command selects the authenticator from
	// its own flags.
	Mode string `yaml:"mode" json:"mode"`
}

// ObjectStoreConfig configures where backup archives are uploaded.
type ObjectStoreConfig struct {
	// Backend must be "local" or "env" to pass Validate. The commands do not
	// read it: they always build the local filesystem ObjectStore from URI.
	Backend string `yaml:"backend" json:"backend"`
	URI     string `yaml:"uri" json:"uri"`
}

// LexicalConfig configures persistence of the TF-IDF text index.
type LexicalConfig struct {
	// PersistPath is the sqlite database file holding the lexical document
	// corpus; postings are always built in memory from that corpus.
	// Empty disables persistence: indexes are rebuilt in memory on first
	// search after every process restart.
	PersistPath string `yaml:"persist_path" json:"persist_path"`
}

// envPrefix is the prefix for all environment variable overrides.
const envPrefix = "VECTORKIT_"

// New returns a Config populated with sensible defaults.
func New() *Config {
	home, err := os.UserHomeDir()
	base := filepath.Join(os.TempDir(), ".vectorkit")
	if err == nil {
		base = filepath.Join(home, ".vectorkit")
	}

	return &Config{
		Storage: StorageConfig{
			DataDir:            filepath.Join(base, "data"),
			LockRetries:        5,
			LockRetryBaseDelay: 200 * time.Millisecond,
			HandleCacheSize:    64,
		},
		Index: IndexConfig{
			AutoSelectThreshold: 10000,
			HNSWM:               16,
			HNSWEfConstruction:  200,
			HNSWEfSearch:        64,
			IVFNlist:            100,
			IVFNprobe:           8,
			RebuildWorkers:      runtime.NumCPU(),
			OverscanFactor:      2.0,
		},
		RateLimit: RateLimitConfig{
			Strategy:          "sliding_window",
			RequestsPerWindow: 1000,
			Window:            time.Minute,
			BucketCapacity:    1000,
			RefillPerSecond:   16.6,
			OperationLimits: map[string]int{
				"search":         100,
				"hybrid_search":  100,
				"batch_insert":   1000,
				"create_dataset": 10,
				"import":         5,
				"export":         10,
			},
		},
		Cache: CacheConfig{
			Backend:         "lru",
			LRUSize:         10000,
			DatasetTTL:      5 * time.Minute,
			SearchResultTTL: 30 * time.Second,
			VectorRecordTTL: 2 * time.Minute,
			EmbeddingTTL:    time.Hour,
		},
		Backup: BackupConfig{
			Dir:             filepath.Join(base, "backups"),
			RetentionCount:  7,
			RetentionMaxAge: 30 * 24 * time.Hour,
		},
		HTTPServer: HTTPServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		RPCServer: RPCServerConfig{
			Addr: ":9090",
		},
		Auth: AuthConfig{
			Mode: "api_key",
		},
		ObjectStore: ObjectStoreConfig{
			Backend: "local",
			URI:     filepath.Join(base, "backups", "remote"),
		},
		Lexical: LexicalConfig{
			PersistPath: filepath.Join(base, "lexical.db"),
		},
		LogLevel: "info",
	}
}

// Load reads the YAML config at path (if it exists) over top of defaults,
// applies VECTORKIT_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero values from other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Storage.DataDir != "" {
		c.Storage.DataDir = other.Storage.DataDir
	}
	if other.Storage.LockRetries != 0 {
		c.Storage.LockRetries = other.Storage.LockRetries
	}
	if other.Storage.LockRetryBaseDelay != 0 {
		c.Storage.LockRetryBaseDelay = other.Storage.LockRetryBaseDelay
	}
	if other.Storage.HandleCacheSize != 0 {
		c.Storage.HandleCacheSize = other.Storage.HandleCacheSize
	}

	if other.Index.AutoSelectThreshold != 0 {
		c.Index.AutoSelectThreshold = other.Index.AutoSelectThreshold
	}
	if other.Index.HNSWM != 0 {
		c.Index.HNSWM = other.Index.HNSWM
	}
	if other.Index.HNSWEfConstruction != 0 {
		c.Index.HNSWEfConstruction = other.Index.HNSWEfConstruction
	}
	if other.Index.HNSWEfSearch != 0 {
		c.Index.HNSWEfSearch = other.Index.HNSWEfSearch
	}
	if other.Index.IVFNlist != 0 {
		c.Index.IVFNlist = other.Index.IVFNlist
	}
	if other.Index.IVFNprobe != 0 {
		c.Index.IVFNprobe = other.Index.IVFNprobe
	}
	if other.Index.RebuildWorkers != 0 {
		c.Index.RebuildWorkers = other.Index.RebuildWorkers
	}
	if other.Index.OverscanFactor != 0 {
		c.Index.OverscanFactor = other.Index.OverscanFactor
	}

	if other.RateLimit.Strategy != "" {
		c.RateLimit.Strategy = other.RateLimit.Strategy
	}
	if other.RateLimit.RequestsPerWindow != 0 {
		c.RateLimit.RequestsPerWindow = other.RateLimit.RequestsPerWindow
	}
	if other.RateLimit.Window != 0 {
		c.RateLimit.Window = other.RateLimit.Window
	}
	if other.RateLimit.BucketCapacity != 0 {
		c.RateLimit.BucketCapacity = other.RateLimit.BucketCapacity
	}
	if other.RateLimit.RefillPerSecond != 0 {
		c.RateLimit.RefillPerSecond = other.RateLimit.RefillPerSecond
	}
	for op, limit := range other.RateLimit.OperationLimits {
		if c.RateLimit.OperationLimits == nil {
			c.RateLimit.OperationLimits = make(map[string]int, len(other.RateLimit.OperationLimits))
		}
		c.RateLimit.OperationLimits[op] = limit
	}

	if other.Cache.Backend != "" {
		c.Cache.Backend = other.Cache.Backend
	}
	if other.Cache.LRUSize != 0 {
		c.Cache.LRUSize = other.Cache.LRUSize
	}
	if other.Cache.DatasetTTL != 0 {
		c.Cache.DatasetTTL = other.Cache.DatasetTTL
	}
	if other.Cache.SearchResultTTL != 0 {
		c.Cache.SearchResultTTL = other.Cache.SearchResultTTL
	}
	if other.Cache.VectorRecordTTL != 0 {
		c.Cache.VectorRecordTTL = other.Cache.VectorRecordTTL
	}
	if other.Cache.EmbeddingTTL != 0 {
		c.Cache.EmbeddingTTL = other.Cache.EmbeddingTTL
	}

	if other.Backup.Dir != "" {
		c.Backup.Dir = other.Backup.Dir
	}
	if other.Backup.RetentionCount != 0 {
		c.Backup.RetentionCount = other.Backup.RetentionCount
	}
	if other.Backup.RetentionMaxAge != 0 {
		c.Backup.RetentionMaxAge = other.Backup.RetentionMaxAge
	}

	if other.HTTPServer.Addr != "" {
		c.HTTPServer.Addr = other.HTTPServer.Addr
	}
	if other.HTTPServer.ReadTimeout != 0 {
		c.HTTPServer.ReadTimeout = other.HTTPServer.ReadTimeout
	}
	if other.HTTPServer.WriteTimeout != 0 {
		c.HTTPServer.WriteTimeout = other.HTTPServer.WriteTimeout
	}
	if other.HTTPServer.ShutdownTimeout != 0 {
		c.HTTPServer.ShutdownTimeout = other.HTTPServer.ShutdownTimeout
	}
	if len(other.HTTPServer.CORSOrigins) > 0 {
		c.HTTPServer.CORSOrigins = other.HTTPServer.CORSOrigins
	}

	if other.RPCServer.Addr != "" {
		c.RPCServer.Addr = other.RPCServer.Addr
	}

	if other.Auth.Mode != "" {
		c.Auth.Mode = other.Auth.Mode
	}

	if other.ObjectStore.Backend != "" {
		c.ObjectStore.Backend = other.ObjectStore.Backend
	}
	if other.ObjectStore.URI != "" {
		c.ObjectStore.URI = other.ObjectStore.URI
	}

	if other.Lexical.PersistPath != "" {
		c.Lexical.PersistPath = other.Lexical.PersistPath
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies VECTORKIT_* environment variable overrides,
// the highest-precedence configuration layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(envPrefix + "DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv(envPrefix + "HANDLE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.HandleCacheSize = n
		}
	}

	if v := os.Getenv(envPrefix + "INDEX_AUTO_SELECT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Index.AutoSelectThreshold = n
		}
	}
	if v := os.Getenv(envPrefix + "HNSW_EF_SEARCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Index.HNSWEfSearch = n
		}
	}
	if v := os.Getenv(envPrefix + "OVERSCAN_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Index.OverscanFactor = f
		}
	}

	if v := os.Getenv(envPrefix + "RATE_LIMIT_STRATEGY"); v != "" {
		c.RateLimit.Strategy = v
	}
	if v := os.Getenv(envPrefix + "RATE_LIMIT_REQUESTS_PER_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.RequestsPerWindow = n
		}
	}

	if v := os.Getenv(envPrefix + "CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}

	if v := os.Getenv(envPrefix + "BACKUP_DIR"); v != "" {
		c.Backup.Dir = v
	}

	if v := os.Getenv(envPrefix + "HTTP_ADDR"); v != "" {
		c.HTTPServer.Addr = v
	}
	if v := os.Getenv(envPrefix + "RPC_ADDR"); v != "" {
		c.RPCServer.Addr = v
	}

	if v := os.Getenv(envPrefix + "AUTH_MODE"); v != "" {
		c.Auth.Mode = v
	}

	if v := os.Getenv(envPrefix + "OBJECT_STORE_BACKEND"); v != "" {
		c.ObjectStore.Backend = v
	}
	if v := os.Getenv(envPrefix + "OBJECT_STORE_URI"); v != "" {
		c.ObjectStore.URI = v
	}

	if v := os.Getenv(envPrefix + "LEXICAL_PERSIST_PATH"); v != "" {
		c.Lexical.PersistPath = v
	}

	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	if c.Storage.LockRetries < 1 {
		return fmt.Errorf("storage.lock_retries must be at least 1, got %d", c.Storage.LockRetries)
	}

	if c.Index.AutoSelectThreshold < 0 {
		return fmt.Errorf("index.auto_select_threshold must be non-negative, got %d", c.Index.AutoSelectThreshold)
	}
	if c.Index.OverscanFactor < 1.0 {
		return fmt.Errorf("index.overscan_factor must be >= 1.0, got %f", c.Index.OverscanFactor)
	}
	if c.Index.IVFNprobe > c.Index.IVFNlist {
		return fmt.Errorf("index.ivf_nprobe (%d) must not exceed index.ivf_nlist (%d)", c.Index.IVFNprobe, c.Index.IVFNlist)
	}

	validStrategies := map[string]bool{"sliding_window": true, "fixed_window": true, "token_bucket": true, "leaky_bucket": true}
	if !validStrategies[strings.ToLower(c.RateLimit.Strategy)] {
		return fmt.Errorf("rate_limit.strategy must be one of sliding_window, fixed_window, token_bucket, leaky_bucket, got %s", c.RateLimit.Strategy)
	}
	if c.RateLimit.RequestsPerWindow < 0 {
		return fmt.Errorf("rate_limit.requests_per_window must be non-negative, got %d", c.RateLimit.RequestsPerWindow)
	}
	for op, limit := range c.RateLimit.OperationLimits {
		if limit < 0 {
			return fmt.Errorf("rate_limit.operation_limits[%s] must be non-negative, got %d", op, limit)
		}
	}

	validCacheBackends := map[string]bool{"lru": true, "kv": true}
	if !validCacheBackends[strings.ToLower(c.Cache.Backend)] {
		return fmt.Errorf("cache.backend must be 'lru' or 'kv', got %s", c.Cache.Backend)
	}

	if c.Backup.RetentionCount < 0 {
		return fmt.Errorf("backup.retention_count must be non-negative, got %d", c.Backup.RetentionCount)
	}

	validAuthModes := map[string]bool{"api_key": true, "bearer": true}
	if !validAuthModes[strings.ToLower(c.Auth.Mode)] {
		return fmt.Errorf("auth.mode must be 'api_key' or 'bearer', got %s", c.Auth.Mode)
	}

	validObjectStoreBackends := map[string]bool{"local": true, "env": true}
	if !validObjectStoreBackends[strings.ToLower(c.ObjectStore.Backend)] {
		return fmt.Errorf("object_store.backend must be 'local' or 'env', got %s", c.ObjectStore.Backend)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file at path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
