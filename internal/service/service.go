// Package service wires every engine component (storage, index registry,
// query engine, ingest pipeline, rate limiter, cache, job manager, backup
// engine, tenant registry) into the single facade the HTTP and RPC
// surfaces call through. All state is held on the Service value and
// passed explicitly; nothing here is a package-level global.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vectorkit/vectorkit/internal/backup"
	"github.com/vectorkit/vectorkit/internal/cache"
	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/index"
	"github.com/vectorkit/vectorkit/internal/ingest"
	"github.com/vectorkit/vectorkit/internal/job"
	"github.com/vectorkit/vectorkit/internal/kvclient"
	"github.com/vectorkit/vectorkit/internal/lexical"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/query"
	"github.com/vectorkit/vectorkit/internal/ratelimit"
	"github.com/vectorkit/vectorkit/internal/storage"
	"github.com/vectorkit/vectorkit/internal/tenant"
)

// Service is the process-wide facade over every vectorkit component.
type Service struct {
	cfg *config.Config

	storage  *storage.Engine
	indexes  *index.Registry
	query    *query.Engine
	ingest   *ingest.Pipeline
	limiter  *ratelimit.Limiter
	cache    *cache.Cache
	kv       *kvclient.Client
	jobs     *job.Manager
	backups  *backup.Engine
	objects  backup.ObjectStore
	tenants  *tenant.Registry
	logger   *slog.Logger

	mu           sync.Mutex
	lexical      map[string]lexical.Index // datasetID -> built lexical index, built lazily on first text/hybrid search
	lexicalStore *lexical.SQLiteStore     // optional durable corpus backing lexical rebuilds, nil if unconfigured

	readHandles *lru.Cache[string, *storage.Handle]
}

// New builds a Service from cfg, standing up every subsystem. objectStore
// may be nil (local filesystem default is wired by callers that pass
// backup.NewLocalObjectStore); kvBackend may be nil, which permanently
// degrades caching and rate-limit state to single-node, in-process mode.
func New(cfg *config.Config, kvBackend kvclient.Backend, objectStore backup.ObjectStore, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	storageEngine, err := storage.NewEngine(cfg.Storage.DataDir, cfg.Storage.LockRetries, cfg.Storage.LockRetryBaseDelay)
	if err != nil {
		return nil, err
	}

	indexes := index.NewRegistry()
	jobs := job.NewManager()
	kv := kvclient.New(kvBackend, logger)

	var cacheBackend cache.Backend
	if cfg.Cache.Backend == "kv" {
		cacheBackend = cache.NewRemoteBackend(kv)
	} else {
		lruBackend, err := cache.NewLRUBackend(cfg.Cache.LRUSize)
		if err != nil {
			return nil, err
		}
		cacheBackend = lruBackend
	}

	handleCacheSize := cfg.Storage.HandleCacheSize
	if handleCacheSize <= 0 {
		handleCacheSize = 64
	}
	readHandles, err := lru.NewWithEvict[string, *storage.Handle](handleCacheSize, func(_ string, h *storage.Handle) {
		h.Close()
	})
	if err != nil {
		return nil, err
	}

	var lexicalStore *lexical.SQLiteStore
	if cfg.Lexical.PersistPath != "" {
		lexicalStore, err = lexical.OpenSQLiteStore(cfg.Lexical.PersistPath)
		if err != nil {
			return nil, err
		}
	}

	s := &Service{
		cfg:         cfg,
		storage:     storageEngine,
		indexes:     indexes,
		query:       query.NewEngine(indexes),
		limiter:     ratelimit.NewLimiter(ratelimit.Strategy(cfg.RateLimit.Strategy), kv),
		cache:       cache.New(cacheBackend),
		kv:          kv,
		jobs:        jobs,
		tenants:     tenant.NewRegistry(),
		logger:       logger,
		lexical:      make(map[string]lexical.Index),
		lexicalStore: lexicalStore,
		readHandles:  readHandles,
	}
	s.ingest = ingest.NewPipeline(cfg.Index.RebuildWorkers, &jobRebuildTrigger{s: s}, logger)
	s.backups = backup.New(storageEngine, indexes, objectStore, logger)
	s.objects = objectStore
	return s, nil
}

// jobRebuildTrigger bridges ingest's fire-and-forget rebuild signal to a
// tracked background job, so an automatic index promotion (e.g. Flat to
// IVF at 10k rows) is visible the same way an explicit rebuild request is.
type jobRebuildTrigger struct {
	s *Service
}

func (t *jobRebuildTrigger) ScheduleRebuild(datasetID string, declared model.IndexType, vectorCount int) {
	t.s.jobs.Start(context.Background(), model.JobKindIndexBuild, "", func(ctx context.Context, report func(model.JobProgress)) error {
		h, err := t.s.openRead(datasetID)
		if err != nil {
			return err
		}
		rows, err := rowsForIndex(h)
		if err != nil {
			return err
		}
		_, err = t.s.indexes.Build(ctx, index.BuildRequest{
			DatasetID: datasetID,
			Declared:  declared,
			Rows:      rows,
			Config: index.BuildConfig{
				Metric:         h.Dataset().Metric,
				M:              t.s.cfg.Index.HNSWM,
				EfConstruction: t.s.cfg.Index.HNSWEfConstruction,
				Nlist:          t.s.cfg.Index.IVFNlist,
			},
			ForceRebuild: true,
		})
		report(model.JobProgress{Total: vectorCount, Processed: vectorCount, Succeeded: vectorCount})
		return err
	})
}

// Close releases every handle held warm in the read cache and the
// lexical persistence store, if configured.
func (s *Service) Close() {
	s.readHandles.Purge()
	if s.lexicalStore != nil {
		s.lexicalStore.Close()
	}
}

// Config returns the service's configuration.
func (s *Service) Config() *config.Config { return s.cfg }

func bgCtx() context.Context { return context.Background() }

func (s *Service) dropLexical(datasetID string) {
	s.mu.Lock()
	delete(s.lexical, datasetID)
	s.mu.Unlock()
	if s.lexicalStore != nil {
		s.lexicalStore.Delete(bgCtx(), datasetID)
	}
}

func (s *Service) openRead(datasetID string) (*storage.Handle, error) {
	if h, ok := s.readHandles.Get(datasetID); ok {
		return h, nil
	}
	h, err := s.storage.Open(datasetID, storage.ReadOnly)
	if err != nil {
		return nil, err
	}
	s.readHandles.Add(datasetID, h)
	return h, nil
}

func (s *Service) invalidateRead(datasetID string) {
	s.readHandles.Remove(datasetID)
}

// Tenants returns the service's tenant registry, for admin surfaces that
// need to read or adjust per-tenant rate-limit overrides directly.
func (s *Service) Tenants() *tenant.Registry {
	return s.tenants
}

// defaultQuota returns the effective ratelimit.Quota for a tenant and
// operation, applying any tenant-specific override over the config
// defaults.
func (s *Service) defaultQuota(tenantID string, op ratelimit.Operation) ratelimit.Quota {
	base := ratelimit.Quota{
		PerMinute: s.cfg.RateLimit.RequestsPerWindow,
		PerHour:   s.cfg.RateLimit.RequestsPerWindow * 60,
		PerDay:    s.cfg.RateLimit.RequestsPerWindow * 60 * 24,
		Burst:     s.cfg.RateLimit.BucketCapacity,
	}
	override, ok := s.tenants.RateLimitOverrideFor(tenantID, string(op))
	if !ok {
		return base
	}
	if override.PerMinute > 0 {
		base.PerMinute = override.PerMinute
	}
	if override.PerHour > 0 {
		base.PerHour = override.PerHour
	}
	if override.PerDay > 0 {
		base.PerDay = override.PerDay
	}
	if override.Burst > 0 {
		base.Burst = override.Burst
	}
	return base
}

// CheckRateLimit enforces tenantID's quota for op, returning a
// RateLimitExceeded apperror when the request must be denied. The
// operation's fixed per-minute cap (if configured) is checked first,
// ahead of the tenant's general strategy-based quota.
func (s *Service) CheckRateLimit(ctx context.Context, tenantID string, op ratelimit.Operation) (ratelimit.Decision, error) {
	now := time.Now().UTC()
	cost := ratelimit.DefaultCost(op)

	if capLimit, ok := s.cfg.RateLimit.OperationLimits[string(op)]; ok {
		if decision, err := s.limiter.CheckOperationCap(ctx, tenantID, op, capLimit, cost, now); err != nil {
			return decision, err
		}
	}

	quota := s.defaultQuota(tenantID, op)
	return s.limiter.Check(ctx, tenantID, op, quota, cost, now)
}

// rowsForIndex materializes every live row in h as an index.Row set,
// suitable for a full index (re)build.
func rowsForIndex(h *storage.Handle) ([]index.Row, error) {
	ids := h.AllIDs()
	embeddings := h.AllEmbeddings()
	rows := make([]index.Row, len(ids))
	for i, id := range ids {
		rows[i] = index.Row{ID: id, RowIndex: i, Values: embeddings[i]}
	}
	return rows, nil
}
