package state

import (
	"context"
	"time"

	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/credentials"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/database"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/state/store"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/pkg/logger"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/pkg/metrics"
)

// Fixed collection names used by the trading ecosystem.
const (
	CollectionTradingState       = "trading_state"
	CollectionStateHistory       = "trading_state_history"
	CollectionNeuralModels       = "neural_models"
	CollectionAnomalyLogs        = "anomaly_logs"
	CollectionHealingActions     = "healing_actions"
	CollectionPerformanceMetrics = "performance_metrics"
)

const (
	// CurrentStateDoc is the singleton current-state document id.
	CurrentStateDoc = "current"
	// initMarkerDoc is written into each required collection to force its existence.
	initMarkerDoc = "_initialization"
	// DefaultVersion is injected when the caller's state carries no version.
	DefaultVersion = "1.0.0"

	// history and log document ids carry a second-resolution UTC timestamp
	docIDTimeFormat = "20060102_150405"
)

// requiredCollections are bootstrapped at initialization. History is excluded:
// it is created implicitly by the first save.
var requiredCollections = []string{
	CollectionTradingState,
	CollectionNeuralModels,
	CollectionAnomalyLogs,
	CollectionHealingActions,
	CollectionPerformanceMetrics,
}

// Gateway mediates all reads and writes between the application and the
// document store. Every public operation swallows backend errors and reports
// failure through its return value plus a log line; nothing is re-raised.
// An uninitialized gateway (no credential, or connect failure) is usable but
// every operation reports failure.
type Gateway struct {
	store       store.Store
	initialized bool

	// now is the wall clock used for injected timestamps and history ids.
	now func() time.Time
}

// New resolves a credential (explicit path, then env var, then default path),
// opens the process-wide store connection and bootstraps the required
// collections. Initialization failures are logged, never returned: the
// gateway comes back uninitialized and all operations report failure.
func New(ctx context.Context, credentialPath string, timeout time.Duration) *Gateway {
	g := &Gateway{now: time.Now}

	cred, err := credentials.Resolve(credentialPath)
	if err != nil {
		logger.Errorf("state gateway configuration error: %v", err)
		return g
	}

	client, err := database.SharedClient(ctx, cred.URI, timeout)
	if err != nil {
		logger.Errorf("state gateway initialization error: %v", err)
		return g
	}

	g.store = store.NewMongoStore(client.Database(cred.Database))
	g.initialized = true
	logger.Infof("document store connected (database %q)", cred.Database)

	g.EnsureCollections(ctx)
	return g
}

// NewWithStore wires the gateway to an explicit backend. Used by tests and
// local development with the in-memory store.
func NewWithStore(s store.Store) *Gateway {
	return &Gateway{store: s, initialized: s != nil, now: time.Now}
}

// Initialized reports whether the gateway holds a usable store connection.
func (g *Gateway) Initialized() bool {
	return g.initialized
}

// EnsureCollections writes a marker document into each required collection so
// it exists before the first real write. Merge semantics keep re-runs from
// clobbering anything already stored under the marker id. Failures are
// best-effort: each is logged as a warning and the rest proceed.
func (g *Gateway) EnsureCollections(ctx context.Context) {
	if !g.initialized {
		return
	}
	marker := map[string]any{
		"initialized_at": g.now().UTC().Format(time.RFC3339),
		"purpose":        "collection initialization marker",
	}
	for _, collection := range requiredCollections {
		if err := g.store.SetMerge(ctx, collection, initMarkerDoc, marker); err != nil {
			logger.Warnf("could not initialize collection %q: %v", collection, err)
			metrics.CollectionInitFailures.WithLabelValues(collection).Inc()
			continue
		}
		logger.Debugf("collection %q initialized", collection)
	}
}

// withMetadata copies state and injects the save metadata: an ISO-8601
// timestamp, a version (defaulted when the caller set none) and the
// server-assigned last_updated sentinel.
func (g *Gateway) withMetadata(state map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(state)+3)
	for k, v := range state {
		out[k] = v
	}
	out["timestamp"] = now.Format(time.RFC3339)
	if _, ok := state["version"]; !ok {
		out["version"] = DefaultVersion
	}
	out["last_updated"] = store.ServerTimestamp
	return out
}

// SaveState merges the given state into the singleton current-state document
// and appends an immutable snapshot to the history collection. Returns true
// only when both writes land. Not transactional: a history failure after a
// successful current write still reports false.
func (g *Gateway) SaveState(ctx context.Context, state map[string]any) bool {
	if !g.initialized {
		logger.Error("document store not initialized")
		metrics.StateSaves.WithLabelValues("uninitialized").Inc()
		return false
	}

	now := g.now().UTC()
	withMeta := g.withMetadata(state, now)

	if err := g.store.SetMerge(ctx, CollectionTradingState, CurrentStateDoc, withMeta); err != nil {
		logger.Errorf("error saving trading state: %v", err)
		metrics.StateSaves.WithLabelValues("error").Inc()
		return false
	}

	historyID := "state_" + now.Format(docIDTimeFormat)
	if err := g.store.Set(ctx, CollectionStateHistory, historyID, withMeta); err != nil {
		logger.Errorf("error writing state history %s: %v", historyID, err)
		metrics.StateSaves.WithLabelValues("error").Inc()
		return false
	}

	metrics.StateSaves.WithLabelValues("ok").Inc()
	metrics.HistoryWrites.Inc()
	logger.Infof("trading state saved: %d fields", len(state))
	return true
}

// LoadState returns the current trading state's field mapping, or nil when
// the gateway is uninitialized, the document is absent, or the backend fails.
func (g *Gateway) LoadState(ctx context.Context) map[string]any {
	if !g.initialized {
		logger.Error("document store not initialized")
		metrics.StateLoads.WithLabelValues("uninitialized").Inc()
		return nil
	}

	doc, err := g.store.Get(ctx, CollectionTradingState, CurrentStateDoc)
	if err != nil {
		if err == store.ErrNotFound {
			logger.Warn("no trading state found")
			metrics.StateLoads.WithLabelValues("missing").Inc()
			return nil
		}
		logger.Errorf("error loading trading state: %v", err)
		metrics.StateLoads.WithLabelValues("error").Inc()
		return nil
	}

	metrics.StateLoads.WithLabelValues("ok").Inc()
	logger.Info("trading state loaded")
	return doc
}

// SaveModelMetadata merges metadata for a neural model into its document.
func (g *Gateway) SaveModelMetadata(ctx context.Context, modelID string, meta map[string]any) bool {
	if !g.initialized {
		logger.Error("document store not initialized")
		return false
	}

	withMeta := make(map[string]any, len(meta)+2)
	for k, v := range meta {
		withMeta[k] = v
	}
	withMeta["updated_at"] = g.now().UTC().Format(time.RFC3339)
	withMeta["last_updated"] = store.ServerTimestamp

	if err := g.store.SetMerge(ctx, CollectionNeuralModels, modelID, withMeta); err != nil {
		logger.Errorf("error saving model metadata %s: %v", modelID, err)
		return false
	}
	logger.Infof("model metadata saved: %s", modelID)
	return true
}

// ModelMetadata returns a model's stored metadata, or nil when absent.
func (g *Gateway) ModelMetadata(ctx context.Context, modelID string) map[string]any {
	if !g.initialized {
		logger.Error("document store not initialized")
		return nil
	}
	doc, err := g.store.Get(ctx, CollectionNeuralModels, modelID)
	if err != nil {
		if err != store.ErrNotFound {
			logger.Errorf("error loading model metadata %s: %v", modelID, err)
		}
		return nil
	}
	return doc
}

// appendLog writes an append-only entry into a log collection under a
// timestamp-derived id, stamping it with the given time field.
func (g *Gateway) appendLog(ctx context.Context, collection, idPrefix, timeField string, entry map[string]any) bool {
	if !g.initialized {
		logger.Error("document store not initialized")
		return false
	}

	now := g.now().UTC()
	withMeta := make(map[string]any, len(entry)+2)
	for k, v := range entry {
		withMeta[k] = v
	}
	withMeta[timeField] = now.Format(time.RFC3339)
	withMeta["last_updated"] = store.ServerTimestamp

	id := idPrefix + "_" + now.Format(docIDTimeFormat)
	if err := g.store.Set(ctx, collection, id, withMeta); err != nil {
		logger.Errorf("error appending to %s: %v", collection, err)
		return false
	}
	logger.Debugf("appended %s to %s", id, collection)
	return true
}

// LogAnomaly appends a detected anomaly to the anomaly log.
func (g *Gateway) LogAnomaly(ctx context.Context, entry map[string]any) bool {
	return g.appendLog(ctx, CollectionAnomalyLogs, "anomaly", "detected_at", entry)
}

// LogHealingAction appends an executed self-healing action.
func (g *Gateway) LogHealingAction(ctx context.Context, entry map[string]any) bool {
	return g.appendLog(ctx, CollectionHealingActions, "healing", "executed_at", entry)
}

// RecordPerformanceMetrics appends a performance report.
func (g *Gateway) RecordPerformanceMetrics(ctx context.Context, report map[string]any) bool {
	return g.appendLog(ctx, CollectionPerformanceMetrics, "metrics", "recorded_at", report)
}
