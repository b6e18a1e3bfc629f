// Package store records per-document run diagnostics for auditing: who
// parsed what, when, how confidently, and which solver path ran. It
// never stores extracted transactions. The store is optional; an empty
// driver means runs simply go unrecorded.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/statement-cli/internal/config"
	"github.com/sells-group/statement-cli/internal/engine"
	"github.com/sells-group/statement-cli/internal/model"
)

// RunRecord is one parse run's diagnostics.
type RunRecord struct {
	ID         uuid.UUID            `json:"id"`
	CreatedAt  time.Time            `json:"created_at"`
	Source     string               `json:"source"`
	SHA256     string               `json:"sha256"`
	Score      float64              `json:"score"`
	SolverUsed string               `json:"solver_used"`
	Accepted   int                  `json:"accepted"`
	Clusters   int                  `json:"clusters"`
	Issues     []string             `json:"issues"`
	Metrics    model.QualityMetrics `json:"metrics"`
	Provenance map[string]int       `json:"provenance"`
}

// FromResult builds the audit record for a finished run. data is the
// original document bytes, hashed so reparses of the same content are
// recognizable.
func FromResult(res *engine.Result, data []byte) RunRecord {
	sum := sha256.Sum256(data)
	return RunRecord{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Source:     res.Source,
		SHA256:     hex.EncodeToString(sum[:]),
		Score:      res.Quality.Score,
		SolverUsed: string(res.Reconciliation.SolverUsed),
		Accepted:   res.Accepted,
		Clusters:   res.Clusters,
		Issues:     res.Quality.Issues,
		Metrics:    res.Quality.Metrics,
		Provenance: res.Provenance,
	}
}

// Store persists run records.
type Store interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the configured store and runs its migration. An empty
// driver returns (nil, nil): run recording is off.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var st Store
	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		s, err := NewSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	case "postgres":
		s, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// withDefaults fills ID and CreatedAt so callers can hand SaveRun a
// bare record.
func withDefaults(rec RunRecord) RunRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}

func marshalDiagnostics(rec RunRecord) (issues, metrics, provenance []byte, err error) {
	if rec.Issues == nil {
		rec.Issues = []string{}
	}
	if rec.Provenance == nil {
		rec.Provenance = map[string]int{}
	}
	if issues, err = json.Marshal(rec.Issues); err != nil {
		return nil, nil, nil, err
	}
	if metrics, err = json.Marshal(rec.Metrics); err != nil {
		return nil, nil, nil, err
	}
	if provenance, err = json.Marshal(rec.Provenance); err != nil {
		return nil, nil, nil, err
	}
	return issues, metrics, provenance, nil
}

// scanRun decodes one runs row via the given Scan function. Both
// drivers select the same columns in the same order.
func scanRun(scan func(dest ...any) error) (*RunRecord, error) {
	var (
		rec        RunRecord
		id         string
		issues     []byte
		metrics    []byte
		provenance []byte
	)
	if err := scan(&id, &rec.CreatedAt, &rec.Source, &rec.SHA256, &rec.Score, &rec.SolverUsed,
		&rec.Accepted, &rec.Clusters, &issues, &metrics, &provenance); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, eris.Wrap(err, "parse run id")
	}
	rec.ID = parsed

	if err := json.Unmarshal(issues, &rec.Issues); err != nil {
		return nil, eris.Wrap(err, "unmarshal issues")
	}
	var m model.QualityMetrics
	if err := json.Unmarshal(metrics, &m); err != nil {
		return nil, eris.Wrap(err, "unmarshal metrics")
	}
	rec.Metrics = m
	if err := json.Unmarshal(provenance, &rec.Provenance); err != nil {
		return nil, eris.Wrap(err, "unmarshal provenance")
	}
	return &rec, nil
}
