package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pablasso/triage/internal/config"
	"github.com/pablasso/triage/internal/store"
	"github.com/pablasso/triage/internal/todo"
	"github.com/pablasso/triage/internal/util"
)

// Overridable in tests.
var (
	stdout  io.Writer = os.Stdout
	stdin   io.Reader = os.Stdin
	nowFunc           = timeNow
)

// workspace bundles what a command needs from .triage/.
type workspace struct {
	dir        string
	cfg        *config.Config
	store      store.Store
	classifier *todo.Classifier
	activity   *store.ActivityLog
	lock       *store.Lock
}

func openWorkspace() (*workspace, error) {
	if err := RequireInitialized(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(triageDir)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg.StoreOptions(), triageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}

	return &workspace{
		dir:        triageDir,
		cfg:        cfg,
		store:      s,
		classifier: todo.NewClassifier(cfg.Catalog()),
		activity:   store.NewActivityLog(triageDir),
		lock:       store.NewLock(triageDir),
	}, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

// mutate runs fn while holding the store lock.
func (w *workspace) mutate(fn func() error) error {
	return w.lock.With(fn)
}

// resolveID expands a full or shortened task ID.
func (w *workspace) resolveID(ctx context.Context, arg string) (string, error) {
	tasks, err := w.store.List(ctx)
	if err != nil {
		return "", err
	}
	return resolveIn(tasks, arg)
}

func resolveIn(tasks []todo.Task, arg string) (string, error) {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	id, ambiguous := util.MatchID(ids, arg)
	if ambiguous {
		return "", fmt.Errorf("task id %q is ambiguous", arg)
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, arg)
	}
	return id, nil
}

// record writes an activity event. Failures only warn; the store is the
// source of truth.
func record(err error) {
	if err != nil {
		log.Printf("warning: failed to write activity log: %v", err)
	}
}

// warnTimeblock flags names the catalog does not know. Unknown timeblocks
// never block, which is rarely what a typo intended.
func (w *workspace) warnTimeblock(name string) {
	if name == "" {
		return
	}
	if _, ok := w.classifier.Catalog().Resolve(name); !ok {
		log.Printf("warning: timeblock %q is not in the catalog and will never block", name)
	}
}
