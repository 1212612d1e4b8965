package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/born-ml/elementwise/internal/array"
)

// Runtime errors.
var (
	ErrStarted       = errors.New("runtime already started")
	ErrNotStarted    = errors.New("runtime not started")
	ErrUnknownTask   = errors.New("unknown task id")
	ErrDuplicateTask = errors.New("task id already registered")
	ErrNoCPUBody     = errors.New("task has no cpu body")
)

// Launch requests one execution of a registered task.
type Launch struct {
	Task TaskID
	Proc ProcessorKind
	Args Args
}

// Completion reports a finished launch. Proc is the processor that actually
// ran the body, which differs from the requested one after a fallback.
type Completion struct {
	ID     uuid.UUID
	Task   TaskID
	Name   string
	Proc   ProcessorKind
	Output *array.Region
}

// TaskInfo describes a registered task.
type TaskInfo struct {
	ID    TaskID
	Name  string
	Procs ProcessorMask
}

type localTask struct {
	name   string
	bodies map[ProcessorKind]Body
	procs  ProcessorMask
}

// Local is an in-process runtime. Tasks are registered before Start; after
// Start the task table is read-only and Launch may be called concurrently.
type Local struct {
	mu      sync.RWMutex
	tasks   map[TaskID]*localTask
	started bool
	logger  *slog.Logger
}

// LocalOption configures a Local runtime.
type LocalOption func(*Local)

// WithLogger sets the logger used for registration and launch events.
func WithLogger(l *slog.Logger) LocalOption {
	return func(r *Local) {
		r.logger = l
	}
}

// NewLocal creates an empty local runtime.
func NewLocal(opts ...LocalOption) *Local {
	r := &Local{
		tasks:  make(map[TaskID]*localTask),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterTask implements Registrar.
func (r *Local) RegisterTask(id TaskID, name string, bodies map[ProcessorKind]Body) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("register %s: %w", name, ErrStarted)
	}
	if _, ok := r.tasks[id]; ok {
		return fmt.Errorf("register %s (id %d): %w", name, id, ErrDuplicateTask)
	}
	if bodies[CPU] == nil {
		return fmt.Errorf("register %s: %w", name, ErrNoCPUBody)
	}

	t := &localTask{name: name, bodies: make(map[ProcessorKind]Body, len(bodies))}
	for k, b := range bodies {
		if b == nil {
			continue
		}
		t.bodies[k] = b
		t.procs |= MaskOf(k)
	}
	r.tasks[id] = t
	return nil
}

// Start freezes the task table.
func (r *Local) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		r.started = true
		r.logger.Info("runtime started", "tasks", len(r.tasks))
	}
}

// Started reports whether Start has been called.
func (r *Local) Started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started
}

// Tasks lists registered tasks sorted by id.
func (r *Local) Tasks() []TaskInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TaskInfo, 0, len(r.tasks))
	for id, t := range r.tasks {
		out = append(out, TaskInfo{ID: id, Name: t.name, Procs: t.procs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Launch runs one task body on the calling goroutine. When the task has no
// body for the requested processor the CPU body runs instead. Failures are
// returned as is; the runtime never retries.
func (r *Local) Launch(ctx context.Context, l Launch) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}

	r.mu.RLock()
	started := r.started
	t, ok := r.tasks[l.Task]
	r.mu.RUnlock()

	if !started {
		return Completion{}, ErrNotStarted
	}
	if !ok {
		return Completion{}, fmt.Errorf("launch %d: %w", l.Task, ErrUnknownTask)
	}

	proc := l.Proc
	body, ok := t.bodies[proc]
	if !ok {
		proc = CPU
		body = t.bodies[CPU]
	}

	id := uuid.New()
	r.logger.Debug("launch",
		"id", id,
		"task", t.name,
		"requested", l.Proc,
		"proc", proc,
	)

	out, err := body(l.Args)
	if err != nil {
		r.logger.Debug("launch failed", "id", id, "task", t.name, "error", err)
		return Completion{}, fmt.Errorf("launch %s: %w", t.name, err)
	}

	return Completion{
		ID:     id,
		Task:   l.Task,
		Name:   t.name,
		Proc:   proc,
		Output: out,
	}, nil
}

// LaunchAll runs launches in submission order and stops at the first error.
func (r *Local) LaunchAll(ctx context.Context, launches []Launch) ([]Completion, error) {
	out := make([]Completion, 0, len(launches))
	for _, l := range launches {
		c, err := r.Launch(ctx, l)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}
