package ufunc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/elementwise/internal/array"
	"github.com/born-ml/elementwise/internal/backend/cpu"
	"github.com/born-ml/elementwise/internal/parallel"
	"github.com/born-ml/elementwise/internal/runtime"
)

// TaskKey selects one task.
type TaskKey struct {
	Op      OpCode
	DType   array.DataType
	Variant Variant
}

// Bits reserved for the type tag and the variant in a runtime task id.
const (
	variantBits = 1
	dtypeBits   = 4
	opShift     = dtypeBits + variantBits
)

// ID returns the dense runtime task id: op*32 + dtype*2 + variant.
func (k TaskKey) ID() runtime.TaskID {
	return runtime.TaskID(uint32(k.Op)<<opShift | uint32(k.DType)<<variantBits | uint32(k.Variant))
}

// KeyFromID inverts TaskKey.ID.
func KeyFromID(id runtime.TaskID) TaskKey {
	return TaskKey{
		Op:      OpCode(id >> opShift),
		DType:   array.DataType((id >> variantBits) & (1<<dtypeBits - 1)),
		Variant: Variant(id & (1<<variantBits - 1)),
	}
}

// String formats the key as op:dtype:variant.
func (k TaskKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Op, k.DType, k.Variant)
}

// Task is one registered (operator, type, variant) instance. Tasks are
// immutable once the registry is frozen.
type Task struct {
	key    TaskKey
	result array.DataType
	bodies [runtime.NumProcessorKinds]runtime.Body
}

// Key returns the task key.
func (t *Task) Key() TaskKey { return t.key }

// Name returns the task's registered name.
func (t *Task) Name() string { return t.key.String() }

// ResultType returns the element type of the output region.
func (t *Task) ResultType() array.DataType { return t.result }

// Procs returns the processor kinds the task has a body for.
func (t *Task) Procs() runtime.ProcessorMask {
	var m runtime.ProcessorMask
	for _, k := range runtime.AllProcessorKinds() {
		if t.bodies[k] != nil {
			m |= runtime.MaskOf(k)
		}
	}
	return m
}

// Body returns the body for proc, falling back to the CPU body.
func (t *Task) Body(proc runtime.ProcessorKind) runtime.Body {
	if int(proc) < runtime.NumProcessorKinds && t.bodies[proc] != nil {
		return t.bodies[proc]
	}
	return t.bodies[runtime.CPU]
}

// Run executes the task on proc.
func (t *Task) Run(proc runtime.ProcessorKind, args runtime.Args) (*array.Region, error) {
	return t.Body(proc)(args)
}

func (t *Task) bodyMap() map[runtime.ProcessorKind]runtime.Body {
	m := make(map[runtime.ProcessorKind]runtime.Body, len(t.bodies))
	for _, k := range runtime.AllProcessorKinds() {
		if t.bodies[k] != nil {
			m[k] = t.bodies[k]
		}
	}
	return m
}

// Registry holds declared operators and their tasks. It is built on one
// goroutine, then frozen; after Freeze it is read-only and safe for
// concurrent use without locking.
type Registry struct {
	ops    [numOpCodes]*Operator
	tasks  []*Task // indexed by TaskKey.ID
	count  int
	frozen bool

	seq    *cpu.CPUBackend
	par    *cpu.CPUBackend
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithParallel sets the loop configuration of OMP bodies.
func WithParallel(cfg parallel.Config) Option {
	return func(r *Registry) {
		r.par = cpu.NewParallel(cfg)
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tasks:  make([]*Task, int(numOpCodes)<<opShift),
		seq:    cpu.New(),
		par:    cpu.NewParallel(parallel.DefaultConfig()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Declare validates d and records the operator.
func (r *Registry) Declare(d Descriptor) (*Operator, error) {
	if r.frozen {
		return nil, opError(ErrCodeRegistryFrozen, d.Code, "cannot declare after freeze")
	}
	o, err := newOperator(r, d)
	if err != nil {
		return nil, err
	}
	if r.ops[d.Code] != nil {
		return nil, opError(ErrCodeDuplicateOpCode, d.Code, "operation code already declared")
	}
	r.ops[d.Code] = o
	return o, nil
}

// Operator returns the declared operator for op.
func (r *Registry) Operator(op OpCode) (*Operator, bool) {
	if !op.Valid() || r.ops[op] == nil {
		return nil, false
	}
	return r.ops[op], true
}

// Operators lists declared operators in code order.
func (r *Registry) Operators() []*Operator {
	var out []*Operator
	for _, o := range r.ops {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Frozen reports whether Freeze has succeeded.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return r.count
}

func (r *Registry) add(t *Task) error {
	if r.frozen {
		return keyError(ErrCodeRegistryFrozen, t.key, "cannot register after freeze")
	}
	id := t.key.ID()
	if r.tasks[id] != nil {
		return keyError(ErrCodeDuplicateTask, t.key, "task already registered")
	}
	r.tasks[id] = t
	r.count++
	return nil
}

// Attach adds a body for proc to an existing task. Used by device backends
// before the registry is frozen. The CPU body cannot be replaced.
func (r *Registry) Attach(key TaskKey, proc runtime.ProcessorKind, body runtime.Body) error {
	if r.frozen {
		return keyError(ErrCodeRegistryFrozen, key, "cannot attach after freeze")
	}
	if proc == runtime.CPU || int(proc) >= runtime.NumProcessorKinds {
		return keyError(ErrCodeInvalidArgument, key, "cannot attach a %s body", proc)
	}
	t := r.task(key)
	if t == nil {
		return keyError(ErrCodeUnregisteredTask, key, "no task to attach to")
	}
	t.bodies[proc] = body
	return nil
}

// Freeze checks that every declared (type, variant) pair of every operator
// has exactly one task and then makes the registry read-only. On failure the
// registry stays open and the error joins one IncompleteOperator per gap.
func (r *Registry) Freeze() error {
	if r.frozen {
		return nil
	}

	var errs []error
	for _, o := range r.Operators() {
		for _, dt := range o.types {
			for _, v := range o.variants {
				key := TaskKey{Op: o.code, DType: dt, Variant: v}
				if r.task(key) == nil {
					errs = append(errs, keyError(ErrCodeIncompleteOperator, key, "declared type has no task"))
				}
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.frozen = true
	r.logger.Info("ufunc registry frozen", "operators", len(r.Operators()), "tasks", r.count)
	return nil
}

func (r *Registry) task(key TaskKey) *Task {
	if !key.Op.Valid() || !key.DType.Valid() || !key.Variant.Valid() {
		return nil
	}
	return r.tasks[key.ID()]
}

// Lookup resolves a task. An undeclared operation or inapplicable variant
// fails with UnregisteredTask; a type outside the operator's set fails with
// UnsupportedType.
func (r *Registry) Lookup(key TaskKey) (*Task, error) {
	if !r.frozen {
		return nil, keyError(ErrCodeUnregisteredTask, key, "registry is not frozen")
	}
	o, ok := r.Operator(key.Op)
	if !ok {
		return nil, keyError(ErrCodeUnregisteredTask, key, "operation is not registered")
	}
	if !o.Supports(key.DType) {
		return nil, keyError(ErrCodeUnsupportedType, key, "%s does not support %s", key.Op, key.DType)
	}
	if !o.HasVariant(key.Variant) {
		return nil, keyError(ErrCodeUnregisteredTask, key, "%s has no %s variant", key.Op, key.Variant)
	}
	return r.task(key), nil
}

// LookupID resolves a task by its runtime id.
func (r *Registry) LookupID(id runtime.TaskID) (*Task, error) {
	return r.Lookup(KeyFromID(id))
}

// Execute looks up key and runs it on proc.
func (r *Registry) Execute(key TaskKey, proc runtime.ProcessorKind, args runtime.Args) (*array.Region, error) {
	t, err := r.Lookup(key)
	if err != nil {
		return nil, err
	}
	return t.Run(proc, args)
}

// Dispatch derives the task key from the operands and executes it. The type
// tag is taken from the first input region; the variant from whether a
// scalar is present.
func (r *Registry) Dispatch(op OpCode, proc runtime.ProcessorKind, args runtime.Args) (*array.Region, error) {
	if len(args.Inputs) == 0 || args.Inputs[0] == nil {
		return nil, opError(ErrCodeInvalidArgument, op, "no input region")
	}
	key := TaskKey{Op: op, DType: args.Inputs[0].DType(), Variant: ArrayArray}
	if args.Scalar != nil {
		key.Variant = ArrayScalar
	}
	return r.Execute(key, proc, args)
}

// Tasks lists registered tasks in id order.
func (r *Registry) Tasks() []*Task {
	out := make([]*Task, 0, r.count)
	for _, t := range r.tasks {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Publish registers every task with the external runtime under its dense id.
func (r *Registry) Publish(reg runtime.Registrar) error {
	if !r.frozen {
		return opError(ErrCodeUnregisteredTask, OpInvalid, "registry is not frozen")
	}
	for _, t := range r.Tasks() {
		if err := reg.RegisterTask(t.key.ID(), t.Name(), t.bodyMap()); err != nil {
			return fmt.Errorf("publish %s: %w", t.Name(), err)
		}
	}
	r.logger.Debug("ufunc tasks published", "tasks", r.count)
	return nil
}

// ManifestEntry describes one task for listing.
type ManifestEntry struct {
	ID      runtime.TaskID `json:"id" yaml:"id"`
	Op      string         `json:"op" yaml:"op"`
	DType   string         `json:"dtype" yaml:"dtype"`
	Variant string         `json:"variant" yaml:"variant"`
	Result  string         `json:"result" yaml:"result"`
	Procs   string         `json:"procs" yaml:"procs"`
}

// Manifest describes every task in id order.
func (r *Registry) Manifest() []ManifestEntry {
	tasks := r.Tasks()
	out := make([]ManifestEntry, len(tasks))
	for i, t := range tasks {
		out[i] = ManifestEntry{
			ID:      t.key.ID(),
			Op:      t.key.Op.String(),
			DType:   t.key.DType.String(),
			Variant: t.key.Variant.String(),
			Result:  t.result.String(),
			Procs:   t.Procs().String(),
		}
	}
	return out
}
