package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/backoffice/internal/log"
)

// Status is the submission state of a Controller.
type Status int

const (
	// StatusIdle is editable with no pending operation. A failed submission
	// returns here with Snapshot.SubmitError set.
	StatusIdle Status = iota
	// StatusSaving has an operation in flight; fields are locked.
	StatusSaving
	// StatusSuccess is terminal until the host closes or resets the form.
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSaving:
		return "saving"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// OpKind identifies what an Operation does.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the form state for rendering.
type Snapshot struct {
	Order       []string
	Fields      map[string]FieldState
	Status      Status
	SubmitError string
	Identity    string
	LoadErrors  map[string]string // field name -> option load failure
}

// Editable reports whether fields accept input.
func (s Snapshot) Editable() bool { return s.Status == StatusIdle }

// Operation is a submission or deletion started by the Controller. Run may be
// called on any goroutine; its Result must be handed back through Finish.
type Operation struct {
	Kind       OpKind
	ID         string
	Payload    Payload
	generation uint64
	adapter    Adapter
}

// Result is the outcome of Operation.Run.
type Result struct {
	Op     *Operation
	Record Record
	ID     string
	Err    error
}

// Run performs the adapter call.
func (op *Operation) Run(ctx context.Context) Result {
	res := Result{Op: op}
	if op.adapter == nil {
		res.Err = errors.New("no adapter configured")
		return res
	}
	switch op.Kind {
	case OpCreate:
		res.Record, res.Err = op.adapter.Create(ctx, op.Payload)
	case OpUpdate:
		res.Record, res.Err = op.adapter.Update(ctx, op.ID, op.Payload)
	case OpDelete:
		res.ID, res.Err = op.adapter.Remove(ctx, op.ID)
		if res.Err == nil && res.ID == "" {
			res.ID = op.ID
		}
	}
	return res
}

// Outcome is what Finish tells the host after applying a Result.
type Outcome struct {
	Kind   OpKind
	Record Record // created or updated record
	ID     string // deleted identity
	Err    *SubmissionError
}

// Succeeded reports whether the operation committed.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Controller owns the state of one record being edited.
type Controller struct {
	def      Definition
	reg      *Registry
	resolver *Resolver

	record     Record
	context    map[string]string
	status     Status
	submitErr  string
	loadErrors map[string]string

	// generation increases on every reset; results of operations started
	// under an older generation are discarded.
	generation uint64

	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewController builds a controller for def seeded from rec (nil for a new
// record). ctx is the creation context: values for fields of a new record
// and extra keys merged into the create payload.
func NewController(def Definition, rec Record, ctx map[string]string) (*Controller, error) {
	c := &Controller{
		def:         def,
		reg:         NewRegistry(),
		resolver:    NewResolver(def.Dependencies, def.Computed),
		record:      rec,
		context:     ctx,
		loadErrors:  make(map[string]string),
		subscribers: make(map[int]func(Snapshot)),
	}
	values, err := def.InitialValues(rec, ctx)
	if err != nil {
		return nil, fmt.Errorf("seed %s form: %w", def.Name, err)
	}
	for _, f := range def.Fields {
		rules := f.Rules
		if f.Kind == KindSelect && len(f.Choices) > 0 {
			allowed := make([]string, len(f.Choices))
			for i, ch := range f.Choices {
				allowed[i] = ch.Value
			}
			rules = append(append([]Rule(nil), rules...), OneOf(allowed...))
		}
		c.reg.Register(f.Name, values[f.Name], rules...)
	}
	for _, key := range def.OptionSets() {
		c.resolver.AddOptionSet(NewOptionSet(key))
	}
	return c, nil
}

// Definition returns the form definition.
func (c *Controller) Definition() Definition { return c.def }

// Record returns the record the form was seeded from (nil for new).
func (c *Controller) Record() Record { return c.record }

// Identity returns the record id, or "" for a new record.
func (c *Controller) Identity() string { return c.record.ID() }

// IsNew reports whether the form creates a record.
func (c *Controller) IsNew() bool { return c.Identity() == "" }

// Status returns the current status.
func (c *Controller) Status() Status { return c.status }

// OptionSet returns the option set with the given key.
func (c *Controller) OptionSet(key string) (*OptionSet, bool) {
	return c.resolver.OptionSet(key)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	loadErrs := make(map[string]string, len(c.loadErrors))
	for k, v := range c.loadErrors {
		loadErrs[k] = v
	}
	return Snapshot{
		Order:       c.reg.Names(),
		Fields:      c.reg.Snapshot(),
		Status:      c.status,
		SubmitError: c.submitErr,
		Identity:    c.Identity(),
		LoadErrors:  loadErrs,
	}
}

// Values returns the current field values.
func (c *Controller) Values() map[string]string { return c.reg.Values() }

// Subscribe registers fn to be called with a fresh Snapshot after every state
// change. The returned function unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() { delete(c.subscribers, id) }
}

func (c *Controller) emit() {
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.subscribers {
		fn(snap)
	}
}

// SetValue applies an operator edit and resolves dependent fields.
func (c *Controller) SetValue(name, value string) error {
	if c.status == StatusSaving {
		return ErrBusy
	}
	f, ok := c.def.Field(name)
	if !ok {
		return ErrUnknownField
	}
	if f.ReadOnly {
		return ErrReadOnly
	}
	if err := c.reg.SetValue(name, value); err != nil {
		return err
	}
	if err := c.resolver.Apply(c.reg, name, value); err != nil {
		log.ErrorErr(log.CatForm, "dependent field resolution failed", err, "form", c.def.Name, "field", name)
		return err
	}
	c.emit()
	return nil
}

// OptionsLoaded completes an option set load. On failure a LoadError is
// recorded on every field that uses the set; editing continues.
func (c *Controller) OptionsLoaded(key string, opts []Option, loadErr error) {
	set, ok := c.resolver.OptionSet(key)
	if !ok {
		return
	}
	if loadErr != nil {
		le := NewLoadError(key, loadErr)
		set.fail(le)
		for _, f := range c.def.Fields {
			if f.OptionSet == key {
				c.loadErrors[f.Name] = le.Message
			}
		}
		for _, dep := range c.def.Dependencies {
			if dep.OptionSet == key {
				c.loadErrors[dep.Source] = le.Message
			}
		}
		log.ErrorErr(log.CatOptions, "option set failed to load", loadErr, "form", c.def.Name, "options", key)
	} else {
		set.complete(opts)
		log.Debug(log.CatOptions, "option set loaded", "form", c.def.Name, "options", key, "count", len(opts))
	}
	if err := c.resolver.OptionsLoaded(c.reg, key); err != nil {
		log.ErrorErr(log.CatForm, "re-resolving provisional selection failed", err, "form", c.def.Name)
	}
	c.emit()
}

// Submit validates and, on success, moves to saving and returns the create
// or update Operation to run. It returns ErrBusy while saving and a
// *ValidationError when a field fails its rules.
func (c *Controller) Submit() (*Operation, error) {
	if c.status == StatusSaving {
		return nil, ErrBusy
	}
	res := c.reg.ValidateAll()
	if !res.Valid {
		c.submitErr = ""
		c.emit()
		return nil, &ValidationError{Fields: res.Errors}
	}

	op := &Operation{
		Payload:    BuildPayload(c.def.Fields, c.reg.Values(), c.record),
		generation: c.generation,
		adapter:    c.def.Adapter,
	}
	if id := c.Identity(); id != "" {
		op.Kind = OpUpdate
		op.ID = id
	} else {
		op.Kind = OpCreate
		for k, v := range c.context {
			if _, isField := c.def.Field(k); !isField {
				op.Payload[k] = v
			}
		}
	}
	c.beginSaving(op)
	return op, nil
}

// Delete starts deleting the record. It requires confirmed intent and an
// existing identity; without an identity it is a no-op.
func (c *Controller) Delete(confirmed bool) (*Operation, error) {
	if c.status == StatusSaving {
		return nil, ErrBusy
	}
	id := c.Identity()
	if id == "" {
		return nil, ErrNoIdentity
	}
	if !confirmed {
		return nil, ErrNotConfirmed
	}
	op := &Operation{
		Kind:       OpDelete,
		ID:         id,
		generation: c.generation,
		adapter:    c.def.Adapter,
	}
	c.beginSaving(op)
	return op, nil
}

func (c *Controller) beginSaving(op *Operation) {
	c.status = StatusSaving
	c.submitErr = ""
	c.reg.Lock()
	log.Debug(log.CatForm, "submission started", "form", c.def.Name, "op", op.Kind, "id", op.ID)
	c.emit()
}

// Finish applies the result of an Operation. Results from a generation older
// than the current one (the record changed underneath) are discarded and
// applied is false.
func (c *Controller) Finish(res Result) (outcome Outcome, applied bool) {
	if res.Op == nil || res.Op.generation != c.generation || c.status != StatusSaving {
		log.Debug(log.CatForm, "discarding stale result", "form", c.def.Name)
		return Outcome{}, false
	}
	c.reg.Unlock()
	outcome = Outcome{Kind: res.Op.Kind, Record: res.Record, ID: res.ID}

	if res.Err != nil {
		outcome.Err = NewSubmissionError(res.Err)
		c.status = StatusIdle
		c.submitErr = outcome.Err.Message
		log.ErrorErr(log.CatForm, "submission failed", res.Err, "form", c.def.Name, "op", res.Op.Kind)
		if err := c.resolver.RetryPending(c.reg); err != nil {
			log.ErrorErr(log.CatForm, "re-resolving provisional selection failed", err, "form", c.def.Name)
		}
		c.emit()
		return outcome, true
	}

	c.status = StatusSuccess
	if res.Op.Kind == OpUpdate && res.Record != nil {
		c.record = res.Record
	}
	log.Info(log.CatForm, "submission succeeded", "form", c.def.Name, "op", res.Op.Kind)
	c.emit()
	return outcome, true
}

// SubmitAndWait runs Submit, the Operation and Finish in one call. It returns
// the committed record, a *ValidationError, a *SubmissionError, or ErrBusy.
func (c *Controller) SubmitAndWait(ctx context.Context) (Record, error) {
	op, err := c.Submit()
	if err != nil {
		return nil, err
	}
	outcome, applied := c.Finish(op.Run(ctx))
	if !applied {
		return nil, ErrBusy
	}
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	return outcome.Record, nil
}

// Cancel discards in-memory edits. The host closes afterwards.
func (c *Controller) Cancel() error {
	if c.status == StatusSaving {
		return ErrBusy
	}
	return c.reset(c.record)
}

// Load points the form at rec. A different identity resets the form
// unconditionally, including while saving: the in-flight result will be
// discarded. The same identity is a no-op.
func (c *Controller) Load(rec Record) error {
	if rec.ID() == c.Identity() && (rec == nil) == (c.record == nil) {
		return nil
	}
	return c.reset(rec)
}

// Reopen resets the form to its record, as when the host is opened again.
func (c *Controller) Reopen() error {
	return c.reset(c.record)
}

// ResetForReuse clears a "new" form after a successful create so another
// record can be entered.
func (c *Controller) ResetForReuse() error {
	return c.reset(nil)
}

// reset replaces the field state with rec's derived initial values. When
// rec cannot be represented the prior values are kept and the error returned.
func (c *Controller) reset(rec Record) error {
	values, err := c.def.InitialValues(rec, c.context)
	if err != nil {
		log.Warn(log.CatForm, "reset failed, keeping prior values", "form", c.def.Name, "error", err.Error())
		return fmt.Errorf("reset %s form: %w", c.def.Name, err)
	}
	c.generation++
	c.record = rec
	c.reg.Unlock()
	c.reg.Reset(values)
	c.resolver.Reset()
	c.status = StatusIdle
	c.submitErr = ""
	c.emit()
	return nil
}
