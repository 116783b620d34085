package form

import (
	"fmt"
	"strings"
)

// Option is one selectable entity. Attrs carries the attributes dependent
// fields are derived from (e.g. an employee's division and city).
type Option struct {
	Value string
	Label string
	Attrs map[string]string
}

// OptionState is the load state of an OptionSet.
type OptionState int

const (
	OptionsLoading OptionState = iota
	OptionsReady
	OptionsFailed
)

// OptionSet is a lazily loaded, read-only list of options. It is mutated
// exactly once, when its load completes or fails.
type OptionSet struct {
	key     string
	state   OptionState
	options []Option
	index   map[string]int
	err     *LoadError
}

// NewOptionSet returns a set that is still loading.
func NewOptionSet(key string) *OptionSet {
	return &OptionSet{key: key, state: OptionsLoading}
}

// StaticOptionSet returns a set that is ready with the given options.
func StaticOptionSet(key string, opts []Option) *OptionSet {
	s := NewOptionSet(key)
	s.complete(opts)
	return s
}

func (s *OptionSet) complete(opts []Option) {
	if s.state != OptionsLoading {
		return
	}
	s.options = append([]Option(nil), opts...)
	s.index = make(map[string]int, len(opts))
	for i, o := range s.options {
		s.index[o.Value] = i
	}
	s.state = OptionsReady
}

func (s *OptionSet) fail(err *LoadError) {
	if s.state != OptionsLoading {
		return
	}
	s.err = err
	s.state = OptionsFailed
}

// Key returns the option source key.
func (s *OptionSet) Key() string { return s.key }

// State returns the load state.
func (s *OptionSet) State() OptionState { return s.state }

// Ready reports whether options are loaded.
func (s *OptionSet) Ready() bool { return s.state == OptionsReady }

// Err returns the load failure, if any.
func (s *OptionSet) Err() *LoadError { return s.err }

// Options returns the loaded options.
func (s *OptionSet) Options() []Option { return s.options }

// Lookup finds an option by value.
func (s *OptionSet) Lookup(value string) (Option, bool) {
	if s.state != OptionsReady {
		return Option{}, false
	}
	i, ok := s.index[value]
	if !ok {
		return Option{}, false
	}
	return s.options[i], true
}

// Label returns the label of value, or value itself when unknown.
func (s *OptionSet) Label(value string) string {
	if opt, ok := s.Lookup(value); ok {
		return opt.Label
	}
	return value
}

// DependencyRule derives Targets from the option selected in Source.
type DependencyRule struct {
	Source    string
	OptionSet string
	Targets   []string
	Resolve   func(opt Option) map[string]string
}

// CopyAttrs builds a Resolve function that copies option attributes into
// fields: fieldToAttr maps target field name to attribute name.
func CopyAttrs(fieldToAttr map[string]string) func(Option) map[string]string {
	return func(opt Option) map[string]string {
		out := make(map[string]string, len(fieldToAttr))
		for field, attr := range fieldToAttr {
			out[field] = opt.Attrs[attr]
		}
		return out
	}
}

// ComputedRule recomputes Target whenever one of Sources changes.
type ComputedRule struct {
	Sources []string
	Target  string
	Compute func(values map[string]string) string
}

// Resolver pushes derived values into a Registry when source fields change.
// Resolution is synchronous and pure given the loaded option sets.
type Resolver struct {
	deps     []DependencyRule
	computed []ComputedRule
	sets     map[string]*OptionSet

	// provisional holds, per dependency index, a source value selected
	// before its option set finished loading.
	provisional map[int]string
}

// NewResolver returns a resolver for the given rules.
func NewResolver(deps []DependencyRule, computed []ComputedRule) *Resolver {
	return &Resolver{
		deps:        deps,
		computed:    computed,
		sets:        make(map[string]*OptionSet),
		provisional: make(map[int]string),
	}
}

// AddOptionSet makes an option set available for resolution.
func (r *Resolver) AddOptionSet(set *OptionSet) {
	r.sets[set.Key()] = set
}

// OptionSet returns a registered option set.
func (r *Resolver) OptionSet(key string) (*OptionSet, bool) {
	s, ok := r.sets[key]
	return s, ok
}

// Pending reports whether a source field has a selection waiting on its
// option set.
func (r *Resolver) Pending(source string) bool {
	for i := range r.provisional {
		if r.deps[i].Source == source {
			return true
		}
	}
	return false
}

// Apply resolves every rule driven by source after it changed to value.
func (r *Resolver) Apply(reg *Registry, source, value string) error {
	changed := []string{source}
	for i, dep := range r.deps {
		if dep.Source != source {
			continue
		}
		delete(r.provisional, i)

		set := r.sets[dep.OptionSet]
		if strings.TrimSpace(value) != "" && (set == nil || set.State() == OptionsLoading) {
			r.provisional[i] = value
		}

		targets, err := r.resolveRule(reg, i, value)
		if err != nil {
			return err
		}
		changed = append(changed, targets...)
	}
	return r.compute(reg, changed)
}

// resolveRule writes the targets of one dependency. Targets are cleared
// unless value is a known option, so selection and derived state never
// diverge.
func (r *Resolver) resolveRule(reg *Registry, i int, value string) ([]string, error) {
	dep := r.deps[i]
	derived := map[string]string{}
	if set := r.sets[dep.OptionSet]; set != nil && strings.TrimSpace(value) != "" {
		if opt, ok := set.Lookup(value); ok && dep.Resolve != nil {
			derived = dep.Resolve(opt)
		}
	}
	for _, target := range dep.Targets {
		if err := reg.SetValue(target, derived[target]); err != nil {
			return nil, fmt.Errorf("derive %s from %s: %w", target, dep.Source, err)
		}
	}
	return dep.Targets, nil
}

// OptionsLoaded re-resolves provisional selections waiting on key. A
// selection whose source field has since changed is dropped. While the
// registry is locked the selections stay pending.
func (r *Resolver) OptionsLoaded(reg *Registry, key string) error {
	if reg.Locked() {
		return nil
	}
	var changed []string
	for i, value := range r.provisional {
		dep := r.deps[i]
		if dep.OptionSet != key {
			continue
		}
		delete(r.provisional, i)
		if reg.Value(dep.Source) != value {
			continue
		}
		targets, err := r.resolveRule(reg, i, value)
		if err != nil {
			return err
		}
		changed = append(changed, targets...)
	}
	return r.compute(reg, changed)
}

// RetryPending re-resolves provisional selections whose option sets are no
// longer loading.
func (r *Resolver) RetryPending(reg *Registry) error {
	for key, set := range r.sets {
		if set.State() == OptionsLoading {
			continue
		}
		if err := r.OptionsLoaded(reg, key); err != nil {
			return err
		}
	}
	return nil
}

// Reset forgets provisional selections. Called when the registry is reset.
func (r *Resolver) Reset() {
	r.provisional = make(map[int]string)
}

func (r *Resolver) compute(reg *Registry, changed []string) error {
	if len(r.computed) == 0 || len(changed) == 0 {
		return nil
	}
	hit := make(map[string]bool, len(changed))
	for _, c := range changed {
		hit[c] = true
	}
	for _, rule := range r.computed {
		triggered := false
		for _, s := range rule.Sources {
			if hit[s] {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}
		if err := reg.SetValue(rule.Target, rule.Compute(reg.Values())); err != nil {
			return fmt.Errorf("compute %s: %w", rule.Target, err)
		}
	}
	return nil
}
