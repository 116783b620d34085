package form

// FieldState is the editable state of one field.
//
// Error is non-empty only after a validation pass ran against the current
// Value.
type FieldState struct {
	Value   string
	Error   string
	Touched bool
}

type registeredField struct {
	state FieldState
	rules []Rule
}

// ValidationResult is the outcome of Registry.ValidateAll.
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// Registry holds the FieldState of every field of the record being edited.
// It is not safe for concurrent use; the Controller owns it.
type Registry struct {
	order  []string
	fields map[string]*registeredField
	locked bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]*registeredField)}
}

// Register adds a field with its initial value and rules. Registering an
// existing name replaces its rules and value.
func (r *Registry) Register(name, initial string, rules ...Rule) {
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = &registeredField{
		state: FieldState{Value: initial},
		rules: rules,
	}
}

// Names returns field names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// SetValue updates a field and marks it touched. If the field currently
// shows an error, only that field is revalidated: the error is cleared when it
// no longer applies.
func (r *Registry) SetValue(name, value string) error {
	f, ok := r.fields[name]
	if !ok {
		return ErrUnknownField
	}
	if r.locked {
		return ErrLocked
	}
	f.state.Value = value
	f.state.Touched = true
	if f.state.Error != "" {
		f.state.Error = check(f.rules, value)
	}
	return nil
}

// Value returns the current value of a field ("" if unknown).
func (r *Registry) Value(name string) string {
	if f, ok := r.fields[name]; ok {
		return f.state.Value
	}
	return ""
}

// State returns the FieldState of a field.
func (r *Registry) State(name string) (FieldState, bool) {
	f, ok := r.fields[name]
	if !ok {
		return FieldState{}, false
	}
	return f.state, true
}

// SetError sets or clears (msg == "") the error of a field.
func (r *Registry) SetError(name, msg string) {
	if f, ok := r.fields[name]; ok {
		f.state.Error = msg
	}
}

// ValidateAll runs every field's registered rules against its current value
// and records the results on the fields.
func (r *Registry) ValidateAll() ValidationResult {
	res := ValidationResult{Valid: true, Errors: make(map[string]string)}
	for _, name := range r.order {
		f := r.fields[name]
		f.state.Error = check(f.rules, f.state.Value)
		if f.state.Error != "" {
			res.Valid = false
			res.Errors[name] = f.state.Error
		}
	}
	return res
}

// Reset replaces every FieldState at once: values come from values (missing
// names become ""), errors and touched flags are cleared. Names not
// registered are ignored.
func (r *Registry) Reset(values map[string]string) {
	for _, name := range r.order {
		r.fields[name].state = FieldState{Value: values[name]}
	}
}

// Values returns a copy of every field value.
func (r *Registry) Values() map[string]string {
	out := make(map[string]string, len(r.order))
	for _, name := range r.order {
		out[name] = r.fields[name].state.Value
	}
	return out
}

// Snapshot returns a copy of every FieldState.
func (r *Registry) Snapshot() map[string]FieldState {
	out := make(map[string]FieldState, len(r.order))
	for _, name := range r.order {
		out[name] = r.fields[name].state
	}
	return out
}

// Lock rejects SetValue until Unlock.
func (r *Registry) Lock() { r.locked = true }

// Unlock re-enables SetValue.
func (r *Registry) Unlock() { r.locked = false }

// Locked reports whether fields are locked.
func (r *Registry) Locked() bool { return r.locked }
