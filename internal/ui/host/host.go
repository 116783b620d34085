// Package host is the dialog that mounts a form.Controller in the terminal.
//
// The host owns no form state of its own: every keystroke goes through the
// controller, and the view is rendered from the controller's Snapshot. Adapter
// calls and option loads run as tea.Cmds and come back as messages, so the
// controller is only ever touched from Update.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/keys"
	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/ui/modal"
	"github.com/zjrosen/backoffice/internal/ui/styles"
)

// Loader fetches the options of one option set.
type Loader interface {
	Load(ctx context.Context, key string) ([]form.Option, error)
}

// Config describes the form to mount.
type Config struct {
	Definition form.Definition
	Record     form.Record       // nil for a new record
	Context    map[string]string // creation context, see form.NewController
	Loader     Loader

	// StayOpen keeps a new-record form open after each create, cleared for
	// the next entry.
	StayOpen bool
	// Width of the dialog. Default 60.
	Width int

	// Message factories; nil uses the package message types.
	OnCreated func(form.Record) tea.Msg
	OnUpdated func(form.Record) tea.Msg
	OnDeleted func(id string) tea.Msg
	OnClose   func() tea.Msg
}

// CreatedMsg is sent after a record was created.
type CreatedMsg struct {
	Form       string
	Collection string
	Record     form.Record
}

// UpdatedMsg is sent after a record was updated.
type UpdatedMsg struct {
	Form       string
	Collection string
	Record     form.Record
}

// DeletedMsg is sent after a record was deleted.
type DeletedMsg struct {
	Form       string
	Collection string
	ID         string
}

// ClosedMsg is sent when the operator cancels the form.
type ClosedMsg struct {
	Form string
}

// optionsLoadedMsg carries one option set load back into Update.
type optionsLoadedMsg struct {
	host int64
	key  string
	opts []form.Option
	err  error
}

// resultMsg carries a finished adapter call back into Update.
type resultMsg struct {
	host int64
	res  form.Result
}

type button int

const (
	buttonSave button = iota
	buttonDelete
	buttonCancel
)

const (
	zoneSave   = "host-save"
	zoneDelete = "host-delete"
	zoneCancel = "host-cancel"
	zoneField  = "host-field-"
)

// hostSeq tags messages so that results addressed to a host that has since
// been replaced are dropped.
var hostSeq atomic.Int64

// Model is the form dialog.
type Model struct {
	cfg  Config
	ctrl *form.Controller
	id   int64

	fields []fieldView
	focus  int

	spinner spinner.Model
	help    help.Model

	confirm     modal.Model
	confirming  bool
	closed      bool
	width       int
	height      int
	dialogWidth int
}

// New mounts cfg.Definition on a fresh controller.
func New(cfg Config) (Model, error) {
	ctrl, err := form.NewController(cfg.Definition, cfg.Record, cfg.Context)
	if err != nil {
		return Model{}, err
	}
	width := cfg.Width
	if width == 0 {
		width = 60
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	m := Model{
		cfg:         cfg,
		ctrl:        ctrl,
		id:          hostSeq.Add(1),
		spinner:     sp,
		help:        help.New(),
		dialogWidth: width,
	}
	values := ctrl.Values()
	for _, f := range cfg.Definition.Fields {
		m.fields = append(m.fields, newFieldView(f, values[f.Name], width-4))
	}
	m = m.setFocus(0)
	log.Debug(log.CatUI, "form mounted", "form", cfg.Definition.Name, "id", ctrl.Identity())
	return m, nil
}

// Init loads every option set the form uses.
func (m Model) Init() tea.Cmd {
	sets := m.cfg.Definition.OptionSets()
	if len(sets) == 0 {
		return textinput.Blink
	}
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	for _, k := range sets {
		cmds = append(cmds, m.loadOptions(k))
	}
	return tea.Batch(cmds...)
}

func (m Model) loadOptions(optionKey string) tea.Cmd {
	host, loader := m.id, m.cfg.Loader
	return func() tea.Msg {
		if loader == nil {
			return optionsLoadedMsg{host: host, key: optionKey, err: errors.New("no option loader configured")}
		}
		opts, err := loader.Load(context.Background(), optionKey)
		return optionsLoadedMsg{host: host, key: optionKey, opts: opts, err: err}
	}
}

// Controller exposes the underlying controller.
func (m Model) Controller() *form.Controller { return m.ctrl }

// Definition returns the mounted form definition.
func (m Model) Definition() form.Definition { return m.cfg.Definition }

// Closed reports whether the last operation ended the dialog. The parent
// unmounts a closed host.
func (m Model) Closed() bool { return m.closed }

// Confirming reports whether the delete confirmation is showing.
func (m Model) Confirming() bool { return m.confirming }

// SetSize records the terminal size used for centering.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.confirm.SetSize(width, height)
	return m
}

// Load points the dialog at rec. See form.Controller.Load.
func (m Model) Load(rec form.Record) (Model, error) {
	if err := m.ctrl.Load(rec); err != nil {
		return m, err
	}
	m.cfg.Record = rec
	m.closed = false
	m.confirming = false
	m.syncInputs()
	return m.setFocus(0), nil
}

// Reopen shows the dialog again with the record's stored values.
func (m Model) Reopen() (Model, error) {
	if err := m.ctrl.Reopen(); err != nil {
		return m, err
	}
	m.closed = false
	m.confirming = false
	m.syncInputs()
	return m.setFocus(0), nil
}

// ConfirmDelete opens the delete confirmation, as the delete key does. It
// does nothing for a new record or a create-only form.
func (m Model) ConfirmDelete() (Model, tea.Cmd) {
	return m.askDelete()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case optionsLoadedMsg:
		if msg.host != m.id {
			return m, nil
		}
		m.ctrl.OptionsLoaded(msg.key, msg.opts, msg.err)
		return m, nil

	case resultMsg:
		if msg.host != m.id {
			return m, nil
		}
		return m.finish(msg.res)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case modal.ConfirmMsg:
		if !m.confirming {
			return m, nil
		}
		m.confirming = false
		return m.startDelete()

	case modal.CancelMsg:
		m.confirming = false
		return m, nil

	case tea.MouseMsg:
		if m.confirming {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.confirming {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	if idx, ok := m.focusedField(); ok && m.fields[idx].hasInput() {
		var cmd tea.Cmd
		m.fields[idx].input, cmd = m.fields[idx].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// A submission in flight owns the form until its result arrives.
	if m.ctrl.Status() == form.StatusSaving {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Form.Save):
		return m.submit()
	case key.Matches(msg, keys.Form.Delete):
		return m.askDelete()
	case key.Matches(msg, keys.Form.Cancel):
		return m.cancel()
	case key.Matches(msg, keys.Form.Next):
		return m.setFocus(m.focus + 1), nil
	case key.Matches(msg, keys.Form.Prev):
		return m.setFocus(m.focus - 1), nil
	}

	if b, ok := m.focusedButton(); ok {
		switch {
		case key.Matches(msg, keys.Form.Activate):
			return m.press(b)
		case key.Matches(msg, keys.Form.OptPrev):
			return m.setFocus(m.focus - 1), nil
		case key.Matches(msg, keys.Form.OptNext):
			return m.setFocus(m.focus + 1), nil
		}
		return m, nil
	}

	idx, ok := m.focusedField()
	if !ok {
		return m, nil
	}
	fv := m.fields[idx]

	if key.Matches(msg, keys.Form.Activate) {
		return m.setFocus(m.focus + 1), nil
	}

	if fv.isSelect() {
		current := m.ctrl.Values()[fv.field.Name]
		switch {
		case key.Matches(msg, keys.Form.OptNext):
			if opts, ready := m.options(fv.field); ready {
				m.setValue(fv.field.Name, cycle(opts, current, 1))
			}
		case key.Matches(msg, keys.Form.OptPrev):
			if opts, ready := m.options(fv.field); ready {
				m.setValue(fv.field.Name, cycle(opts, current, -1))
			}
		case key.Matches(msg, keys.Form.Clear):
			m.setValue(fv.field.Name, "")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[idx].input, cmd = m.fields[idx].input.Update(msg)
	if v := m.fields[idx].input.Value(); v != m.ctrl.Values()[fv.field.Name] {
		m.setValue(fv.field.Name, v)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	if m.ctrl.Status() == form.StatusSaving {
		return m, nil
	}
	for _, b := range m.buttons() {
		if z := zone.Get(b.zone()); z != nil && z.InBounds(msg) {
			return m.press(b)
		}
	}
	for pos, idx := range m.focusableFields() {
		if z := zone.Get(fmt.Sprintf("%s%d", zoneField, idx)); z != nil && z.InBounds(msg) {
			return m.setFocus(pos), nil
		}
	}
	return m, nil
}

func (m Model) setValue(name, value string) {
	if err := m.ctrl.SetValue(name, value); err != nil {
		log.Debug(log.CatUI, "edit rejected", "form", m.cfg.Definition.Name, "field", name, "error", err.Error())
	}
}

func (m Model) press(b button) (Model, tea.Cmd) {
	switch b {
	case buttonSave:
		return m.submit()
	case buttonDelete:
		return m.askDelete()
	default:
		return m.cancel()
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	op, err := m.ctrl.Submit()
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			m = m.focusFirstInvalid(verr)
		}
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.run(op))
}

func (m Model) askDelete() (Model, tea.Cmd) {
	if !m.canDelete() {
		return m, nil
	}
	m.confirm = modal.New(modal.Config{
		Title:          "Delete " + m.cfg.Definition.Title,
		Message:        "This record will be removed permanently.",
		ConfirmLabel:   "Delete",
		ConfirmVariant: modal.ButtonDanger,
	})
	m.confirm.SetSize(m.width, m.height)
	m.confirming = true
	return m, nil
}

func (m Model) startDelete() (Model, tea.Cmd) {
	op, err := m.ctrl.Delete(true)
	if err != nil {
		log.Debug(log.CatUI, "delete not started", "form", m.cfg.Definition.Name, "error", err.Error())
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.run(op))
}

func (m Model) cancel() (Model, tea.Cmd) {
	if err := m.ctrl.Cancel(); err != nil {
		log.Warn(log.CatUI, "cancel failed", "form", m.cfg.Definition.Name, "error", err.Error())
		if errors.Is(err, form.ErrBusy) {
			return m, nil
		}
	}
	m.closed = true
	return m, m.emit(m.closeMsg())
}

func (m Model) run(op *form.Operation) tea.Cmd {
	host := m.id
	return func() tea.Msg {
		return resultMsg{host: host, res: op.Run(context.Background())}
	}
}

func (m Model) finish(res form.Result) (Model, tea.Cmd) {
	outcome, applied := m.ctrl.Finish(res)
	if !applied || !outcome.Succeeded() {
		return m, nil
	}

	switch outcome.Kind {
	case form.OpCreate:
		msg := m.createdMsg(outcome.Record)
		if m.cfg.StayOpen {
			if err := m.ctrl.ResetForReuse(); err != nil {
				log.Warn(log.CatUI, "reset after create failed", "form", m.cfg.Definition.Name, "error", err.Error())
			}
			m.syncInputs()
			return m.setFocus(0), m.emit(msg)
		}
		m.closed = true
		return m, m.emit(msg)
	case form.OpUpdate:
		m.cfg.Record = m.ctrl.Record()
		m.closed = true
		return m, m.emit(m.updatedMsg(outcome.Record))
	case form.OpDelete:
		m.closed = true
		return m, m.emit(m.deletedMsg(outcome.ID))
	}
	return m, nil
}

func (m Model) emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m Model) createdMsg(rec form.Record) tea.Msg {
	if m.cfg.OnCreated != nil {
		return m.cfg.OnCreated(rec)
	}
	return CreatedMsg{Form: m.cfg.Definition.Name, Collection: m.cfg.Definition.Collection, Record: rec}
}

func (m Model) updatedMsg(rec form.Record) tea.Msg {
	if m.cfg.OnUpdated != nil {
		return m.cfg.OnUpdated(rec)
	}
	return UpdatedMsg{Form: m.cfg.Definition.Name, Collection: m.cfg.Definition.Collection, Record: rec}
}

func (m Model) deletedMsg(id string) tea.Msg {
	if m.cfg.OnDeleted != nil {
		return m.cfg.OnDeleted(id)
	}
	return DeletedMsg{Form: m.cfg.Definition.Name, Collection: m.cfg.Definition.Collection, ID: id}
}

func (m Model) closeMsg() tea.Msg {
	if m.cfg.OnClose != nil {
		return m.cfg.OnClose()
	}
	return ClosedMsg{Form: m.cfg.Definition.Name}
}

// busy reports whether anything is worth animating.
func (m Model) busy() bool {
	if m.ctrl.Status() == form.StatusSaving {
		return true
	}
	for _, k := range m.cfg.Definition.OptionSets() {
		if set, ok := m.ctrl.OptionSet(k); ok && set.State() == form.OptionsLoading {
			return true
		}
	}
	return false
}

func (m Model) canDelete() bool {
	return !m.cfg.Definition.CreateOnly && !m.ctrl.IsNew()
}

func (m Model) buttons() []button {
	if m.canDelete() {
		return []button{buttonSave, buttonDelete, buttonCancel}
	}
	return []button{buttonSave, buttonCancel}
}

func (b button) zone() string {
	switch b {
	case buttonSave:
		return zoneSave
	case buttonDelete:
		return zoneDelete
	default:
		return zoneCancel
	}
}

// focusableFields returns the indexes of fields the cursor can stop on.
func (m Model) focusableFields() []int {
	var out []int
	for i, f := range m.fields {
		if f.editable() {
			out = append(out, i)
		}
	}
	return out
}

func (m Model) focusedField() (int, bool) {
	fields := m.focusableFields()
	if m.focus < len(fields) {
		return fields[m.focus], true
	}
	return 0, false
}

func (m Model) focusedButton() (button, bool) {
	n := len(m.focusableFields())
	btns := m.buttons()
	if m.focus >= n && m.focus-n < len(btns) {
		return btns[m.focus-n], true
	}
	return 0, false
}

// setFocus moves the cursor, wrapping at both ends.
func (m Model) setFocus(pos int) Model {
	total := len(m.focusableFields()) + len(m.buttons())
	m.focus = ((pos % total) + total) % total
	current, hasField := m.focusedField()
	for i := range m.fields {
		if !m.fields[i].hasInput() {
			continue
		}
		if hasField && i == current {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
	return m
}

func (m Model) focusFirstInvalid(verr *form.ValidationError) Model {
	for pos, idx := range m.focusableFields() {
		if _, bad := verr.Fields[m.fields[idx].field.Name]; bad {
			return m.setFocus(pos)
		}
	}
	return m
}
