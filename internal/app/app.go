// Package app contains the root application model.
//
// The app walks the operator from a menu of forms to a record list, and
// mounts a form host over the list for creating, editing and deleting. It
// owns the shared services: the option loader, the record change broker, the
// toaster, the config watcher and the debug log overlay.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/backoffice/internal/config"
	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/forms"
	"github.com/zjrosen/backoffice/internal/keys"
	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/options"
	"github.com/zjrosen/backoffice/internal/pubsub"
	"github.com/zjrosen/backoffice/internal/ui/host"
	"github.com/zjrosen/backoffice/internal/ui/logoverlay"
	"github.com/zjrosen/backoffice/internal/ui/styles"
	"github.com/zjrosen/backoffice/internal/ui/table"
	"github.com/zjrosen/backoffice/internal/ui/toaster"
	"github.com/zjrosen/backoffice/internal/watcher"
)

// OptionSource loads option sets for form hosts and forgets cached sets
// when a collection changes.
type OptionSource interface {
	host.Loader
	InvalidateCollection(ctx context.Context, collection string)
}

// Deps are the services the app runs on.
type Deps struct {
	Config     config.Config
	ConfigPath string // watched for theme changes when non-empty
	Forms      []forms.Form
	// Records lists a collection for the record list screen.
	Records func(collection string) options.Lister
	Options OptionSource
	// Broker carries record changes; nil creates a private one.
	Broker *pubsub.Broker[pubsub.RecordChange]
	Debug  bool
}

type screen int

const (
	screenMenu screen = iota
	screenList
)

// recordsLoadedMsg carries the records of the list screen. labels maps an
// option set key to value -> label for option-backed columns.
type recordsLoadedMsg struct {
	form   string
	rows   []form.Record
	labels map[string]map[string]string
	err    error
}

type configChangedMsg struct{}

var keyLogs = key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "logs"))

// Model is the root application state.
type Model struct {
	deps Deps
	cfg  config.Config

	screen screen
	menu   int

	// Record list for the form at current.
	current int
	table   table.Model
	cells   *cells
	loading bool
	listErr string

	host     host.Model
	hostOpen bool

	money   money
	help    help.Model
	toaster toaster.Model

	debug        bool
	logOverlay   logoverlay.Model
	logListener  *log.LogListener
	logCancel    context.CancelFunc
	changes      *pubsub.ContinuousListener[pubsub.RecordChange]
	changeCancel context.CancelFunc

	watcher       *watcher.Watcher
	configChanged <-chan struct{}

	width  int
	height int
}

// New creates the application model.
func New(deps Deps) Model {
	if deps.Broker == nil {
		deps.Broker = pubsub.NewBroker[pubsub.RecordChange]()
	}

	m := Model{
		deps:       deps,
		cfg:        deps.Config,
		money:      newMoney(deps.Config.Display),
		help:       help.New(),
		toaster:    toaster.New(),
		debug:      deps.Debug,
		logOverlay: logoverlay.New(),
	}

	var ctx context.Context
	ctx, m.changeCancel = context.WithCancel(context.Background())
	collections := make([]string, len(deps.Forms))
	for i, f := range deps.Forms {
		collections[i] = f.Collection
	}
	m.changes = pubsub.NewFilteredListener(ctx, deps.Broker, pubsub.ForCollections(collections...))

	if deps.Debug {
		var logCtx context.Context
		logCtx, m.logCancel = context.WithCancel(context.Background())
		m.logListener = log.NewListener(logCtx)
	}

	if deps.ConfigPath != "" {
		w, err := watcher.File(deps.ConfigPath)
		if err != nil {
			log.Warn(log.CatWatcher, "config watcher not started", "error", err.Error())
		} else {
			m.watcher = w
			m.configChanged = w.Changes()
		}
	}
	return m
}

// Init starts the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.changes.Listen()}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if m.configChanged != nil {
		cmds = append(cmds, m.waitForConfig())
	}
	return tea.Batch(cmds...)
}

func (m Model) waitForConfig() tea.Cmd {
	ch := m.configChanged
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.table.SetSize(msg.Width, m.listHeight())
		m.logOverlay.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		if m.hostOpen {
			m.host = m.host.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case log.LogEvent:
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		if m.logListener != nil {
			return m, tea.Batch(cmd, m.logListener.Listen())
		}
		return m, cmd

	case logoverlay.CloseMsg:
		m.logOverlay.Hide()
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case configChangedMsg:
		return m.reloadConfig()

	case pubsub.Event[pubsub.RecordChange]:
		return m.handleRecordChange(msg.Payload)

	case recordsLoadedMsg:
		return m.handleRecordsLoaded(msg), nil

	case host.CreatedMsg:
		return m.handleSaved(pubsub.CreatedEvent, msg.Collection, msg.Record.ID(), msg.Record, "created")
	case host.UpdatedMsg:
		return m.handleSaved(pubsub.UpdatedEvent, msg.Collection, msg.Record.ID(), msg.Record, "updated")
	case host.DeletedMsg:
		return m.handleSaved(pubsub.DeletedEvent, msg.Collection, msg.ID, nil, "deleted")
	case host.ClosedMsg:
		m.hostOpen = false
		return m, nil

	case tea.KeyMsg:
		if m.debug && key.Matches(msg, keyLogs) {
			m.logOverlay.Toggle()
			return m, nil
		}
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		if m.hostOpen {
			return m.updateHost(msg)
		}
		if msg.String() == "?" {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.screen == screenList {
			return m.updateList(msg)
		}
		return m.updateMenu(msg)

	case tea.MouseMsg:
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}
		if m.hostOpen {
			return m.updateHost(msg)
		}
		if m.screen == screenList {
			return m.mouseList(msg)
		}
		return m.mouseMenu(msg)
	}

	// Spinner ticks, cursor blinks and the host's own results.
	if m.hostOpen {
		return m.updateHost(msg)
	}
	return m, nil
}

func (m Model) updateHost(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.host, cmd = m.host.Update(msg)
	return m, cmd
}

// openHost mounts the form at index over the current screen. rec is nil for
// a new record.
func (m Model) openHost(index int, rec form.Record) (Model, tea.Cmd) {
	f := m.deps.Forms[index]
	h, err := host.New(host.Config{
		Definition: f.Definition,
		Record:     rec,
		Loader:     m.deps.Options,
		StayOpen:   m.cfg.StayOpen(f.Name, f.StayOpen),
		Width:      min(64, max(m.width-4, 40)),
	})
	if err != nil {
		log.ErrorErr(log.CatUI, "cannot open form", err, "form", f.Name)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(fmt.Sprintf("Cannot open %s: %v", f.Title, err), toaster.StyleError, toaster.DefaultDuration)
		return m, cmd
	}
	m.host = h.SetSize(m.width, m.height)
	m.hostOpen = true
	return m, m.host.Init()
}

func (m Model) handleSaved(ev pubsub.EventType, collection, id string, rec form.Record, verb string) (tea.Model, tea.Cmd) {
	if m.hostOpen && m.host.Closed() {
		m.hostOpen = false
	}
	m.deps.Broker.Publish(ev, pubsub.RecordChange{Collection: collection, ID: id, Record: rec})

	title := collection
	if f, ok := m.formFor(collection); ok {
		title = f.Title
	}
	text := fmt.Sprintf("%s %s", title, verb)
	if id != "" && ev != pubsub.CreatedEvent {
		text = fmt.Sprintf("%s #%s %s", title, id, verb)
	}
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(text, toaster.StyleSuccess, toaster.DefaultDuration)
	return m, cmd
}

func (m Model) handleRecordChange(change pubsub.RecordChange) (tea.Model, tea.Cmd) {
	if m.deps.Options != nil {
		m.deps.Options.InvalidateCollection(context.Background(), change.Collection)
	}
	cmds := []tea.Cmd{m.changes.Listen()}
	if m.screen == screenList && m.deps.Forms[m.current].Collection == change.Collection {
		log.Debug(log.CatUI, "refreshing list after change", "collection", change.Collection, "id", change.ID)
		cmds = append(cmds, m.loadRecords(m.current))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) reloadConfig() (tea.Model, tea.Cmd) {
	next := m.waitForConfig()
	cfg, err := config.LoadFile(m.deps.ConfigPath)
	if err != nil {
		log.ErrorErr(log.CatConfig, "config reload failed", err, "path", m.deps.ConfigPath)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show("Config not reloaded: "+err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return m, tea.Batch(cmd, next)
	}
	if err := styles.ApplyTheme(styles.ThemeConfig{Preset: cfg.Theme.Preset, Colors: cfg.Theme.FlattenedColors()}); err != nil {
		log.ErrorErr(log.CatConfig, "theme not applied", err)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show("Theme not applied: "+err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return m, tea.Batch(cmd, next)
	}
	m.cfg = cfg
	m.money = newMoney(cfg.Display)
	if m.cells != nil {
		m.cells.money = m.money
	}
	log.Info(log.CatConfig, "config reloaded", "path", m.deps.ConfigPath)
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show("Config reloaded", toaster.StyleInfo, toaster.DefaultDuration)
	return m, tea.Batch(cmd, next)
}

func (m Model) formFor(collection string) (forms.Form, bool) {
	for _, f := range m.deps.Forms {
		if f.Collection == collection {
			return f, true
		}
	}
	return forms.Form{}, false
}

// View implements tea.Model.
func (m Model) View() string {
	var view string
	if m.screen == screenList {
		view = m.listView()
	} else {
		view = m.menuView()
	}
	if m.hostOpen {
		view = m.host.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debug && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

// Close releases the watcher and listeners.
func (m *Model) Close() error {
	if m.logCancel != nil {
		m.logCancel()
	}
	if m.changeCancel != nil {
		m.changeCancel()
	}
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			return err
		}
	}
	return nil
}

// helpView renders the key hints for the current screen.
func (m Model) helpView() string {
	var km help.KeyMap = keys.Menu
	if m.screen == screenList {
		km = keys.List
	}
	return styles.StatusBarStyle.Render(m.help.View(km))
}

// timeout bounds list and option requests started by the app.
const timeout = 30 * time.Second
