package host

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/backoffice/internal/form"
	"github.com/zjrosen/backoffice/internal/forms"
	"github.com/zjrosen/backoffice/internal/ui/modal"
)

func init() {
	zone.NewGlobal()
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fakeAdapter struct {
	creates []form.Payload
	updates []form.Payload
	removes []string

	record form.Record
	err    error
}

func (a *fakeAdapter) Create(_ context.Context, p form.Payload) (form.Record, error) {
	a.creates = append(a.creates, p)
	return a.record, a.err
}

func (a *fakeAdapter) Update(_ context.Context, _ string, p form.Payload) (form.Record, error) {
	a.updates = append(a.updates, p)
	return a.record, a.err
}

func (a *fakeAdapter) Remove(_ context.Context, id string) (string, error) {
	a.removes = append(a.removes, id)
	if a.err != nil {
		return "", a.err
	}
	return id, nil
}

type fakeLoader struct {
	sets map[string][]form.Option
	errs map[string]error
}

func (l fakeLoader) Load(_ context.Context, key string) ([]form.Option, error) {
	if err := l.errs[key]; err != nil {
		return nil, err
	}
	return l.sets[key], nil
}

var departments = fakeLoader{sets: map[string][]form.Option{
	forms.OptionDepartments: {
		{Value: "Kitchen", Label: "Kitchen"},
		{Value: "Front desk", Label: "Front desk"},
	},
	forms.OptionEmployees: {
		{Value: "12", Label: "Marta Diaz", Attrs: map[string]string{"division": "North", "city": "Lyon"}},
		{Value: "14", Label: "Ana Reyes", Attrs: map[string]string{"division": "South", "city": "Nice"}},
	},
}}

var storedContact = form.Record{
	"id":         json.Number("7"),
	"name":       "Ana Reyes",
	"department": "Kitchen",
	"email":      "ana@example.com",
	"phone":      nil,
}

// drain runs cmd and everything it leads to, feeding the host's own
// messages back into Update. Everything else is returned in order.
func drain(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case optionsLoadedMsg, resultMsg, modal.ConfirmMsg, modal.CancelMsg:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		case spinner.TickMsg:
		default:
			out = append(out, msg)
		}
	}
	return m, out
}

func mount(t *testing.T, cfg Config) Model {
	t.Helper()
	if cfg.Loader == nil {
		cfg.Loader = departments
	}
	m, err := New(cfg)
	require.NoError(t, err)
	m, _ = drain(t, m, m.Init())
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestCreateContactSendsNullPhone(t *testing.T) {
	created := form.Record{"id": json.Number("8"), "name": "Ana Reyes"}
	adapter := &fakeAdapter{record: created}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition})

	m = typeText(m, "Ana Reyes")
	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyRight)
	m, _ = press(m, tea.KeyTab)
	m = typeText(m, "ana@example.com")

	m, cmd := press(m, tea.KeyCtrlS)
	require.Equal(t, form.StatusSaving, m.Controller().Status())
	require.Contains(t, m.View(), "Saving")

	m, msgs := drain(t, m, cmd)
	require.Len(t, adapter.creates, 1)
	p := adapter.creates[0]
	require.Equal(t, "Ana Reyes", p["name"])
	require.Equal(t, "Kitchen", p["department"])
	require.Equal(t, "ana@example.com", p["email"])
	v, ok := p["phone"]
	require.True(t, ok)
	require.Nil(t, v)

	msg, ok := find[CreatedMsg](msgs)
	require.True(t, ok)
	require.Equal(t, CreatedMsg{Form: "contact", Collection: "contacts", Record: created}, msg)
	require.True(t, m.Closed())
}

func TestValidationFailureStaysLocal(t *testing.T) {
	adapter := &fakeAdapter{}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition})

	m, cmd := press(m, tea.KeyCtrlS)
	require.Nil(t, cmd)
	require.Empty(t, adapter.creates)
	require.Equal(t, form.StatusIdle, m.Controller().Status())

	snap := m.Controller().Snapshot()
	require.Equal(t, "required", snap.Fields["name"].Error)
	require.Contains(t, m.View(), "required")
}

func TestUpdateFailureShowsBannerAndKeepsValues(t *testing.T) {
	adapter := &fakeAdapter{err: errors.New("stale version")}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	m = typeText(m, " Jr")
	m, cmd := press(m, tea.KeyCtrlS)
	m, msgs := drain(t, m, cmd)

	require.Len(t, adapter.updates, 1)
	_, ok := find[UpdatedMsg](msgs)
	require.False(t, ok)
	require.False(t, m.Closed())
	require.Equal(t, form.StatusIdle, m.Controller().Status())
	require.Equal(t, "Ana Reyes Jr", m.Controller().Values()["name"])
	require.Contains(t, m.View(), "stale version")
}

func TestUpdateEmitsUpdatedMsg(t *testing.T) {
	updated := form.Record{"id": json.Number("7"), "name": "Ana R."}
	adapter := &fakeAdapter{record: updated}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	m, cmd := press(m, tea.KeyCtrlS)
	m, msgs := drain(t, m, cmd)

	msg, ok := find[UpdatedMsg](msgs)
	require.True(t, ok)
	require.Equal(t, updated, msg.Record)
	require.True(t, m.Closed())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	adapter := &fakeAdapter{}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	m, cmd := press(m, tea.KeyCtrlD)
	require.Nil(t, cmd)
	require.True(t, m.Confirming())
	require.Empty(t, adapter.removes)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m, msgs := drain(t, m, cmd)

	require.Equal(t, []string{"7"}, adapter.removes)
	msg, ok := find[DeletedMsg](msgs)
	require.True(t, ok)
	require.Equal(t, DeletedMsg{Form: "contact", Collection: "contacts", ID: "7"}, msg)
	require.True(t, m.Closed())
}

func TestDeleteDismissedDoesNothing(t *testing.T) {
	adapter := &fakeAdapter{}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	m, _ = press(m, tea.KeyCtrlD)
	m, cmd := press(m, tea.KeyEsc)
	m, _ = drain(t, m, cmd)

	require.False(t, m.Confirming())
	require.Empty(t, adapter.removes)
	require.False(t, m.Closed())
}

func TestDeleteUnavailableForNewRecord(t *testing.T) {
	adapter := &fakeAdapter{}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition})

	m, cmd := press(m, tea.KeyCtrlD)
	require.Nil(t, cmd)
	require.False(t, m.Confirming())
	require.NotContains(t, m.View(), "Delete")
}

func TestCancelDiscardsEdits(t *testing.T) {
	adapter := &fakeAdapter{}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	m = typeText(m, "!!")
	require.Equal(t, "Ana Reyes!!", m.Controller().Values()["name"])

	m, cmd := press(m, tea.KeyEsc)
	_, msgs := drain(t, m, cmd)

	require.Equal(t, []tea.Msg{ClosedMsg{Form: "contact"}}, msgs)
	require.True(t, m.Closed())
	require.Equal(t, "Ana Reyes", m.Controller().Values()["name"])
}

func TestStayOpenResetsAfterCreate(t *testing.T) {
	adapter := &fakeAdapter{record: form.Record{"id": "9"}}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, StayOpen: true})

	m = typeText(m, "Ana Reyes")
	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyLeft)
	require.Equal(t, "Front desk", m.Controller().Values()["department"])
	m, _ = press(m, tea.KeyTab)
	m = typeText(m, "ana@example.com")

	m, cmd := press(m, tea.KeyCtrlS)
	m, msgs := drain(t, m, cmd)

	_, ok := find[CreatedMsg](msgs)
	require.True(t, ok)
	require.False(t, m.Closed())
	require.Equal(t, form.StatusIdle, m.Controller().Status())
	require.Empty(t, m.Controller().Values()["name"])
	require.True(t, m.Controller().IsNew())
}

func TestCustomMessageFactories(t *testing.T) {
	type saved struct{ id any }
	adapter := &fakeAdapter{record: form.Record{"id": "3"}}
	m := mount(t, Config{
		Definition: forms.Contact(adapter).Definition,
		Record:     storedContact,
		OnUpdated:  func(r form.Record) tea.Msg { return saved{id: r["id"]} },
	})

	m, cmd := press(m, tea.KeyCtrlS)
	_, msgs := drain(t, m, cmd)
	require.Contains(t, msgs, saved{id: "3"})
}

func TestOptionLoadFailureIsInline(t *testing.T) {
	loader := fakeLoader{errs: map[string]error{forms.OptionDepartments: errors.New("connection refused")}}
	m := mount(t, Config{Definition: forms.Contact(&fakeAdapter{}).Definition, Loader: loader})

	view := m.View()
	require.Contains(t, view, "Could not load options: connection refused")
	require.Contains(t, view, "options unavailable")

	m = typeText(m, "Ana")
	require.Equal(t, "Ana", m.Controller().Values()["name"])
}

func TestSelectingEmployeeFillsDerivedFields(t *testing.T) {
	m := mount(t, Config{Definition: forms.Cleaning(&fakeAdapter{}).Definition})

	m, _ = press(m, tea.KeyRight)
	values := m.Controller().Values()
	require.Equal(t, "12", values["employee"])
	require.Equal(t, "North", values["division"])
	require.Equal(t, "Lyon", values["city"])

	view := m.View()
	require.Contains(t, view, "Marta Diaz")
	require.Contains(t, view, "Lyon")

	m, _ = press(m, tea.KeyBackspace)
	require.Empty(t, m.Controller().Values()["employee"])
}

func TestResultForReplacedHostIsDropped(t *testing.T) {
	adapter := &fakeAdapter{}
	old := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})
	_, cmd := press(old, tea.KeyCtrlS)
	require.NotNil(t, cmd)

	fresh := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})
	fresh, msgs := drain(t, fresh, cmd)

	_, ok := find[UpdatedMsg](msgs)
	require.False(t, ok)
	require.False(t, fresh.Closed())
}

func TestKeysIgnoredWhileSaving(t *testing.T) {
	adapter := &fakeAdapter{}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	m, _ = press(m, tea.KeyCtrlS)
	m = typeText(m, "zzz")
	m, cmd := press(m, tea.KeyEsc)
	require.Nil(t, cmd)
	require.Equal(t, "Ana Reyes", m.Controller().Values()["name"])
	require.False(t, m.Closed())
}

func TestClickSaveButton(t *testing.T) {
	adapter := &fakeAdapter{record: storedContact}
	m := mount(t, Config{Definition: forms.Contact(adapter).Definition, Record: storedContact})

	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		zone.Scan(m.View())
		z = zone.Get(zoneSave)
		return z != nil && !z.IsZero()
	}, time.Second, 10*time.Millisecond)

	m, cmd := m.Update(tea.MouseMsg{
		X:      z.StartX,
		Y:      z.StartY,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionRelease,
	})
	require.Equal(t, form.StatusSaving, m.Controller().Status())
	_, msgs := drain(t, m, cmd)
	_, ok := find[UpdatedMsg](msgs)
	require.True(t, ok)
}

func TestCycle(t *testing.T) {
	opts := []form.Option{{Value: "a"}, {Value: "b"}, {Value: "c"}}
	require.Equal(t, "a", cycle(opts, "", 1))
	require.Equal(t, "c", cycle(opts, "", -1))
	require.Equal(t, "a", cycle(opts, "c", 1))
	require.Equal(t, "c", cycle(opts, "a", -1))
	require.Equal(t, "x", cycle(nil, "x", 1))
}
