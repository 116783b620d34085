package form

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newContactController(t *testing.T, rec Record) (*Controller, *fakeAdapter) {
	t.Helper()
	a := &fakeAdapter{}
	c, err := NewController(contactDefinition(a), rec, nil)
	require.NoError(t, err)
	return c, a
}

func TestController_CreateContact(t *testing.T) {
	c, a := newContactController(t, nil)
	a.record = Record{"id": json7, "department": "Ops", "email": "a@b.com", "phone": nil}

	require.NoError(t, c.SetValue("department", "Ops"))
	require.NoError(t, c.SetValue("email", "a@b.com"))

	op, err := c.Submit()
	require.NoError(t, err)
	require.Equal(t, OpCreate, op.Kind)
	require.Equal(t, StatusSaving, c.Status())
	require.False(t, c.Snapshot().Editable())

	outcome, applied := c.Finish(op.Run(context.Background()))
	require.True(t, applied)
	require.True(t, outcome.Succeeded())
	require.Equal(t, StatusSuccess, c.Status())
	require.Equal(t, a.record, outcome.Record)

	require.Len(t, a.creates, 1)
	require.Equal(t, Payload{"department": "Ops", "email": "a@b.com", "phone": nil}, a.creates[0])
}

func TestController_RequiredBlankNeverReachesAdapter(t *testing.T) {
	c, a := newContactController(t, nil)
	require.NoError(t, c.SetValue("email", "a@b.com"))

	op, err := c.Submit()
	require.Nil(t, op)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, map[string]string{"department": "required"}, verr.Fields)
	require.Equal(t, StatusIdle, c.Status())
	require.Equal(t, "required", c.Snapshot().Fields["department"].Error)
	require.Equal(t, 0, a.calls())
}

func TestController_InvalidNumberNeverReachesAdapter(t *testing.T) {
	for _, in := range []string{"NaN", ".5", "+5", "05", "5.", "Inf", "1e400"} {
		t.Run(in, func(t *testing.T) {
			c, a := newCleaningController(t, nil)
			require.NoError(t, c.SetValue("hours", in))

			op, err := c.Submit()
			require.Nil(t, op)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, map[string]string{"hours": "must be a number"}, verr.Fields)
			require.Equal(t, StatusIdle, c.Status())
			require.Equal(t, 0, a.calls())
		})
	}
}

func TestController_SubmitWhileSavingIsNoOp(t *testing.T) {
	c, a := newContactController(t, nil)
	require.NoError(t, c.SetValue("department", "Ops"))
	require.NoError(t, c.SetValue("email", "a@b.com"))

	op, err := c.Submit()
	require.NoError(t, err)

	second, err := c.Submit()
	require.Nil(t, second)
	require.ErrorIs(t, err, ErrBusy)
	require.ErrorIs(t, c.SetValue("email", "x@y.com"), ErrBusy)
	require.ErrorIs(t, c.Cancel(), ErrBusy)

	c.Finish(op.Run(context.Background()))
	require.Len(t, a.creates, 1)
}

func TestController_UpdateFailureKeepsValues(t *testing.T) {
	c, a := newCleaningController(t, Record{"id": json7, "status": "pending"})
	a.err = &serverError{detail: "stale version", msg: "409 Conflict"}

	require.NoError(t, c.SetValue("status", "done"))
	op, err := c.Submit()
	require.NoError(t, err)
	require.Equal(t, OpUpdate, op.Kind)
	require.Equal(t, "7", op.ID)

	outcome, applied := c.Finish(op.Run(context.Background()))
	require.True(t, applied)
	require.False(t, outcome.Succeeded())
	require.Equal(t, "stale version", outcome.Err.Message)

	snap := c.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.True(t, snap.Editable())
	require.Equal(t, "stale version", snap.SubmitError)
	require.Equal(t, "done", snap.Fields["status"].Value)
	require.Equal(t, []string{"7"}, a.updateID)

	// Retrying is allowed and clears the banner while saving.
	a.err = nil
	op, err = c.Submit()
	require.NoError(t, err)
	require.Empty(t, c.Snapshot().SubmitError)
	_, applied = c.Finish(op.Run(context.Background()))
	require.True(t, applied)
	require.Equal(t, StatusSuccess, c.Status())
}

func TestController_TransportErrorMessage(t *testing.T) {
	c, a := newContactController(t, Record{"id": json7, "department": "Ops", "email": "a@b.com"})
	a.err = errTransport

	_, err := c.SubmitAndWait(context.Background())

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, errTransport.Error(), serr.Message)
	require.ErrorIs(t, err, errTransport)
	require.Equal(t, errTransport.Error(), c.Snapshot().SubmitError)
}

func TestController_DeleteWithoutIdentity(t *testing.T) {
	c, a := newContactController(t, nil)

	op, err := c.Delete(true)
	require.Nil(t, op)
	require.ErrorIs(t, err, ErrNoIdentity)
	require.Equal(t, StatusIdle, c.Status())
	require.Equal(t, 0, a.calls())
}

func TestController_DeleteRequiresConfirmation(t *testing.T) {
	c, a := newContactController(t, Record{"id": json7, "department": "Ops", "email": "a@b.com"})

	_, err := c.Delete(false)
	require.ErrorIs(t, err, ErrNotConfirmed)
	require.Equal(t, 0, a.calls())

	op, err := c.Delete(true)
	require.NoError(t, err)
	outcome, applied := c.Finish(op.Run(context.Background()))
	require.True(t, applied)
	require.Equal(t, OpDelete, outcome.Kind)
	require.Equal(t, "7", outcome.ID)
	require.Equal(t, []string{"7"}, a.removes)
}

func TestController_StaleResultDiscardedAfterLoad(t *testing.T) {
	c, a := newContactController(t, Record{"id": json7, "department": "Ops", "email": "a@b.com"})
	a.record = Record{"id": json7, "department": "Ops", "email": "a@b.com"}

	op, err := c.Submit()
	require.NoError(t, err)

	other := Record{"id": "8", "department": "Sales", "email": "s@b.com"}
	require.NoError(t, c.Load(other))
	require.Equal(t, StatusIdle, c.Status())

	_, applied := c.Finish(op.Run(context.Background()))
	require.False(t, applied)

	snap := c.Snapshot()
	require.Equal(t, "8", snap.Identity)
	require.Equal(t, "Sales", snap.Fields["department"].Value)
	require.Equal(t, StatusIdle, snap.Status)
}

func TestController_LoadSameIdentityKeepsEdits(t *testing.T) {
	rec := Record{"id": json7, "department": "Ops", "email": "a@b.com"}
	c, _ := newContactController(t, rec)
	require.NoError(t, c.SetValue("department", "Edited"))

	require.NoError(t, c.Load(Record{"id": "7", "department": "Server", "email": "a@b.com"}))
	require.Equal(t, "Edited", c.Values()["department"])
}

func TestController_LoadRejectsUnrepresentableRecord(t *testing.T) {
	c, _ := newContactController(t, Record{"id": json7, "department": "Ops", "email": "a@b.com"})

	err := c.Load(Record{"id": "9", "department": map[string]any{"nested": true}})
	require.Error(t, err)
	require.Equal(t, "7", c.Identity())
	require.Equal(t, "Ops", c.Values()["department"])
}

func TestController_RoundTripUnchangedRecord(t *testing.T) {
	rec := Record{
		"id":       json7,
		"employee": json.Number("4"),
		"division": "D",
		"city":     "C",
		"status":   "pending",
		"hours":    json.Number("3.5"),
	}
	c, a := newCleaningController(t, rec)
	a.record = rec

	_, err := c.SubmitAndWait(context.Background())
	require.NoError(t, err)

	require.Equal(t, Payload{
		"employee": json.Number("4"),
		"division": "D",
		"city":     "C",
		"status":   "pending",
		"hours":    json.Number("3.5"),
	}, a.updates[0])
}

func TestController_CreateMergesContext(t *testing.T) {
	a := &fakeAdapter{}
	c, err := NewController(contactDefinition(a), nil, map[string]string{
		"department": "Ops",
		"company_id": "12",
	})
	require.NoError(t, err)
	require.Equal(t, "Ops", c.Values()["department"])

	require.NoError(t, c.SetValue("email", "a@b.com"))
	_, err = c.SubmitAndWait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "12", a.creates[0]["company_id"])
}

func TestController_CancelDiscardsEdits(t *testing.T) {
	c, a := newContactController(t, Record{"id": json7, "department": "Ops", "email": "a@b.com"})
	require.NoError(t, c.SetValue("department", "Edited"))
	c.reg.ValidateAll()

	require.NoError(t, c.Cancel())

	st := c.Snapshot().Fields["department"]
	require.Equal(t, FieldState{Value: "Ops"}, st)
	require.Equal(t, 0, a.calls())
}

func TestController_ResetForReuse(t *testing.T) {
	c, a := newContactController(t, nil)
	a.record = Record{"id": json7}
	require.NoError(t, c.SetValue("department", "Ops"))
	require.NoError(t, c.SetValue("email", "a@b.com"))
	_, err := c.SubmitAndWait(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, c.Status())

	require.NoError(t, c.ResetForReuse())
	require.Equal(t, StatusIdle, c.Status())
	require.True(t, c.IsNew())
	require.Equal(t, "", c.Values()["department"])
}

func TestController_ReopenAfterSuccess(t *testing.T) {
	updated := Record{"id": json7, "department": "Server", "email": "a@b.com"}
	c, a := newContactController(t, Record{"id": json7, "department": "Ops", "email": "a@b.com"})
	a.record = updated

	require.NoError(t, c.SetValue("department", "Mine"))
	_, err := c.SubmitAndWait(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Reopen())
	require.Equal(t, "Server", c.Values()["department"], "reopens with the server's record")
}

func TestController_SubscribeReceivesSnapshots(t *testing.T) {
	c, _ := newContactController(t, nil)

	var got []Snapshot
	unsubscribe := c.Subscribe(func(s Snapshot) { got = append(got, s) })

	require.NoError(t, c.SetValue("department", "Ops"))
	require.Len(t, got, 1)
	require.Equal(t, "Ops", got[0].Fields["department"].Value)

	unsubscribe()
	require.NoError(t, c.SetValue("department", "Sales"))
	require.Len(t, got, 1)
}

func TestController_UnknownAndReadOnlyFields(t *testing.T) {
	c, _ := newCleaningController(t, nil)
	require.ErrorIs(t, c.SetValue("nope", "x"), ErrUnknownField)
	require.ErrorIs(t, c.SetValue("city", "x"), ErrReadOnly)
}

func TestController_ChoicesAreEnforced(t *testing.T) {
	c, a := newCleaningController(t, nil)
	require.NoError(t, c.SetValue("status", "archived"))

	_, err := c.Submit()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "must be one of pending, done", verr.Fields["status"])
	require.Equal(t, 0, a.calls())
}

func TestController_NoAdapter(t *testing.T) {
	def := contactDefinition(nil)
	def.Adapter = nil
	c, err := NewController(def, Record{"id": json7, "department": "Ops", "email": "a@b.com"}, nil)
	require.NoError(t, err)

	_, err = c.SubmitAndWait(context.Background())
	require.EqualError(t, err, "no adapter configured")
	require.Equal(t, StatusIdle, c.Status())
}
