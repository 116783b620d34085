package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReceivesEvent(t *testing.T) {
	broker := NewBroker[RecordChange]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(CreatedEvent, RecordChange{Collection: "contacts", ID: "1"})

	msg := ListenCmd(ctx, ch)()

	event, ok := msg.(Event[RecordChange])
	require.True(t, ok, "msg should be Event[RecordChange]")
	require.Equal(t, "contacts", event.Payload.Collection)
	require.Equal(t, CreatedEvent, event.Type)
}

func TestListenCmd_ContextCancelled(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.Nil(t, ListenCmd(ctx, ch)(), "should return nil when context cancelled")
}

func TestContinuousListener_Listen(t *testing.T) {
	broker := NewBroker[RecordChange]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewContinuousListener(ctx, broker)
	broker.Publish(DeletedEvent, RecordChange{Collection: "ledger", ID: "9"})

	msg := listener.Listen()()
	event, ok := msg.(Event[RecordChange])
	require.True(t, ok)
	require.Equal(t, "9", event.Payload.ID)
}

func TestFilteredListener_SkipsOtherCollections(t *testing.T) {
	broker := NewBroker[RecordChange]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewFilteredListener(ctx, broker, ForCollections("employees"))
	broker.Publish(CreatedEvent, RecordChange{Collection: "contacts", ID: "1"})
	broker.Publish(CreatedEvent, RecordChange{Collection: "employees", ID: "2"})

	event, ok := listener.Listen()().(Event[RecordChange])
	require.True(t, ok)
	require.Equal(t, "employees", event.Payload.Collection)
}
