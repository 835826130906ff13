package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, buffer int) *Hub {
	t.Helper()
	hub := NewHub(buffer, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, sub *Subscriber) *Event {
	t.Helper()
	select {
	case e := <-sub.Events():
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, sub *Subscriber) {
	t.Helper()
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubScopesEventsByAgency(t *testing.T) {
	hub := startHub(t, 8)
	admin := hub.Subscribe("", true)
	agencyA := hub.Subscribe("a", false)
	agencyB := hub.Subscribe("b", false)

	hub.Publish(NewEvent(EventApplicationCreated, "a", map[string]string{"id": "app1"}))

	assert.Equal(t, EventApplicationCreated, receive(t, admin).Type)
	assert.Equal(t, "a", receive(t, agencyA).AgencyID)
	assertNoEvent(t, agencyB)
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	hub := startHub(t, 1)
	slow := hub.Subscribe("a", false)

	for i := 0; i < 5; i++ {
		hub.Publish(NewEvent(EventPaymentUpdated, "a", nil))
	}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, EventPaymentUpdated, receive(t, slow).Type)
	assertNoEvent(t, slow)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := startHub(t, 4)
	sub := hub.Subscribe("a", false)
	require.Equal(t, 1, hub.SubscriberCount())

	hub.Unsubscribe(sub)
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestSubscribeAfterStopReturnsNil(t *testing.T) {
	hub := NewHub(4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	assert.Nil(t, hub.Subscribe("a", false))
}

func TestServeWSStreamsEvents(t *testing.T) {
	hub := startHub(t, 8)
	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := hub.Subscribe("a", false)
		_ = hub.ServeWS(upgrader, w, r, sub)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish(NewEvent(EventDocumentUploaded, "a", nil))

	var got Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventDocumentUploaded, got.Type)
}
