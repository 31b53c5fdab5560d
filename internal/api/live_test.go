package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wikiscope/pkg/dashboard"
)

func dialLive(t *testing.T, hub *dashboard.Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(NewLiveHandler(hub))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func waitForSubscribers(t *testing.T, hub *dashboard.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers: got %d, want %d", hub.SubscriberCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLiveHandlerPushesEvents(t *testing.T) {
	hub := dashboard.NewHub()
	conn := dialLive(t, hub)

	waitForSubscribers(t, hub, 1)

	want := dashboard.Event{Dataset: "sites", Rows: 500, FetchedAt: time.Now().UTC()}
	hub.Publish(want)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got dashboard.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Dataset != want.Dataset || got.Rows != want.Rows {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLiveHandlerMultipleEvents(t *testing.T) {
	hub := dashboard.NewHub()
	conn := dialLive(t, hub)

	waitForSubscribers(t, hub, 1)

	for _, dataset := range []string{"sites", "timeline", "gender"} {
		hub.Publish(dashboard.Event{Dataset: dataset, Rows: 1, FetchedAt: time.Now().UTC()})
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"sites", "timeline", "gender"} {
		var got dashboard.Event
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read %s event: %v", want, err)
		}
		if got.Dataset != want {
			t.Errorf("dataset: got %q, want %q", got.Dataset, want)
		}
	}
}

func TestLiveHandlerUnsubscribesOnClose(t *testing.T) {
	hub := dashboard.NewHub()
	conn := dialLive(t, hub)

	waitForSubscribers(t, hub, 1)
	_ = conn.Close()
	waitForSubscribers(t, hub, 0)
}
