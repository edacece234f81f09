package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/graphblog/internal/watch"
)

func drain(ch chan []byte, wait time.Duration) []string {
	var out []string
	deadline := time.After(wait)
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		case <-deadline:
			return out
		}
	}
}

func count(msgs []string, eventType string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, "event: "+eventType+"\n") {
			n++
		}
	}
	return n
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeDocumentCreated, Data: documentData{Slug: "a", Path: "a.md"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "id: 1\n") {
			t.Errorf("missing event id in %q", s)
		}
		if !strings.Contains(s, "event: document.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"slug":"a"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestNotify_MapsOps(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Notify([]watch.Change{
		{Op: watch.Created, Path: "a.md", Slug: "a"},
		{Op: watch.Updated, Path: "b.md", Slug: "b"},
		{Op: watch.Deleted, Path: "c.md", Slug: "c"},
	})

	msgs := drain(ch, 100*time.Millisecond)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4: %q", len(msgs), msgs)
	}
	for i, want := range []string{TypeDocumentCreated, TypeDocumentUpdated, TypeDocumentDeleted, TypeGraphUpdated} {
		if !strings.Contains(msgs[i], "event: "+want+"\n") {
			t.Errorf("message %d = %q, want %s", i, msgs[i], want)
		}
	}
}

func TestNotify_GraphThrottleWithTrailingEvent(t *testing.T) {
	b := NewBroker(200 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First batch triggers graph.updated immediately.
	b.Notify([]watch.Change{{Op: watch.Created, Path: "a.md", Slug: "a"}})
	// Two more inside the window share one trailing graph.updated.
	b.Notify([]watch.Change{{Op: watch.Updated, Path: "b.md", Slug: "b"}})
	b.Notify([]watch.Change{{Op: watch.Updated, Path: "c.md", Slug: "c"}})

	early := drain(ch, 50*time.Millisecond)
	if got := count(early, TypeGraphUpdated); got != 1 {
		t.Errorf("graph events before window closed = %d, want 1", got)
	}
	if got := count(early, TypeDocumentUpdated); got != 2 {
		t.Errorf("document.updated events = %d, want 2", got)
	}

	late := drain(ch, 400*time.Millisecond)
	if got := count(late, TypeGraphUpdated); got != 1 {
		t.Errorf("trailing graph events = %d, want 1", got)
	}
}

func TestNotify_EmptyBatchIgnored(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Notify(nil)
	if msgs := drain(ch, 50*time.Millisecond); len(msgs) != 0 {
		t.Errorf("unexpected messages %q", msgs)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Notify([]watch.Change{{Op: watch.Updated, Path: "x.md", Slug: "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: document.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TypeDocumentUpdated, Data: documentData{Slug: "x"}})
	b.Notify([]watch.Change{{Op: watch.Updated, Path: "x.md", Slug: "x"}})
}
