package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/rules"
	"github.com/TimurManjosov/gojungse/internal/snapshot"
)

type delivery struct {
	header http.Header
	body   []byte
}

// receiver records deliveries and answers with the given status codes in
// turn, then 200.
func receiver(t *testing.T, statuses ...int) (*httptest.Server, <-chan delivery, *atomic.Int32) {
	t.Helper()
	got := make(chan delivery, 10)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))
		body, _ := io.ReadAll(r.Body)
		got <- delivery{header: r.Header.Clone(), body: body}
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, got, &hits
}

func newTestDispatcher(endpoints ...Endpoint) *Dispatcher {
	d := NewDispatcher(endpoints, zerolog.Nop())
	d.retryInterval = time.Millisecond
	return d
}

func sampleTable() *snapshot.Table {
	return snapshot.Build([]rules.Rule{{Source: "가", Destination: "A", Mode: rules.ModeLiteral}}, "test")
}

func wait(t *testing.T, ch <-chan delivery) delivery {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return delivery{}
	}
}

func TestDispatcher_DeliversSignedEvent(t *testing.T) {
	srv, got, _ := receiver(t)
	d := newTestDispatcher(Endpoint{URL: srv.URL, Secret: "s3cret"})
	d.Start()
	defer d.Close()

	tbl := sampleTable()
	d.Dispatch(NewEvent(tbl))

	del := wait(t, got)
	if del.header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", del.header.Get("Content-Type"))
	}
	if del.header.Get(HeaderEvent) != EventRulesChanged || del.header.Get(HeaderDelivery) == "" {
		t.Errorf("headers = %v", del.header)
	}
	if !Verify(del.body, del.header.Get(HeaderSignature), "s3cret") {
		t.Error("signature does not verify")
	}

	var ev Event
	if err := json.Unmarshal(del.body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Table.ETag != tbl.ETag || ev.Table.ID != tbl.ID || ev.Table.RuleCount != 1 || ev.Table.Origin != "test" {
		t.Errorf("event = %+v", ev)
	}
}

func TestDispatcher_RetriesServerErrors(t *testing.T) {
	srv, got, hits := receiver(t, http.StatusBadGateway, http.StatusServiceUnavailable)
	d := newTestDispatcher(Endpoint{URL: srv.URL, Secret: "s", MaxRetries: 3})
	d.Start()

	d.Dispatch(NewEvent(sampleTable()))
	first := wait(t, got)
	wait(t, got)
	last := wait(t, got)
	_ = d.Close()

	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
	// retries reuse the delivery id
	if first.header.Get(HeaderDelivery) != last.header.Get(HeaderDelivery) {
		t.Error("delivery id changed between attempts")
	}
}

func TestDispatcher_ClientErrorIsNotRetried(t *testing.T) {
	srv, _, hits := receiver(t, http.StatusBadRequest)
	d := newTestDispatcher(Endpoint{URL: srv.URL, Secret: "s", MaxRetries: 3})
	d.Start()

	d.Dispatch(NewEvent(sampleTable()))
	_ = d.Close()

	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	srv, _, hits := receiver(t, 500, 500, 500, 500, 500)
	d := newTestDispatcher(Endpoint{URL: srv.URL, Secret: "s", MaxRetries: 1})
	d.Start()

	d.Dispatch(NewEvent(sampleTable()))
	_ = d.Close()

	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
}

func TestDispatcher_FansOutToEveryEndpoint(t *testing.T) {
	a, gotA, _ := receiver(t)
	b, gotB, _ := receiver(t)
	d := newTestDispatcher(Endpoint{URL: a.URL, Secret: "a"}, Endpoint{URL: b.URL, Secret: "b"})
	d.Start()
	defer d.Close()

	d.Dispatch(NewEvent(sampleTable()))

	da, db := wait(t, gotA), wait(t, gotB)
	if !Verify(da.body, da.header.Get(HeaderSignature), "a") {
		t.Error("endpoint a: bad signature")
	}
	if !Verify(db.body, db.header.Get(HeaderSignature), "b") {
		t.Error("endpoint b: bad signature")
	}
}

func TestDispatcher_FollowPublishesTableChanges(t *testing.T) {
	srv, got, _ := receiver(t)
	d := newTestDispatcher(Endpoint{URL: srv.URL, Secret: "s"})
	d.Start()
	defer d.Close()

	h := snapshot.NewHolder()
	ctx, cancel := context.WithCancel(context.Background())
	done := d.Follow(ctx, h)
	if h.Subscribers() != 1 {
		t.Fatalf("Subscribers = %d, want 1", h.Subscribers())
	}

	tbl := sampleTable()
	h.Update(tbl)

	var ev Event
	if err := json.Unmarshal(wait(t, got).body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Table.ETag != tbl.ETag {
		t.Errorf("etag = %q, want %q", ev.Table.ETag, tbl.ETag)
	}

	cancel()
	<-done
	if h.Subscribers() != 0 {
		t.Errorf("Subscribers = %d after Follow returned", h.Subscribers())
	}
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := newTestDispatcher()
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	// dispatching after close is a no-op
	d.Dispatch(NewEvent(sampleTable()))
}

func TestDispatcher_CloseAbandonsRetriesAfterGrace(t *testing.T) {
	srv, got, hits := receiver(t, 500, 500, 500, 500, 500)
	d := NewDispatcher([]Endpoint{{URL: srv.URL, Secret: "s", MaxRetries: 4}}, zerolog.Nop())
	d.retryInterval = time.Minute
	d.ShutdownGrace = 50 * time.Millisecond
	d.Start()

	d.Dispatch(NewEvent(sampleTable()))
	d.Dispatch(NewEvent(sampleTable()))
	wait(t, got)

	start := time.Now()
	closed := make(chan struct{})
	go func() {
		_ = d.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on a pending retry")
	}
	if elapsed := time.Since(start); elapsed < d.ShutdownGrace {
		t.Errorf("Close returned after %v, before the grace period", elapsed)
	}
	// the second event is dropped once the context is cancelled
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}
