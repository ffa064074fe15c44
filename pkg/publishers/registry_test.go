package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPublisher struct {
	id  string
	err error
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return "stub" }
func (s *stubPublisher) Publish(context.Context, Event) error {
	return s.err
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	t.Parallel()

	cfgs := []PublisherConfig{
		{
			ID:   "hook",
			Type: TypeHTTP,
			HTTP: &HTTPPublisherConfig{URL: "https://x.example/h", Method: "POST", TimeoutSeconds: 5},
		},
	}

	pubs, err := BuildAll(context.Background(), DefaultRegistry(), cfgs, nil)
	if err != nil {
		t.Fatalf("BuildAll returned error: %v", err)
	}
	if len(pubs) != 1 || pubs[0].ID() != "hook" {
		t.Fatalf("unexpected publishers: %+v", pubs)
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	t.Parallel()

	cfgs := []PublisherConfig{{ID: "x", Type: "telegraph"}}
	if _, err := BuildAll(context.Background(), DefaultRegistry(), cfgs, nil); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestPublishAllCollectsFailures(t *testing.T) {
	t.Parallel()

	pubs := []Publisher{
		&stubPublisher{id: "ok1"},
		&stubPublisher{id: "broken", err: errors.New("sink down")},
		&stubPublisher{id: "ok2"},
	}

	errs := PublishAll(context.Background(), pubs, Event{DataSource: "h"}, nil)
	if len(errs) != 1 {
		t.Fatalf("expected 1 failure, got %d: %v", len(errs), errs)
	}
	if got := errs[0].Error(); got != "publisher broken: sink down" {
		t.Fatalf("unexpected error text: %q", got)
	}
}

func TestHTTPPublisherDeliversEvent(t *testing.T) {
	t.Parallel()

	var received Event
	var gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Token")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("bad event payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         "POST",
			Headers:        map[string]string{"X-Token": "secreto"},
			TimeoutSeconds: 5,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	evt := Event{
		GeneratedAt:       "2025-08-15T12:00:00Z",
		DataSource:        "Harvester",
		SnapshotPath:      "data/iso_news.json",
		TotalArticles:     5,
		SuccessfulScrapes: 4,
		FailedScrapes:     1,
	}
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if gotToken != "secreto" {
		t.Fatalf("configured header not sent, got %q", gotToken)
	}
	if received != evt {
		t.Fatalf("event mangled in transit: %+v", received)
	}
}

func TestHTTPPublisherNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	pub, err := newHTTPPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, Method: "POST", TimeoutSeconds: 5},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error for non-2xx sink")
	}
}
