package state

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"mnemoniq/pkg/domain"
)

func TestDocumentsDeleteLastRejected(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode([]domain.Document{{Filename: "only.pdf"}})
	})
	d := NewDocuments(newTestClient(t, handler), domain.Project{ID: "p1"}, testExts, 0)

	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	calls.Store(0)

	if err := d.Delete(context.Background(), "only.pdf"); !errors.Is(err, ErrLastDocument) {
		t.Fatalf("want ErrLastDocument, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("last-document delete must be rejected before any network call, saw %d", calls.Load())
	}
}

func TestDocumentsDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Document{{Filename: "a.pdf"}, {Filename: "b.txt"}})
	})
	mux.HandleFunc("DELETE /documents", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filename"); got != "a.pdf" {
			t.Errorf("filename = %q, want a.pdf", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	d := NewDocuments(newTestClient(t, mux), domain.Project{ID: "p1"}, testExts, 0)

	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Delete(context.Background(), "a.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items := d.Items()
	if len(items) != 1 || items[0].Filename != "b.txt" {
		t.Fatalf("want only b.txt left, got %v", items)
	}
}

func TestDocumentsUploadFlipsProcessing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	d := NewDocuments(newTestClient(t, mux), domain.Project{ID: "p1", Status: domain.StatusReady}, testExts, 0)

	notes := writeTempFile(t, "notes.txt", "osmosis")
	if err := d.Upload(context.Background(), []string{notes}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	project := d.Project()
	if project.Status != domain.StatusProcessing {
		t.Fatalf("status = %q, want processing", project.Status)
	}
	if project.ProcessingCount != 1 {
		t.Fatalf("processingCount = %d, want 1", project.ProcessingCount)
	}
}

func TestDocumentsUploadPreflightBlocksAll(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	d := NewDocuments(newTestClient(t, handler), domain.Project{ID: "p1", Status: domain.StatusReady}, testExts, 0)

	good := writeTempFile(t, "good.txt", "fine")
	empty := writeTempFile(t, "empty.txt", "")

	var verr *ValidationError
	if err := d.Upload(context.Background(), []string{good, empty}); !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for empty file, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("a failed preflight must block the entire batch")
	}
	if d.Project().Status == domain.StatusProcessing {
		t.Fatal("project must not flip to processing when nothing was sent")
	}
}

func TestDocumentsRegenerateFailureKeepsSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Document{
			{Filename: "a.pdf", Summary: domain.SummaryFailed},
			{Filename: "b.pdf", Summary: "fine"},
		})
	})
	mux.HandleFunc("POST /summary/regenerate", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	})
	d := NewDocuments(newTestClient(t, mux), domain.Project{ID: "p1"}, testExts, 0)

	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Regenerate(context.Background(), "a.pdf"); err == nil {
		t.Fatal("expected regenerate error")
	}
	doc := d.Items()[0]
	if doc.Summary != domain.SummaryFailed {
		t.Fatalf("summary = %q, previous value must survive a failed regenerate", doc.Summary)
	}
	if doc.Regenerating {
		t.Fatal("regenerating flag must clear after failure")
	}
}

func TestDocumentsRegenerate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Document{{Filename: "a.pdf", Summary: domain.SummaryFailed}})
	})
	mux.HandleFunc("POST /summary/regenerate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"summary": "<p>Cells divide by mitosis.</p>"})
	})
	d := NewDocuments(newTestClient(t, mux), domain.Project{ID: "p1"}, testExts, 0)

	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := d.Regenerate(context.Background(), "a.pdf"); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if got := d.Items()[0].Summary; got != "<p>Cells divide by mitosis.</p>" {
		t.Fatalf("summary = %q", got)
	}
}

func TestDocumentsPollingStopsOnReady(t *testing.T) {
	leakOpts := []goleak.Option{
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	}
	// Registered before newTestClient so it runs after the test server's
	// Close cleanup; deferred verification would run before it.
	t.Cleanup(func() { goleak.VerifyNone(t, leakOpts...) })

	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		status := domain.StatusProcessing
		if polls.Add(1) >= 2 {
			status = domain.StatusReady
		}
		json.NewEncoder(w).Encode([]domain.Project{{ID: "p1", Status: status}})
	})
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Document{{Filename: "a.pdf", Summary: "done"}})
	})
	d := NewDocuments(newTestClient(t, mux), domain.Project{ID: "p1", Status: domain.StatusProcessing}, testExts, 5*time.Millisecond)

	changed := make(chan struct{}, 16)
	d.StartPolling(func() { changed <- struct{}{} })
	defer d.StopPolling()

	deadline := time.After(2 * time.Second)
	for d.Project().Status != domain.StatusReady {
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("poller never observed the ready transition")
		}
	}
	if got := d.Count(); got != 1 {
		t.Fatalf("documents not refetched after ready, count = %d", got)
	}

	// The poller stopped itself on ready; a later upload must restart it.
	settled := polls.Load()
	time.Sleep(30 * time.Millisecond)
	if polls.Load() != settled {
		t.Fatal("poller kept running after observing ready")
	}

	d.StopPolling()
}

func TestDocumentsPollingNoopWhenNotProcessing(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	d := NewDocuments(newTestClient(t, handler), domain.Project{ID: "p1", Status: domain.StatusReady}, testExts, time.Millisecond)

	d.StartPolling(nil)
	time.Sleep(20 * time.Millisecond)
	d.StopPolling()
	if calls.Load() != 0 {
		t.Fatalf("polling a ready project must be a no-op, saw %d calls", calls.Load())
	}
}
