package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mnemoniq/internal/apiclient"
	"mnemoniq/pkg/domain"
)

// DefaultPollInterval is the processing-status poll period.
const DefaultPollInterval = 3 * time.Second

// Documents holds one project's document set plus the project record
// itself, which carries the processing status the poller watches.
type Documents struct {
	api      *apiclient.Client
	exts     []string
	interval time.Duration

	mu      sync.Mutex
	project domain.Project
	items   []domain.Document
	poll    *poller
}

func NewDocuments(api *apiclient.Client, project domain.Project, allowedExts []string, pollInterval time.Duration) *Documents {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Documents{api: api, exts: allowedExts, interval: pollInterval, project: project}
}

// Load refetches the document list.
func (d *Documents) Load(ctx context.Context) error {
	items, err := d.api.ListDocuments(ctx, d.projectID())
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.items = items
	d.mu.Unlock()
	return nil
}

func (d *Documents) Project() domain.Project {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.project
}

func (d *Documents) Items() []domain.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Document, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Documents) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

// Upload preflights every file, flips the project to processing
// optimistically, then fans the uploads out. Completion is observed by the
// poller, not by the upload responses. A *ValidationError means nothing was
// sent; a *PartialError means some files failed while the rest went through.
func (d *Documents) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return &ValidationError{Msg: "no files selected"}
	}
	for _, path := range paths {
		if err := checkUpload(path, d.exts); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.project.Status = domain.StatusProcessing
	d.project.ProcessingCount += len(paths)
	d.mu.Unlock()

	return uploadAll(ctx, d.api, d.projectID(), paths)
}

// Delete removes one document. The last remaining document of a project
// cannot be deleted; that is rejected before any network call.
func (d *Documents) Delete(ctx context.Context, filename string) error {
	d.mu.Lock()
	if len(d.items) <= 1 {
		d.mu.Unlock()
		return ErrLastDocument
	}
	d.mu.Unlock()

	if err := d.api.DeleteDocument(ctx, d.projectID(), filename); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.items[:0]
	for _, doc := range d.items {
		if doc.Filename != filename {
			kept = append(kept, doc)
		}
	}
	d.items = kept
	return nil
}

// Regenerate requests a fresh summary. The document is flagged as
// regenerating while the call is in flight; on failure the flag is cleared
// and the previous summary (typically the failure sentinel) stays in place.
func (d *Documents) Regenerate(ctx context.Context, filename string) error {
	d.setRegenerating(filename, true)
	summary, err := d.api.RegenerateSummary(ctx, d.projectID(), filename)
	if err != nil {
		d.setRegenerating(filename, false)
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.items {
		if d.items[i].Filename == filename {
			d.items[i].Summary = summary
			d.items[i].Regenerating = false
		}
	}
	return nil
}

func (d *Documents) setRegenerating(filename string, v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.items {
		if d.items[i].Filename == filename {
			d.items[i].Regenerating = v
		}
	}
}

// StartPolling watches the project while its status is processing. Each
// tick refetches the project record; on observing the transition to ready
// it refetches the document list once and stops itself. onChange fires
// after every applied update. Polling while already started is a no-op.
func (d *Documents) StartPolling(onChange func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poll != nil && !d.poll.stopped() {
		return
	}
	if d.project.Status != domain.StatusProcessing {
		return
	}
	d.poll = startPoller(d.interval, func(ctx context.Context) bool {
		return d.pollOnce(ctx, onChange)
	})
}

// StopPolling tears the poll task down. It blocks until no further
// callback can fire; in-flight fetches are aborted.
func (d *Documents) StopPolling() {
	d.mu.Lock()
	poll := d.poll
	d.poll = nil
	d.mu.Unlock()
	if poll != nil {
		poll.Stop()
	}
}

func (d *Documents) pollOnce(ctx context.Context, onChange func()) bool {
	projects, err := d.api.ListProjects(ctx)
	if err != nil {
		// Transient poll failures are logged and retried next tick.
		slog.Debug("processing poll failed", "project", d.projectID(), "err", err)
		return false
	}
	var found *domain.Project
	for i := range projects {
		if projects[i].ID == d.projectID() {
			found = &projects[i]
			break
		}
	}
	if found == nil {
		return false
	}

	d.mu.Lock()
	d.project = *found
	ready := found.Status == domain.StatusReady
	d.mu.Unlock()

	if ready {
		if err := d.Load(ctx); err != nil {
			slog.Debug("document refetch after ready failed", "project", d.projectID(), "err", err)
		}
	}
	if onChange != nil {
		onChange()
	}
	return ready
}

func (d *Documents) projectID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.project.ID
}
