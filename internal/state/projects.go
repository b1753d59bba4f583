package state

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mnemoniq/internal/apiclient"
	"mnemoniq/pkg/domain"
)

// Projects drives the dashboard: the project list, the aggregate quiz
// stats, and project creation/deletion.
type Projects struct {
	api  *apiclient.Client
	exts []string

	mu    sync.Mutex
	items []domain.Project
	stats domain.Stats
}

func NewProjects(api *apiclient.Client, allowedExts []string) *Projects {
	return &Projects{api: api, exts: allowedExts}
}

// Load refetches the project list.
func (p *Projects) Load(ctx context.Context) error {
	items, err := p.api.ListProjects(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.items = items
	p.mu.Unlock()
	return nil
}

// LoadWithStats fetches projects and stats in parallel. The load is
// atomic: if either fetch fails, neither result is applied.
func (p *Projects) LoadWithStats(ctx context.Context) error {
	var (
		items []domain.Project
		stats domain.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = p.api.ListProjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = p.api.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	p.mu.Lock()
	p.items = items
	p.stats = stats
	p.mu.Unlock()
	return nil
}

func (p *Projects) Items() []domain.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Project, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Projects) Get(id string) (domain.Project, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, project := range p.items {
		if project.ID == id {
			return project, true
		}
	}
	return domain.Project{}, false
}

func (p *Projects) Stats() domain.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// HistoryDesc returns the quiz score history newest-first. ISO-8601
// timestamps order lexicographically.
func (p *Projects) HistoryDesc() []domain.QuizOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.QuizOutcome, len(p.stats.History))
	copy(out, p.stats.History)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt > out[j].SubmittedAt
	})
	return out
}

// Create creates the project, then uploads the given files. The two steps
// fail independently: when the project record exists but an upload failed,
// the project is returned together with the upload error and stays in the
// list with zero or partial documents.
func (p *Projects) Create(ctx context.Context, name, subject string, files []string) (domain.Project, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	if name == "" || subject == "" {
		return domain.Project{}, &ValidationError{Msg: "name and subject are required"}
	}
	for _, file := range files {
		if err := checkUpload(file, p.exts); err != nil {
			return domain.Project{}, err
		}
	}

	project, err := p.api.CreateProject(ctx, name, subject)
	if err != nil {
		return domain.Project{}, err
	}
	p.mu.Lock()
	p.items = append(p.items, project)
	p.mu.Unlock()

	if len(files) > 0 {
		if err := uploadAll(ctx, p.api, project.ID, files); err != nil {
			return project, err
		}
	}
	return project, nil
}

// Delete removes the project server-side, then drops it from the local
// list. Documents, chat history, and songs cascade server-side.
func (p *Projects) Delete(ctx context.Context, id string) error {
	if err := p.api.DeleteProject(ctx, id); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.items[:0]
	for _, project := range p.items {
		if project.ID != id {
			kept = append(kept, project)
		}
	}
	p.items = kept
	return nil
}
