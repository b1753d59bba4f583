package state

import (
	"context"
	"strings"
	"sync"

	"mnemoniq/internal/apiclient"
	"mnemoniq/pkg/domain"
)

// Genres are the selectable song genres, first entry is the default.
var Genres = []string{"Pop", "Rock", "Hip Hop", "Jazz", "Electronic", "Country", "Classical"}

// Durations are the selectable song lengths in seconds.
var Durations = []int{15, 30, 45, 60}

// Songs holds one project's generated songs. No completion polling is
// done; callers re-list on demand.
type Songs struct {
	api       *apiclient.Client
	projectID string

	mu    sync.Mutex
	items []domain.Song
}

func NewSongs(api *apiclient.Client, projectID string) *Songs {
	return &Songs{api: api, projectID: projectID}
}

func (s *Songs) Load(ctx context.Context) error {
	items, err := s.api.ListSongs(ctx, s.projectID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *Songs) Items() []domain.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Song, len(s.items))
	copy(out, s.items)
	return out
}

// Create submits the song form and prepends the server's returned record.
func (s *Songs) Create(ctx context.Context, form apiclient.SongForm) (domain.Song, error) {
	if strings.TrimSpace(form.Title) == "" {
		return domain.Song{}, &ValidationError{Msg: "song title is required"}
	}
	if strings.TrimSpace(form.Lyrics) == "" {
		return domain.Song{}, &ValidationError{Msg: "song lyrics are required"}
	}
	if !validGenre(form.Genre) {
		return domain.Song{}, &ValidationError{Msg: "unknown genre: " + form.Genre}
	}
	song, err := s.api.CreateSong(ctx, s.projectID, form)
	if err != nil {
		return domain.Song{}, err
	}
	s.mu.Lock()
	s.items = append([]domain.Song{song}, s.items...)
	s.mu.Unlock()
	return song, nil
}

// Delete removes the song locally only after the server confirms. The view
// asks the user for confirmation before calling this.
func (s *Songs) Delete(ctx context.Context, songID string) error {
	if err := s.api.DeleteSong(ctx, songID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, song := range s.items {
		if song.ID != songID {
			kept = append(kept, song)
		}
	}
	s.items = kept
	return nil
}

// GenerateLyrics asks the API to draft lyrics from a prompt, grounded in
// the project's documents.
func (s *Songs) GenerateLyrics(ctx context.Context, prompt, genre string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &ValidationError{Msg: "lyrics prompt is required"}
	}
	return s.api.GenerateLyrics(ctx, s.projectID, prompt, genre)
}

func validGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}
