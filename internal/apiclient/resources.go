package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"mnemoniq/pkg/domain"
)

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.Request(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, name, subject string) (domain.Project, error) {
	payload := map[string]string{"name": name, "subject": subject}
	var project domain.Project
	if err := c.Request(ctx, http.MethodPost, "/projects", payload, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	path := "/projects?id=" + url.QueryEscape(id)
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error) {
	path := "/documents?projectId=" + url.QueryEscape(projectID)
	var docs []domain.Document
	if err := c.Request(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) DeleteDocument(ctx context.Context, projectID, filename string) error {
	path := fmt.Sprintf("/documents?projectId=%s&filename=%s",
		url.QueryEscape(projectID), url.QueryEscape(filename))
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) RegenerateSummary(ctx context.Context, projectID, filename string) (string, error) {
	payload := map[string]string{"projectId": projectID, "filename": filename}
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.Request(ctx, http.MethodPost, "/summary/regenerate", payload, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

func (c *Client) ChatHistory(ctx context.Context, projectID string) ([]domain.ChatRecord, error) {
	path := "/chat?projectId=" + url.QueryEscape(projectID)
	var records []domain.ChatRecord
	if err := c.Request(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SendChat submits a user message and returns the assistant's answer.
func (c *Client) SendChat(ctx context.Context, projectID, message string) (string, error) {
	payload := map[string]string{"projectId": projectID, "message": message}
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := c.Request(ctx, http.MethodPost, "/chat", payload, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}

func (c *Client) ClearChat(ctx context.Context, projectID string) error {
	path := "/chat?projectId=" + url.QueryEscape(projectID)
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

// GeneratedQuiz is the question set returned by /quiz/generate.
type GeneratedQuiz struct {
	QuizID    string            `json:"quizId"`
	Questions []domain.Question `json:"questions"`
}

// GenerateQuiz requests a fresh question set, optionally scoped to a topic.
func (c *Client) GenerateQuiz(ctx context.Context, projectID, topic string) (GeneratedQuiz, error) {
	payload := map[string]string{"projectId": projectID}
	if topic != "" {
		payload["topic"] = topic
	}
	var quiz GeneratedQuiz
	if err := c.Request(ctx, http.MethodPost, "/quiz/generate", payload, &quiz); err != nil {
		return GeneratedQuiz{}, err
	}
	return quiz, nil
}

// SubmitQuiz grades an ordered answer list. The slice length must equal the
// question count; unanswered slots are nil and marshal as JSON nulls so
// server-side indexing by position stays valid.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string, answers []*string) (domain.QuizResults, error) {
	payload := struct {
		QuizID  string    `json:"quizId"`
		Answers []*string `json:"answers"`
	}{QuizID: quizID, Answers: answers}
	var results domain.QuizResults
	if err := c.Request(ctx, http.MethodPost, "/quiz/submit", payload, &results); err != nil {
		return domain.QuizResults{}, err
	}
	return results, nil
}

func (c *Client) ListSongs(ctx context.Context, projectID string) ([]domain.Song, error) {
	path := "/songs?projectId=" + url.QueryEscape(projectID)
	var songs []domain.Song
	if err := c.Request(ctx, http.MethodGet, path, nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// SongForm carries the create-song submission.
type SongForm struct {
	Title    string `json:"title"`
	Genre    string `json:"genre"`
	Lyrics   string `json:"lyrics"`
	Duration int    `json:"duration"`
}

func (c *Client) CreateSong(ctx context.Context, projectID string, form SongForm) (domain.Song, error) {
	payload := struct {
		ProjectID string `json:"projectId"`
		SongForm
	}{ProjectID: projectID, SongForm: form}
	var song domain.Song
	if err := c.Request(ctx, http.MethodPost, "/songs", payload, &song); err != nil {
		return domain.Song{}, err
	}
	return song, nil
}

func (c *Client) DeleteSong(ctx context.Context, songID string) error {
	path := "/songs?songId=" + url.QueryEscape(songID)
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GenerateLyrics(ctx context.Context, projectID, prompt, genre string) (string, error) {
	payload := map[string]string{"projectId": projectID, "prompt": prompt, "genre": genre}
	var resp struct {
		Lyrics string `json:"lyrics"`
	}
	if err := c.Request(ctx, http.MethodPost, "/songs/generate-lyrics", payload, &resp); err != nil {
		return "", err
	}
	return resp.Lyrics, nil
}

func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	if err := c.Request(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}
