package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mnemoniq/pkg/domain"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

type deniedTokens struct{}

func (deniedTokens) Token(ctx context.Context) (string, error) {
	return "", &AuthError{Reason: "no credential"}
}

func TestRequestSetsAuthAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticTokens("tok-1"))
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.Request(context.Background(), http.MethodGet, "/projects", nil, &out); err != nil {
		t.Fatalf("request: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatalf("expected a request id header")
	}
	if !out.OK {
		t.Fatalf("response not decoded")
	}
}

func TestRequestWithoutIdentityFailsBeforeNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient(server.URL, deniedTokens{})
	err := c.Request(context.Background(), http.MethodGet, "/projects", nil, nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected zero network calls, got %d", calls)
	}
}

func TestRequestNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, staticTokens("tok"))
	var out map[string]any
	if err := c.Request(context.Background(), http.MethodDelete, "/projects?id=p1", nil, &out); err != nil {
		t.Fatalf("204 should not error: %v", err)
	}
	if out != nil {
		t.Fatalf("204 should not decode a body, got %v", out)
	}
}

func TestRequestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json error field", 400, `{"error":"Name and Subject are required"}`, "Name and Subject are required"},
		{"plain text body", 404, `Project not found`, "Project not found"},
		{"empty body falls back to status", 500, ``, "500 Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, staticTokens("tok"))
			err := c.Request(context.Background(), http.MethodGet, "/projects", nil, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.message {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.message)
			}
		})
	}
}

func TestUploadCarriesMetadataHeaders(t *testing.T) {
	var gotProject, gotFilename, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProject = r.Header.Get("X-Project-Id")
		gotFilename = r.Header.Get("X-Filename")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
	}))
	defer server.Close()

	c := NewClient(server.URL, staticTokens("tok"))
	err := c.Upload(context.Background(), "proj-1", "notes.pdf", strings.NewReader("raw bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotProject != "proj-1" || gotFilename != "notes.pdf" {
		t.Fatalf("metadata headers = %q %q", gotProject, gotFilename)
	}
	if gotContentType != "application/octet-stream" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if gotBody != "raw bytes" {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestSubmitQuizPreservesNullSlots(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"score":1,"total":2,"results":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticTokens("tok"))
	answered := "Mitochondria"
	results, err := c.SubmitQuiz(context.Background(), "q1", []*string{&answered, nil})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(gotBody, `"answers":["Mitochondria",null]`) {
		t.Fatalf("answers not positional: %s", gotBody)
	}
	if results.Score != 1 || results.Total != 2 {
		t.Fatalf("results = %+v", results)
	}
}

func TestGenerateQuizOmitsEmptyTopic(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"quizId":"q1","questions":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticTokens("tok"))
	if _, err := c.GenerateQuiz(context.Background(), "p1", ""); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(gotBody, "topic") {
		t.Fatalf("empty topic should be omitted: %s", gotBody)
	}
}

func TestListDocumentsDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("projectId") != "p1" {
			t.Errorf("projectId = %q", r.URL.Query().Get("projectId"))
		}
		_, _ = w.Write([]byte(`[{"filename":"notes.pdf","summary":"<p>ok</p>"}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, staticTokens("tok"))
	docs, err := c.ListDocuments(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	want := []domain.Document{{Filename: "notes.pdf", Summary: "<p>ok</p>"}}
	if len(docs) != 1 || docs[0] != want[0] {
		t.Fatalf("docs = %+v", docs)
	}
}
