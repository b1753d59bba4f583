package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mnemoniq/internal/apiclient"
	"mnemoniq/pkg/domain"
)

// Chat maintains one project's transcript. Messages are appended in send
// order; the component rejects overlapping sends so the conversation stays
// ordered (the views additionally disable the send action while busy).
type Chat struct {
	api       *apiclient.Client
	projectID string

	mu       sync.Mutex
	messages []domain.ChatMessage
	busy     bool
}

func NewChat(api *apiclient.Client, projectID string) *Chat {
	return &Chat{api: api, projectID: projectID}
}

// Load replaces the transcript with the stored history. The server keeps
// question/answer pairs; each pair flattens into a user turn followed by an
// assistant turn, preserving pair order.
func (c *Chat) Load(ctx context.Context) error {
	records, err := c.api.ChatHistory(ctx, c.projectID)
	if err != nil {
		return err
	}
	messages := make([]domain.ChatMessage, 0, 2*len(records))
	for _, record := range records {
		messages = append(messages,
			domain.ChatMessage{Role: domain.RoleUser, Content: record.Message, Timestamp: record.Timestamp},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: record.Answer, Timestamp: record.Timestamp},
		)
	}
	c.mu.Lock()
	c.messages = messages
	c.mu.Unlock()
	return nil
}

func (c *Chat) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Chat) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Send appends the user turn immediately, then the assistant reply once it
// arrives. On failure the user turn stays in the transcript with no
// assistant turn after it, and the error is returned for display.
func (c *Chat) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &ValidationError{Msg: "message is empty"}
	}
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return &ValidationError{Msg: "a send is already in progress"}
	}
	c.busy = true
	c.messages = append(c.messages, domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: now(),
	})
	c.mu.Unlock()

	answer, err := c.api.SendChat(ctx, c.projectID, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		return err
	}
	c.messages = append(c.messages, domain.ChatMessage{
		Role:      domain.RoleAssistant,
		Content:   answer,
		Timestamp: now(),
	})
	return nil
}

// Clear deletes the server-side history; the local transcript empties only
// after the server confirms.
func (c *Chat) Clear(ctx context.Context) error {
	if err := c.api.ClearChat(ctx, c.projectID); err != nil {
		return err
	}
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
	return nil
}

// ElaboratePrompt builds the follow-up question the quiz view sends when
// the user asks to elaborate on an explanation.
func ElaboratePrompt(explanation string) string {
	return fmt.Sprintf("Please elaborate on: %q", explanation)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
