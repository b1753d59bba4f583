package domain

// ProjectStatus tracks server-side document processing for a project.
// It only ever moves created -> processing -> ready.
type ProjectStatus string

const (
	StatusCreated    ProjectStatus = "created"
	StatusProcessing ProjectStatus = "processing"
	StatusReady      ProjectStatus = "ready"
)

type SongStatus string

const (
	SongCreated   SongStatus = "created"
	SongPending   SongStatus = "pending"
	SongCompleted SongStatus = "completed"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SummaryFailed is the sentinel the server stores when summary generation
// failed for a document. Views match on it to offer regeneration.
const SummaryFailed = "Summary generation failed."

// Timestamps stay in the server's ISO-8601 string form. ISO-8601 compares
// correctly as plain strings, which is all the client needs from them.

type Project struct {
	ID              string        `json:"_id"`
	Name            string        `json:"name"`
	Subject         string        `json:"subject"`
	OwnerID         string        `json:"ownerId,omitempty"`
	Status          ProjectStatus `json:"status,omitempty"`
	ProcessingCount int           `json:"processingCount,omitempty"`
	CreatedAt       string        `json:"createdAt,omitempty"`
}

type Document struct {
	ID         string `json:"_id,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	Filename   string `json:"filename"`
	Summary    string `json:"summary,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`

	// Regenerating flags an in-flight summary regeneration. Client-side only.
	Regenerating bool `json:"-"`
}

type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ChatRecord is the stored form of one exchange: the server persists
// question/answer pairs, not individual messages.
type ChatRecord struct {
	ProjectID string `json:"projectId,omitempty"`
	Message   string `json:"message"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type QuestionResult struct {
	Question      string  `json:"question"`
	UserAnswer    *string `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Explanation   string  `json:"explanation"`
}

type QuizResults struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"results"`
}

type Song struct {
	ID             string     `json:"_id"`
	ProjectID      string     `json:"projectId,omitempty"`
	Title          string     `json:"title"`
	Genre          string     `json:"genre"`
	Lyrics         string     `json:"lyrics,omitempty"`
	OriginalPrompt string     `json:"originalPrompt,omitempty"`
	AudioURL       string     `json:"audioUrl,omitempty"`
	Status         SongStatus `json:"status"`
	CreatedAt      string     `json:"createdAt,omitempty"`
}

// QuizOutcome is one row of the aggregate score history returned by /stats.
type QuizOutcome struct {
	QuizID      string `json:"quizId"`
	ProjectID   string `json:"projectId"`
	Score       int    `json:"score"`
	Total       int    `json:"total"`
	SubmittedAt string `json:"submittedAt"`
}

type Stats struct {
	History      []QuizOutcome `json:"history"`
	AverageScore float64       `json:"averageScore"`
	TotalQuizzes int           `json:"totalQuizzes"`
}
