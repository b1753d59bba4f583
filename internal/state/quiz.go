package state

import (
	"context"
	"errors"
	"sync"

	"mnemoniq/internal/apiclient"
	"mnemoniq/pkg/domain"
)

// Phase is the quiz session lifecycle.
type Phase string

const (
	PhaseNotStarted Phase = "not-started"
	PhaseInProgress Phase = "in-progress"
	PhaseCompleted  Phase = "completed"
)

// Quiz is the quiz session state machine: current question, per-question
// answers, feedback reveal, running score, and final submission. A session
// is ephemeral; nothing survives Cancel or a fresh Generate.
type Quiz struct {
	api       *apiclient.Client
	projectID string

	mu        sync.Mutex
	phase     Phase
	quizID    string
	questions []domain.Question
	answers   map[int]string
	index     int
	feedback  bool
	score     int
	results   *domain.QuizResults
}

func NewQuiz(api *apiclient.Client, projectID string) *Quiz {
	return &Quiz{api: api, projectID: projectID, phase: PhaseNotStarted}
}

// Generate requests a fresh question set, optionally scoped to a topic,
// discarding any in-progress session.
func (q *Quiz) Generate(ctx context.Context, topic string) error {
	quiz, err := q.api.GenerateQuiz(ctx, q.projectID, topic)
	if err != nil {
		return err
	}
	if len(quiz.Questions) == 0 {
		return errors.New("quiz came back empty")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.phase = PhaseInProgress
	q.quizID = quiz.QuizID
	q.questions = quiz.Questions
	q.answers = make(map[int]string)
	q.index = 0
	q.feedback = false
	q.score = 0
	q.results = nil
	return nil
}

func (q *Quiz) Phase() Phase {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.phase
}

func (q *Quiz) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.questions)
}

func (q *Quiz) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

func (q *Quiz) Score() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.score
}

func (q *Quiz) FeedbackShown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.feedback
}

// Current returns the question under the cursor.
func (q *Quiz) Current() (domain.Question, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != PhaseInProgress || q.index >= len(q.questions) {
		return domain.Question{}, false
	}
	return q.questions[q.index], true
}

// Answer returns the recorded answer for the current question.
func (q *Quiz) Answer() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	answer, ok := q.answers[q.index]
	return answer, ok
}

// SelectOption records the answer for the current question. Selection is
// rejected once feedback for the question is shown: answers are immutable
// post-reveal. It reports whether the selection was applied.
func (q *Quiz) SelectOption(option string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != PhaseInProgress || q.feedback {
		return false
	}
	current := q.questions[q.index]
	for _, candidate := range current.Options {
		if candidate == option {
			q.answers[q.index] = option
			return true
		}
	}
	return false
}

// CheckAnswer reveals correctness for the current question and bumps the
// running score on an exact match. Revealing twice never double-counts.
// It reports whether the reveal happened (an unanswered question cannot be
// checked).
func (q *Quiz) CheckAnswer() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != PhaseInProgress || q.feedback {
		return false
	}
	answer, ok := q.answers[q.index]
	if !ok {
		return false
	}
	q.feedback = true
	if answer == q.questions[q.index].CorrectAnswer {
		q.score++
	}
	return true
}

// NextQuestion advances the cursor and hides feedback. It reports false on
// the last question, which means the session is ready for Submit.
func (q *Quiz) NextQuestion() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != PhaseInProgress || q.index >= len(q.questions)-1 {
		return false
	}
	q.index++
	q.feedback = false
	return true
}

// Submit grades the session server-side. The answers array always has one
// slot per question, with unanswered slots sent as explicit nulls so the
// server can index by position. On success the session is Completed.
func (q *Quiz) Submit(ctx context.Context) (domain.QuizResults, error) {
	q.mu.Lock()
	if q.phase != PhaseInProgress {
		q.mu.Unlock()
		return domain.QuizResults{}, &ValidationError{Msg: "no quiz in progress"}
	}
	quizID := q.quizID
	answers := make([]*string, len(q.questions))
	for i := range q.questions {
		if answer, ok := q.answers[i]; ok {
			answers[i] = &answer
		}
	}
	q.mu.Unlock()

	results, err := q.api.SubmitQuiz(ctx, quizID, answers)
	if err != nil {
		return domain.QuizResults{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.phase = PhaseCompleted
	q.results = &results
	return results, nil
}

// Results returns the grading outcome once the session is Completed.
func (q *Quiz) Results() (domain.QuizResults, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.results == nil {
		return domain.QuizResults{}, false
	}
	return *q.results, true
}

// Cancel discards the session from any state.
func (q *Quiz) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.phase = PhaseNotStarted
	q.quizID = ""
	q.questions = nil
	q.answers = nil
	q.index = 0
	q.feedback = false
	q.score = 0
	q.results = nil
}
