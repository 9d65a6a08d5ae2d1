package rpc

import "strings"

type LoginRequest struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"required"`
}

func (LoginRequest) ActionName() string { return ActionLogin }

type AddUserRequest struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"required"`
}

func (AddUserRequest) ActionName() string { return ActionAddUser }

type GetQuestionsRequest struct {
	Subject string `json:"subject" binding:"oneof=jp math sci soc all"`
	GenreID string `json:"genre_id,omitempty"`
	BatchID string `json:"batch_id,omitempty"`
	Count   *int   `json:"count,omitempty" binding:"omitempty,gte=0"`
}

func (GetQuestionsRequest) ActionName() string { return ActionGetQuestions }

// EffectiveCount returns the requested batch size or the default.
func (r GetQuestionsRequest) EffectiveCount() int {
	return countOrDefault(r.Count)
}

type GetBookQuestionsRequest struct {
	BookID string `json:"book_id" binding:"notblank"`
	Count  *int   `json:"count,omitempty" binding:"omitempty,gte=0"`
}

func (GetBookQuestionsRequest) ActionName() string { return ActionGetBookQuestions }

func (r GetBookQuestionsRequest) EffectiveCount() int {
	return countOrDefault(r.Count)
}

// GetGenresRequest takes any subject string; codes without questions,
// including "all", list no genres.
type GetGenresRequest struct {
	Subject string `json:"subject" binding:"required"`
}

func (GetGenresRequest) ActionName() string { return ActionGetGenres }

type GetBooksRequest struct {
	Subject string `json:"subject,omitempty" binding:"omitempty,oneof=jp math sci soc all"`
	UserID  string `json:"user_id,omitempty"`
}

func (GetBooksRequest) ActionName() string { return ActionGetBooks }

// BookQuestionInput accepts choices either as a list or as choice_1..choice_4.
type BookQuestionInput struct {
	QuestionText string   `json:"question_text" binding:"notblank"`
	Choices      []string `json:"choices,omitempty"`
	Choice1      string   `json:"choice_1,omitempty"`
	Choice2      string   `json:"choice_2,omitempty"`
	Choice3      string   `json:"choice_3,omitempty"`
	Choice4      string   `json:"choice_4,omitempty"`
	CorrectIndex *int     `json:"correct_index" binding:"required"`
	Hint         string   `json:"hint,omitempty"`
}

// ChoiceList returns the choices with trailing blanks removed.
func (q BookQuestionInput) ChoiceList() []string {
	choices := q.Choices
	if len(choices) == 0 {
		choices = []string{q.Choice1, q.Choice2, q.Choice3, q.Choice4}
	}
	out := make([]string, len(choices))
	copy(out, choices)
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

type CreateBookRequest struct {
	Subject   string              `json:"subject" binding:"oneof=jp math sci soc"`
	Title     string              `json:"title" binding:"notblank"`
	Questions []BookQuestionInput `json:"questions" binding:"dive"`
}

func (CreateBookRequest) ActionName() string { return ActionCreateBook }

// AnswerDraft is the client-side record of one question in a finished attempt.
// UserAnswer is -1 for a question left unanswered when the attempt ended.
type AnswerDraft struct {
	QuestionID   string   `json:"question_id"`
	GenreID      string   `json:"genre_id"`
	UserAnswer   int      `json:"user_answer" binding:"gte=-1"`
	CorrectIndex int      `json:"correct_index"`
	QuestionText string   `json:"question_text,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	Hint         string   `json:"hint,omitempty"`
	TimeTaken    int      `json:"time_taken,omitempty"`
}

// Unanswered marks a draft synthesized for a skipped question.
const Unanswered = -1

type SubmitAnswersRequest struct {
	UserID        string        `json:"user_id" binding:"notblank"`
	SessionID     string        `json:"session_id" binding:"notblank"`
	Subject       string        `json:"subject" binding:"required"`
	GenreID       string        `json:"genre_id,omitempty"`
	Answers       []AnswerDraft `json:"answers" binding:"required,dive"`
	TimeRemaining int           `json:"time_remaining"`
	StartedAt     string        `json:"started_at,omitempty"`
}

func (SubmitAnswersRequest) ActionName() string { return ActionSubmitAnswers }

type GetStatsRequest struct {
	UserID string `json:"user_id" binding:"notblank"`
}

func (GetStatsRequest) ActionName() string { return ActionGetStats }

type GetHistoryRequest struct {
	UserID string `json:"user_id" binding:"notblank"`
	Limit  *int   `json:"limit,omitempty" binding:"omitempty,gte=0"`
}

func (GetHistoryRequest) ActionName() string { return ActionGetHistory }

func (r GetHistoryRequest) EffectiveLimit() int {
	if r.Limit == nil {
		return DefaultHistoryLimit
	}
	return *r.Limit
}

// ImportQuestion is one row of a bulk import. QuestionID may be empty.
type ImportQuestion struct {
	QuestionID    string   `json:"question_id,omitempty"`
	Subject       string   `json:"subject" binding:"required,oneof=jp math sci soc"`
	GenreID       string   `json:"genre_id" binding:"required"`
	GenreName     string   `json:"genre_name" binding:"required"`
	QuestionText  string   `json:"question_text" binding:"required"`
	Choices       []string `json:"choices" binding:"required,min=2,max=4"`
	CorrectIndex  *int     `json:"correct_index" binding:"required"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
	Hint          string   `json:"hint,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

type ImportQuestionsRequest struct {
	Questions []ImportQuestion `json:"questions" binding:"required,min=1,dive"`
	BatchID   string           `json:"batch_id,omitempty"`
}

func (ImportQuestionsRequest) ActionName() string { return ActionImportQuestions }

type GetRecentImportsRequest struct {
	Limit *int `json:"limit,omitempty" binding:"omitempty,gte=0"`
}

func (GetRecentImportsRequest) ActionName() string { return ActionGetRecentImports }

func (r GetRecentImportsRequest) EffectiveLimit() int {
	if r.Limit == nil {
		return DefaultImportsLimit
	}
	return *r.Limit
}

func countOrDefault(n *int) int {
	if n == nil {
		return DefaultQuestionCount
	}
	return *n
}
