package rpc

import "time"

// Response is embedded in every reply. Faults are reported with
// Success=false and a message; the HTTP status stays 200.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Failure builds the reply for any fault.
func Failure(msg string) Response {
	return Response{Success: false, Error: msg}
}

type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Response
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

type AddUserResponse struct {
	Response
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Question is the served form of a question. Usage counters and import
// provenance are never sent to clients.
type Question struct {
	QuestionID   string   `json:"question_id"`
	Subject      string   `json:"subject"`
	GenreID      string   `json:"genre_id,omitempty"`
	GenreName    string   `json:"genre_name,omitempty"`
	BookID       string   `json:"book_id,omitempty"`
	QuestionText string   `json:"question_text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Hint         string   `json:"hint,omitempty"`
}

type QuestionsResponse struct {
	Response
	Questions []Question `json:"questions"`
	TimeLimit int        `json:"time_limit"`
	BookID    string     `json:"book_id,omitempty"`
}

type Genre struct {
	GenreID   string `json:"genre_id"`
	GenreName string `json:"genre_name"`
	Count     int    `json:"count"`
}

type GenresResponse struct {
	Response
	Genres []Genre `json:"genres"`
}

// Book carries per-user progress when the request named a user.
// Accuracy is a rounded percentage.
type Book struct {
	BookID        string `json:"book_id"`
	Subject       string `json:"subject"`
	Title         string `json:"title"`
	Slug          string `json:"slug,omitempty"`
	QuestionCount int    `json:"question_count"`
	AnsweredCount int    `json:"answered_count"`
	CorrectCount  int    `json:"correct_count"`
	Accuracy      int    `json:"accuracy"`
}

type BooksResponse struct {
	Response
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

type CreateBookResponse struct {
	Response
	BookID        string `json:"book_id,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Title         string `json:"title,omitempty"`
	QuestionCount int    `json:"question_count"`
	Message       string `json:"message,omitempty"`
}

type SubmitAnswersResponse struct {
	Response
	CorrectCount int     `json:"correct_count"`
	Total        int     `json:"total"`
	Accuracy     float64 `json:"accuracy"`
}

type SubjectStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

type Stats struct {
	TotalQuestions  int                     `json:"total_questions"`
	TotalCorrect    int                     `json:"total_correct"`
	OverallAccuracy float64                 `json:"overall_accuracy"`
	BySubject       map[string]SubjectStats `json:"by_subject"`
}

type StatsResponse struct {
	Response
	Stats *Stats `json:"stats,omitempty"`
}

type HistoryEntry struct {
	SessionID      string    `json:"session_id"`
	Subject        string    `json:"subject"`
	GenreID        string    `json:"genre_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	TimeLimit      int       `json:"time_limit"`
	TimeRemaining  int       `json:"time_remaining"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

type HistoryResponse struct {
	Response
	History []HistoryEntry `json:"history"`
}

type ImportQuestionsResponse struct {
	Response
	BatchID       string   `json:"batch_id,omitempty"`
	ImportedCount int      `json:"imported_count"`
	GeneratedIDs  []string `json:"generated_ids,omitempty"`
	Message       string   `json:"message,omitempty"`
}

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

type ImportBatch struct {
	BatchID   string         `json:"batch_id"`
	Count     int            `json:"count"`
	Subjects  []SubjectCount `json:"subjects"`
	CreatedAt time.Time      `json:"created_at"`
}

type RecentImportsResponse struct {
	Response
	Imports []ImportBatch `json:"imports"`
}
