package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one recorded response. Rows are append-only.
type Answer struct {
	AnswerID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"answer_id"`
	UserID     string    `gorm:"size:32;index;not null" json:"user_id"`
	SessionID  string    `gorm:"size:64;index" json:"session_id"`
	QuestionID string    `gorm:"size:64" json:"question_id"`
	Subject    string    `gorm:"size:10" json:"subject"`
	GenreID    string    `gorm:"size:200;index" json:"genre_id"`
	UserAnswer int       `json:"user_answer"`
	IsCorrect  bool      `gorm:"default:false" json:"is_correct"`
	TimeTaken  int       `gorm:"default:0" json:"time_taken"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Session summarises one submitted attempt. SessionID is client supplied and
// not unique: a resubmission appends a second row.
type Session struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	SessionID      string    `gorm:"size:64;index" json:"session_id"`
	UserID         string    `gorm:"size:32;index;not null" json:"user_id"`
	Subject        string    `gorm:"size:10" json:"subject"`
	GenreID        string    `gorm:"size:200" json:"genre_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	TimeLimit      int       `json:"time_limit"`
	TimeRemaining  int       `json:"time_remaining"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
