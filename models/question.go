package models

import (
	"time"

	"gorm.io/datatypes"
)

// InitialBatch tags rows that were not created by an import.
const InitialBatch = "initial"

type Question struct {
	QuestionID    string                      `gorm:"primaryKey;size:64" json:"question_id"`
	Subject       string                      `gorm:"size:10;index;not null" json:"subject"`
	GenreID       string                      `gorm:"size:64;index;not null" json:"genre_id"`
	GenreName     string                      `gorm:"size:150" json:"genre_name"`
	QuestionText  string                      `gorm:"type:text;not null" json:"question_text"`
	Choices       datatypes.JSONSlice[string] `json:"choices"`
	CorrectIndex  int                         `gorm:"not null" json:"correct_index"`
	CorrectAnswer string                      `gorm:"type:text" json:"correct_answer"`
	Hint          string                      `gorm:"type:text" json:"hint,omitempty"`
	Difficulty    string                      `gorm:"size:20;default:'normal'" json:"difficulty"`
	UsageCount    int                         `gorm:"not null;default:0" json:"usage_count"`
	ImportBatchID string                      `gorm:"size:64;index;default:'initial'" json:"import_batch_id"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Usage reports how many batches have served the question.
func (q Question) Usage() int { return q.UsageCount }
