package models

import (
	"time"

	"gorm.io/datatypes"
)

// Book is a named question set. BookID is "<subject>_<title>".
type Book struct {
	BookID    string         `gorm:"primaryKey;size:200" json:"book_id"`
	Subject   string         `gorm:"size:10;index;not null" json:"subject"`
	Title     string         `gorm:"size:190;not null" json:"title"`
	Slug      string         `gorm:"size:200;index" json:"slug"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	Questions []BookQuestion `gorm:"foreignKey:BookID;references:BookID;constraint:OnDelete:CASCADE;" json:"-"`
}

// BookQuestion ids are local to the book and run 1..n.
type BookQuestion struct {
	BookID       string                      `gorm:"primaryKey;size:200" json:"book_id"`
	QuestionID   int                         `gorm:"primaryKey;autoIncrement:false" json:"question_id"`
	QuestionText string                      `gorm:"type:text;not null" json:"question_text"`
	Choices      datatypes.JSONSlice[string] `json:"choices"`
	CorrectIndex int                         `gorm:"not null" json:"correct_index"`
	Hint         string                      `gorm:"type:text" json:"hint,omitempty"`
	UsageCount   int                         `gorm:"not null;default:0" json:"usage_count"`
}

func (q BookQuestion) Usage() int { return q.UsageCount }
