package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

var questionIDPattern = regexp.MustCompile(`^([A-Z]{2}\d{2})_(\d+)$`)

type Importer struct {
	questions repository.QuestionRepository
	events    Notifier
	now       func() time.Time
	log       *slog.Logger
}

type ImportResult struct {
	BatchID       string
	ImportedCount int
	// QuestionIDs holds the stored id of every imported row, in input order.
	QuestionIDs []string
}

// Import validates and stores a batch of questions. Questions whose id is
// empty or already taken get the next free "<GENRE>_<NNN>" id.
func (im *Importer) Import(ctx context.Context, questions []rpc.ImportQuestion, batchID string) (ImportResult, error) {
	req := rpc.ImportQuestionsRequest{Questions: questions, BatchID: batchID}
	if err := rpc.Validate(req); err != nil {
		return ImportResult{}, invalid("%s", err.Error())
	}

	now := im.now()
	if batchID == "" {
		batchID = DefaultBatchID(now)
	}

	existing, err := im.questions.QuestionIDs(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, id := range existing {
		taken[id] = true
	}
	maxByGenre := maxNumbersByGenre(existing)

	rows := make([]models.Question, 0, len(questions))
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		id := q.QuestionID
		if id == "" || taken[id] {
			id = nextQuestionID(q.GenreID, maxByGenre, taken)
		}
		taken[id] = true
		ids = append(ids, id)

		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "normal"
		}
		rows = append(rows, models.Question{
			QuestionID:    id,
			Subject:       q.Subject,
			GenreID:       q.GenreID,
			GenreName:     q.GenreName,
			QuestionText:  q.QuestionText,
			Choices:       q.Choices,
			CorrectIndex:  *q.CorrectIndex,
			CorrectAnswer: q.CorrectAnswer,
			Hint:          q.Hint,
			Difficulty:    difficulty,
			ImportBatchID: batchID,
			CreatedAt:     now,
		})
	}

	if err := im.questions.InsertQuestions(ctx, rows); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ImportResult{}, invalid("question id collision, retry the import")
		}
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}

	im.log.InfoContext(ctx, "questions imported", "batch_id", batchID, "count", len(rows))
	im.events.Notify(EventQuestionsImported, map[string]any{
		"batch_id": batchID,
		"count":    len(rows),
	})
	return ImportResult{BatchID: batchID, ImportedCount: len(rows), QuestionIDs: ids}, nil
}

// DefaultBatchID formats the local time as batch_YYYYMMDD_HHMM.
func DefaultBatchID(t time.Time) string {
	return "batch_" + t.Format("20060102_1504")
}

func maxNumbersByGenre(ids []string) map[string]int {
	out := make(map[string]int)
	for _, id := range ids {
		m := questionIDPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if n > out[m[1]] {
			out[m[1]] = n
		}
	}
	return out
}

func nextQuestionID(genreID string, maxByGenre map[string]int, taken map[string]bool) string {
	n := maxByGenre[genreID] + 1
	id := fmt.Sprintf("%s_%03d", genreID, n)
	for taken[id] {
		n++
		id = fmt.Sprintf("%s_%03d", genreID, n)
	}
	maxByGenre[genreID] = n
	return id
}

// RecentImports lists import batches newest first. Rows tagged "initial"
// are not imports and are skipped.
func (im *Importer) RecentImports(ctx context.Context, limit int) ([]rpc.ImportBatch, error) {
	if limit <= 0 {
		return []rpc.ImportBatch{}, nil
	}
	rows, err := im.questions.ListQuestions(ctx, repository.QuestionFilter{})
	if err != nil {
		return nil, fmt.Errorf("recent imports: %w", err)
	}

	type batch struct {
		rpc.ImportBatch
		bySubject map[string]int
	}
	batches := make(map[string]*batch)
	for _, q := range rows {
		id := q.ImportBatchID
		if id == "" {
			id = models.InitialBatch
		}
		if id == models.InitialBatch {
			continue
		}
		b, ok := batches[id]
		if !ok {
			b = &batch{ImportBatch: rpc.ImportBatch{BatchID: id, CreatedAt: q.CreatedAt}, bySubject: map[string]int{}}
			batches[id] = b
		}
		b.Count++
		b.bySubject[q.Subject]++
		if q.CreatedAt.After(b.CreatedAt) {
			b.CreatedAt = q.CreatedAt
		}
	}

	out := make([]rpc.ImportBatch, 0, len(batches))
	for _, b := range batches {
		subjects := make([]rpc.SubjectCount, 0, len(b.bySubject))
		for s, n := range b.bySubject {
			subjects = append(subjects, rpc.SubjectCount{Subject: s, Count: n})
		}
		sort.Slice(subjects, func(i, j int) bool { return subjects[i].Subject < subjects[j].Subject })
		b.Subjects = subjects
		out = append(out, b.ImportBatch)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].BatchID > out[j].BatchID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
