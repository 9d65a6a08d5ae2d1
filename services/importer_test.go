package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

func intp(v int) *int { return &v }

func importRow(id, genre string) rpc.ImportQuestion {
	return rpc.ImportQuestion{
		QuestionID:    id,
		Subject:       "soc",
		GenreID:       genre,
		GenreName:     "current events",
		QuestionText:  "?",
		Choices:       []string{"a", "b", "c", "d"},
		CorrectIndex:  intp(1),
		CorrectAnswer: "b",
	}
}

func TestImportGeneratesIDs(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, []models.Question{
		{QuestionID: "SO10_001", Subject: "soc", GenreID: "SO10", Choices: []string{"a", "b"}},
		{QuestionID: "SO10_003", Subject: "soc", GenreID: "SO10", Choices: []string{"a", "b"}},
		{QuestionID: "legacy-7", Subject: "soc", GenreID: "SO10", Choices: []string{"a", "b"}},
	})
	svc := newTestServices(store, Options{})

	res, err := svc.Importer.Import(ctx, []rpc.ImportQuestion{
		importRow("", "SO10"),
		importRow("SO10_001", "SO10"),
		importRow("custom-1", "SO10"),
		importRow("", "SO02"),
	}, "")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	want := []string{"SO10_004", "SO10_005", "custom-1", "SO02_001"}
	if !reflect.DeepEqual(res.QuestionIDs, want) {
		t.Fatalf("ids = %v, want %v", res.QuestionIDs, want)
	}
	if res.BatchID != "batch_20250314_0926" {
		t.Fatalf("unexpected default batch id %q", res.BatchID)
	}
	if res.ImportedCount != 4 {
		t.Fatalf("expected 4 imported, got %d", res.ImportedCount)
	}

	rows, _ := store.ListQuestions(ctx, repository.QuestionFilter{BatchID: res.BatchID})
	for _, q := range rows {
		if q.UsageCount != 0 || q.Difficulty != "normal" {
			t.Fatalf("unexpected defaults on %+v", q)
		}
	}
}

func TestImportSkipsCollidingGeneratedIDs(t *testing.T) {
	taken := map[string]bool{"JP01_002": true}
	maxByGenre := map[string]int{"JP01": 1}
	if got := nextQuestionID("JP01", maxByGenre, taken); got != "JP01_003" {
		t.Fatalf("expected JP01_003, got %s", got)
	}
	if maxByGenre["JP01"] != 3 {
		t.Fatalf("max not advanced: %v", maxByGenre)
	}
}

func TestImportRejectsInvalidRows(t *testing.T) {
	svc := newTestServices(repository.NewMemoryStore(), Options{})
	row := importRow("", "SO10")
	row.CorrectAnswer = ""

	_, err := svc.Importer.Import(context.Background(), []rpc.ImportQuestion{importRow("", "SO10"), row}, "b1")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err.Error() != "question 2 is missing correct_answer" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRecentImports(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	clock := fixedNow
	svc := newTestServices(store, Options{Now: func() time.Time { return clock }})

	if err := store.InsertQuestions(ctx, []models.Question{{QuestionID: "JP01_001", Subject: "jp", GenreID: "JP01"}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	first := importRow("", "SO10")
	jp := importRow("", "JP01")
	jp.Subject = "jp"
	if _, err := svc.Importer.Import(ctx, []rpc.ImportQuestion{first, jp, first}, "older"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	clock = clock.Add(time.Hour)
	if _, err := svc.Importer.Import(ctx, []rpc.ImportQuestion{first}, "newer"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got, err := svc.Importer.RecentImports(ctx, 5)
	if err != nil {
		t.Fatalf("RecentImports failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected initial batch excluded, got %+v", got)
	}
	if got[0].BatchID != "newer" || got[1].BatchID != "older" {
		t.Fatalf("expected newest first, got %s then %s", got[0].BatchID, got[1].BatchID)
	}
	wantSubjects := []rpc.SubjectCount{{Subject: "jp", Count: 1}, {Subject: "soc", Count: 2}}
	if got[1].Count != 3 || !reflect.DeepEqual(got[1].Subjects, wantSubjects) {
		t.Fatalf("unexpected older batch %+v", got[1])
	}

	limited, _ := svc.Importer.RecentImports(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit 1, got %d", len(limited))
	}
}
