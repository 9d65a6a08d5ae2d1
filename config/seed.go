package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
	"github.com/vnkhanh/quiz-backend/services"
)

func idx(i int) *int { return &i }

var sampleQuestions = []rpc.ImportQuestion{
	{QuestionID: "JP01_001", Subject: "jp", GenreID: "JP01", GenreName: "漢字・語彙",
		QuestionText: "「収穫」の読み方として正しいものはどれですか？",
		Choices:      []string{"しゅうかく", "しゅかく", "すうかく", "しゅうがく"}, CorrectIndex: idx(0), CorrectAnswer: "しゅうかく",
		Hint: "「収」は「しゅう」、「穫」は「かく」と読みます"},
	{QuestionID: "MA01_001", Subject: "math", GenreID: "MA01", GenreName: "計算",
		QuestionText: "25 × 4 の答えはいくつですか？",
		Choices:      []string{"100", "90", "110", "80"}, CorrectIndex: idx(0), CorrectAnswer: "100",
		Hint: "25を4回たすと考えましょう", Difficulty: "easy"},
	{QuestionID: "SC07_001", Subject: "sci", GenreID: "SC07", GenreName: "植物",
		QuestionText: "光合成で植物が吸収する気体は何ですか？",
		Choices:      []string{"二酸化炭素", "酸素", "窒素", "水素"}, CorrectIndex: idx(0), CorrectAnswer: "二酸化炭素",
		Hint: "植物は光を使って二酸化炭素と水から養分を作ります"},
	{QuestionID: "SO04_001", Subject: "soc", GenreID: "SO04", GenreName: "歴史（古代〜平安）",
		QuestionText: "聖徳太子が定めた役人の心構えを示した法律は何ですか？",
		Choices:      []string{"十七条の憲法", "大宝律令", "御成敗式目", "武家諸法度"}, CorrectIndex: idx(0), CorrectAnswer: "十七条の憲法",
		Hint: "「和を以て貴しとなす」という言葉が有名です"},
	{QuestionID: "MA04_001", Subject: "math", GenreID: "MA04", GenreName: "速さ",
		QuestionText: "時速60kmで2時間走ると何km進みますか？",
		Choices:      []string{"120km", "60km", "30km", "180km"}, CorrectIndex: idx(0), CorrectAnswer: "120km",
		Hint: "距離＝速さ×時間で計算します"},
}

var sampleUsers = [][2]string{
	{"テスト太郎", "test123"},
	{"テスト花子", "test456"},
	{"テスト次郎", "test789"},
}

// Seed fills an empty datastore with sample questions and test users.
// Tables that already have rows are left alone.
func Seed(ctx context.Context, store repository.Store, svc *services.Services, log *slog.Logger) error {
	ids, err := store.QuestionIDs(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(ids) == 0 {
		if _, err := svc.Importer.Import(ctx, sampleQuestions, models.InitialBatch); err != nil {
			return fmt.Errorf("seed questions: %w", err)
		}
		log.InfoContext(ctx, "seeded sample questions", "count", len(sampleQuestions))
	}

	users, err := store.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(users) == 0 {
		for _, u := range sampleUsers {
			if _, err := svc.Accounts.AddUser(ctx, u[0], u[1]); err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
		log.InfoContext(ctx, "seeded test users", "count", len(sampleUsers))
	}
	return nil
}
