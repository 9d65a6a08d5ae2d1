package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/services"
	"github.com/vnkhanh/quiz-backend/utils"
)

type testServer struct {
	router *gin.Engine
	store  *repository.MemoryStore
	tokens *utils.JWT
}

func newTestServer(t *testing.T, adminKey string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	tokens := utils.NewJWT("test-secret", time.Hour)
	// identity shuffle keeps selection order deterministic
	svc := services.New(store, services.Options{
		Tokens:  tokens,
		Shuffle: func(int, func(i, j int)) {},
	})
	r := gin.New()
	SetupRouter(r, Deps{Services: svc, Store: store, Tokens: tokens, AdminKey: adminKey})
	return &testServer{router: r, store: store, tokens: tokens}
}

func (s *testServer) call(t *testing.T, body string, headers map[string]string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "text/plain")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d: %s", w.Code, w.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("reply is not JSON: %v (%s)", err, w.Body.String())
	}
	return out
}

func mathQuestion(id string, usage int) models.Question {
	return models.Question{
		QuestionID:    id,
		Subject:       models.SubjectMath,
		GenreID:       "MA01",
		GenreName:     "計算",
		QuestionText:  id + "?",
		Choices:       []string{"a", "b", "c", "d"},
		CorrectIndex:  0,
		CorrectAnswer: "a",
		UsageCount:    usage,
	}
}

func TestUnknownAction(t *testing.T) {
	s := newTestServer(t, "")
	out := s.call(t, `{"action":"dance"}`, nil)
	if out["success"] != false || out["error"] != "Unknown action: dance" {
		t.Fatalf("unexpected reply %v", out)
	}
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, "")
	out := s.call(t, `not json`, nil)
	if out["success"] != false || out["error"] == "" {
		t.Fatalf("unexpected reply %v", out)
	}
}

func TestGetQuestionsPrefersLeastUsed(t *testing.T) {
	s := newTestServer(t, "")
	ctx := context.Background()
	err := s.store.InsertQuestions(ctx, []models.Question{
		mathQuestion("MA01_001", 0),
		mathQuestion("MA01_002", 0),
		mathQuestion("MA01_003", 5),
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	out := s.call(t, `{"action":"get_questions","subject":"math","count":2}`, nil)
	if out["success"] != true {
		t.Fatalf("unexpected reply %v", out)
	}
	if out["time_limit"] != float64(300) {
		t.Fatalf("math time limit should be 300, got %v", out["time_limit"])
	}
	qs := out["questions"].([]any)
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	for _, q := range qs {
		id := q.(map[string]any)["question_id"]
		if id == "MA01_003" {
			t.Fatalf("the most used question should not be served")
		}
	}

	stored, _ := s.store.ListQuestions(ctx, repository.QuestionFilter{Subject: models.SubjectMath})
	usage := map[string]int{}
	for _, q := range stored {
		usage[q.QuestionID] = q.UsageCount
	}
	if usage["MA01_001"] != 1 || usage["MA01_002"] != 1 || usage["MA01_003"] != 5 {
		t.Fatalf("unexpected usage counts %v", usage)
	}
}

func TestGetQuestionsCountZero(t *testing.T) {
	s := newTestServer(t, "")
	_ = s.store.InsertQuestions(context.Background(), []models.Question{mathQuestion("MA01_001", 0)})
	out := s.call(t, `{"action":"get_questions","subject":"math","count":0}`, nil)
	if out["success"] != true || len(out["questions"].([]any)) != 0 {
		t.Fatalf("unexpected reply %v", out)
	}
}

func TestGetGenresAllIsEmpty(t *testing.T) {
	s := newTestServer(t, "")
	_ = s.store.InsertQuestions(context.Background(), []models.Question{mathQuestion("MA01_001", 0)})
	out := s.call(t, `{"action":"get_genres","subject":"all"}`, nil)
	genres, ok := out["genres"].([]any)
	if out["success"] != true || !ok || len(genres) != 0 {
		t.Fatalf("unexpected reply %v", out)
	}
}

func TestSubmitThenStats(t *testing.T) {
	s := newTestServer(t, "")

	out := s.call(t, `{"action":"get_stats","user_id":"user001"}`, nil)
	stats := out["stats"].(map[string]any)
	if out["success"] != true || stats["total_questions"] != float64(0) || stats["overall_accuracy"] != float64(0) {
		t.Fatalf("unexpected empty stats %v", out)
	}

	out = s.call(t, `{"action":"submit_answers","user_id":"user001","session_id":"s1","subject":"math",
		"answers":[{"question_id":"MA01_001","genre_id":"MA01","user_answer":0,"correct_index":0},
		           {"question_id":"MA01_002","genre_id":"MA01","user_answer":-1,"correct_index":2}],
		"time_remaining":10}`, nil)
	if out["success"] != true || out["correct_count"] != float64(1) || out["accuracy"] != 0.5 {
		t.Fatalf("unexpected submit reply %v", out)
	}

	out = s.call(t, `{"action":"get_stats","user_id":"user001"}`, nil)
	stats = out["stats"].(map[string]any)
	if stats["total_questions"] != float64(2) || stats["total_correct"] != float64(1) {
		t.Fatalf("unexpected stats %v", stats)
	}

	out = s.call(t, `{"action":"get_history","user_id":"user001"}`, nil)
	if h := out["history"].([]any); len(h) != 1 {
		t.Fatalf("expected one history entry, got %v", out)
	}
}

func TestTokenMustMatchUser(t *testing.T) {
	s := newTestServer(t, "")
	token, err := s.tokens.GenerateToken("user002")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	auth := map[string]string{"Authorization": "Bearer " + token}

	out := s.call(t, `{"action":"get_stats","user_id":"user001"}`, auth)
	if out["success"] != false {
		t.Fatalf("mismatched token should be rejected, got %v", out)
	}
	out = s.call(t, `{"action":"get_stats","user_id":"user002"}`, auth)
	if out["success"] != true {
		t.Fatalf("matching token should pass, got %v", out)
	}
}

func TestAdminKeyGatesWrites(t *testing.T) {
	s := newTestServer(t, "s3cret")
	body := `{"action":"add_user","username":"hanako","password":"pw"}`

	out := s.call(t, body, nil)
	if out["success"] != false {
		t.Fatalf("add_user without key should fail, got %v", out)
	}
	out = s.call(t, body, map[string]string{"X-Admin-Key": "s3cret"})
	if out["success"] != true || out["user_id"] != "user001" {
		t.Fatalf("add_user with key should succeed, got %v", out)
	}

	out = s.call(t, `{"action":"login","username":"hanako","password":"pw"}`, nil)
	if out["success"] != true || out["token"] == "" {
		t.Fatalf("login failed: %v", out)
	}
	out = s.call(t, `{"action":"login","username":"hanako","password":"nope"}`, nil)
	if out["success"] != false {
		t.Fatalf("wrong password should fail, got %v", out)
	}
}

func TestImportAndCreateBook(t *testing.T) {
	s := newTestServer(t, "")

	out := s.call(t, `{"action":"import_questions","batch_id":"b1","questions":[
		{"subject":"math","genre_id":"MA02","genre_name":"図形","question_text":"q",
		 "choices":["1","2","3","4"],"correct_index":1,"correct_answer":"2"}]}`, nil)
	if out["success"] != true || out["imported_count"] != float64(1) {
		t.Fatalf("unexpected import reply %v", out)
	}
	if ids := out["generated_ids"].([]any); len(ids) != 1 || ids[0] != "MA02_001" {
		t.Fatalf("unexpected ids %v", out["generated_ids"])
	}

	out = s.call(t, `{"action":"get_recent_imports"}`, nil)
	if imports := out["imports"].([]any); len(imports) != 1 {
		t.Fatalf("expected one batch, got %v", out)
	}

	out = s.call(t, `{"action":"create_book","subject":"sci","title":"星座","questions":[
		{"question_text":"北極星は？","choice_1":"ポラリス","choice_2":"シリウス","correct_index":0}]}`, nil)
	if out["success"] != true || out["question_count"] != float64(1) {
		t.Fatalf("unexpected create_book reply %v", out)
	}
	bookID := out["book_id"].(string)

	body, _ := json.Marshal(map[string]any{"action": "get_book_questions", "book_id": bookID})
	out = s.call(t, string(body), nil)
	qs := out["questions"].([]any)
	if out["success"] != true || len(qs) != 1 || out["book_id"] != bookID {
		t.Fatalf("unexpected book questions %v", out)
	}
	if q := qs[0].(map[string]any); q["question_id"] != "1" {
		t.Fatalf("book question ids start at 1, got %v", q["question_id"])
	}

	out = s.call(t, `{"action":"get_books","subject":"sci"}`, nil)
	if out["total"] != float64(1) {
		t.Fatalf("unexpected books %v", out)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d: %s", w.Code, w.Body.String())
	}
}
