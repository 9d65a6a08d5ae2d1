package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vnkhanh/quiz-backend/importfile"
	"github.com/vnkhanh/quiz-backend/rpc"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// Generation modes: one question per knowledge item, or several.
const (
	ModeStandard = "standard"
	ModeMax      = "max"
)

var subjectByGenrePrefix = map[string]string{
	"JP": "jp",
	"MA": "math",
	"SC": "sci",
	"SO": "soc",
}

// SubjectOfGenre maps a genre id like "SC04" to its subject code.
func SubjectOfGenre(genreID string) string {
	if len(genreID) < 2 {
		return ""
	}
	return subjectByGenrePrefix[strings.ToUpper(genreID[:2])]
}

// GeminiGenerateText sends one prompt and returns the first text part.
func GeminiGenerateText(ctx context.Context, apiKey, model, system, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	if model == "" {
		model = DefaultGeminiModel
	}
	m := client.GenerativeModel(model)
	if system != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// QuestionGenerator turns knowledge items into four-choice questions.
type QuestionGenerator struct {
	Generate func(ctx context.Context, system, prompt string) (string, error)
	System   string
}

func NewQuestionGenerator(apiKey, model, system string) *QuestionGenerator {
	return &QuestionGenerator{
		System: system,
		Generate: func(ctx context.Context, system, prompt string) (string, error) {
			return GeminiGenerateText(ctx, apiKey, model, system, prompt)
		},
	}
}

// Rejected is a generated row that failed validation.
type Rejected struct {
	Row    rpc.ImportQuestion
	Reason string
}

// FromKnowledge asks the model for one chunk of items and returns the rows
// that pass validation.
func (g *QuestionGenerator) FromKnowledge(ctx context.Context, genreID, genreName, mode string, items []json.RawMessage) ([]rpc.ImportQuestion, []Rejected, error) {
	prompt, err := BuildQuestionPrompt(genreID, genreName, mode, items)
	if err != nil {
		return nil, nil, err
	}
	text, err := g.Generate(ctx, g.System, prompt)
	if err != nil {
		return nil, nil, err
	}
	rows, err := importfile.ParseTSV(strings.NewReader(ExtractTSV(text)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse model output: %w", err)
	}

	var ok []rpc.ImportQuestion
	var bad []Rejected
	for _, r := range rows {
		if reason := checkGenerated(r); reason != "" {
			bad = append(bad, Rejected{Row: r, Reason: reason})
			continue
		}
		ok = append(ok, r)
	}
	return ok, bad, nil
}

func BuildQuestionPrompt(genreID, genreName, mode string, items []json.RawMessage) (string, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode knowledge: %w", err)
	}
	if genreName == "" {
		genreName = genreID
	}
	instruction := "Write one simple question for each knowledge item."
	if mode == ModeMax {
		instruction = "Write several questions for each knowledge item, varying the angle (reverse the question and answer, ask for the definition or for the name)."
	}

	var b strings.Builder
	b.WriteString("Turn the knowledge items below into four-choice quiz questions.\n\n")
	b.WriteString("## Instructions\n" + instruction + "\n\n")
	fmt.Fprintf(&b, "## Metadata\n- subject: %s\n- genre_id: %s\n- genre_name: %s\n\n", SubjectOfGenre(genreID), genreID, genreName)
	b.WriteString("## Rules\n")
	b.WriteString("1. Exactly four choices per question, no duplicates within a question.\n")
	b.WriteString("2. Wrong choices come from the same category as the answer.\n")
	b.WriteString("3. Output TSV only, with a header row, inside a ```tsv code block.\n")
	b.WriteString("4. Columns: subject, genre_id, genre_name, question_text, choices (JSON array), correct_index, correct_answer, hint, difficulty.\n\n")
	fmt.Fprintf(&b, "## Knowledge (%d items)\n```json\n%s\n```\n", len(items), data)
	return b.String(), nil
}

var tsvBlock = regexp.MustCompile("(?s)```(?:tsv)?\n(.+?)```")

// ExtractTSV pulls the TSV body out of a model reply: the fenced block if
// present, else every line containing a tab.
func ExtractTSV(text string) string {
	if m := tsvBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.Contains(l, "\t") {
			lines = append(lines, l)
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	return strings.TrimSpace(text)
}

func checkGenerated(q rpc.ImportQuestion) string {
	if err := rpc.Validate(rpc.ImportQuestionsRequest{Questions: []rpc.ImportQuestion{q}}); err != nil {
		return err.Error()
	}
	if len(q.Choices) != 4 {
		return fmt.Sprintf("need exactly 4 choices, got %d", len(q.Choices))
	}
	seen := make(map[string]bool, 4)
	for _, c := range q.Choices {
		if seen[c] {
			return "duplicate choice " + c
		}
		seen[c] = true
	}
	if q.Choices[*q.CorrectIndex] != q.CorrectAnswer {
		return "correct_answer does not match choices[correct_index]"
	}
	return ""
}
