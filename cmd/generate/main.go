package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/rpc"
	"github.com/vnkhanh/quiz-backend/services"
)

const defaultSystem = "You write four-choice quiz questions for Japanese elementary school students preparing for entrance exams. Questions must be answerable from the given knowledge alone."

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	mode := flag.String("mode", services.ModeMax, "generation mode: standard or max")
	model := flag.String("model", services.DefaultGeminiModel, "Gemini model id")
	chunkSize := flag.Int("chunk-size", 20, "knowledge items per API call")
	outDir := flag.String("output-dir", filepath.Join("data", "generated"), "directory for the generated JSON files")
	systemFile := flag.String("system", "", "file with the system instruction")
	dryRun := flag.Bool("dry-run", false, "print prompt sizes without calling the API")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <GENRE.json>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *mode != services.ModeStandard && *mode != services.ModeMax {
		log.Fatalf("unknown mode %q", *mode)
	}

	system := defaultSystem
	if *systemFile != "" {
		b, err := os.ReadFile(*systemFile)
		if err != nil {
			log.Fatalf("read system instruction: %v", err)
		}
		system = string(b)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" && !*dryRun {
		log.Fatal("GEMINI_API_KEY is not set")
	}
	gen := services.NewQuestionGenerator(apiKey, *model, system)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	ctx := context.Background()
	total := 0
	for _, path := range flag.Args() {
		n, err := processFile(ctx, gen, path, *mode, *outDir, *chunkSize, *dryRun)
		if err != nil {
			log.Printf("%s: %v", path, err)
			continue
		}
		total += n
	}
	log.Printf("done: %d questions", total)
}

func processFile(ctx context.Context, gen *services.QuestionGenerator, path, mode, outDir string, chunkSize int, dryRun bool) (int, error) {
	genreID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	genreName, ok := models.GenreName(genreID)
	if !ok {
		genreName = genreID
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("knowledge file must be a JSON array: %w", err)
	}

	chunks := chunk(items, chunkSize)
	log.Printf("%s (%s): %d items in %d chunks", genreID, genreName, len(items), len(chunks))

	var questions []rpc.ImportQuestion
	for i, c := range chunks {
		if dryRun {
			prompt, err := services.BuildQuestionPrompt(genreID, genreName, mode, c)
			if err != nil {
				return 0, err
			}
			log.Printf("  chunk %d/%d: prompt %d bytes", i+1, len(chunks), len(prompt))
			continue
		}

		ok, rejected, err := gen.FromKnowledge(ctx, genreID, genreName, mode, c)
		if err != nil {
			log.Printf("  chunk %d/%d failed: %v", i+1, len(chunks), err)
			continue
		}
		for _, r := range rejected {
			log.Printf("  rejected %q: %s", r.Row.QuestionText, r.Reason)
		}
		log.Printf("  chunk %d/%d: %d questions", i+1, len(chunks), len(ok))
		questions = append(questions, ok...)

		// stay under the free-tier rate limit
		if i < len(chunks)-1 {
			time.Sleep(time.Second)
		}
	}
	if dryRun || len(questions) == 0 {
		return 0, nil
	}

	out := filepath.Join(outDir, genreID+".json")
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return 0, err
	}
	log.Printf("  wrote %d questions to %s", len(questions), out)
	return len(questions), nil
}

func chunk(items []json.RawMessage, size int) [][]json.RawMessage {
	if size <= 0 {
		size = len(items)
	}
	var out [][]json.RawMessage
	for size > 0 && len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}
