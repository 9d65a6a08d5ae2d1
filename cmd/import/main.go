package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vnkhanh/quiz-backend/client"
	"github.com/vnkhanh/quiz-backend/importfile"
	"github.com/vnkhanh/quiz-backend/rpc"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("QUIZ_SERVER", "http://127.0.0.1:8080"), "quiz API base URL")
	batchID := flag.String("batch-id", "", "batch id (default batch_YYYYMMDD_HHMM on the server)")
	adminKey := flag.String("admin-key", os.Getenv("ADMIN_KEY"), "value for the X-Admin-Key header")
	sheet := flag.String("sheet", "", "worksheet to read from an .xlsx file (default first sheet)")
	dryRun := flag.Bool("dry-run", false, "validate only, do not send")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.tsv|file.json|file.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	var questions []rpc.ImportQuestion
	var err error
	if *sheet != "" {
		questions, err = importfile.ParseXLSX(path, *sheet)
	} else {
		questions, err = importfile.Load(path)
	}
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	log.Printf("loaded %d questions from %s", len(questions), path)

	req := rpc.ImportQuestionsRequest{Questions: questions, BatchID: *batchID}
	if err := rpc.Validate(req); err != nil {
		log.Fatalf("validation failed: %v", err)
	}
	if *dryRun {
		log.Println("dry run: validation passed, nothing sent")
		return
	}

	api := client.NewHTTPClient(*server, &http.Client{Timeout: 60 * time.Second}, client.WithAdminKey(*adminKey))
	resp, err := api.ImportQuestions(context.Background(), req)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	if !resp.Success {
		log.Fatalf("import rejected: %s", resp.Error)
	}
	log.Printf("imported %d questions into batch %s", resp.ImportedCount, resp.BatchID)
	for _, id := range resp.GeneratedIDs {
		fmt.Println(id)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
