package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/vnkhanh/quiz-backend/cli"
	"github.com/vnkhanh/quiz-backend/client"
)

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("QUIZ_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8080"
	}
	server := flag.String("server", defaultServer, "quiz API base URL")
	session := flag.String("session", client.DefaultSessionPath(), "file holding the logged-in identity")
	count := flag.Int("count", 10, "questions per quiz")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.Run(ctx, os.Stdin, os.Stdout, cli.Config{
		ServerURL:   *server,
		SessionPath: *session,
		HTTPTimeout: *timeout,
		Count:       *count,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
