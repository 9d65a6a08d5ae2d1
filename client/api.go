// Package client talks to the quiz RPC endpoint and drives one quiz attempt.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vnkhanh/quiz-backend/rpc"
)

// ErrServiceUnavailable wraps every transport fault. A reply with
// success=false is not an error; callers inspect the response.
var ErrServiceUnavailable = errors.New("quiz service unavailable")

const defaultServer = "http://127.0.0.1:8080"

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
	adminKey   string
}

type Option func(*HTTPClient)

// WithToken sets the source of the bearer token sent with every call.
func WithToken(token func() string) Option {
	return func(c *HTTPClient) { c.token = token }
}

func WithAdminKey(key string) Option {
	return func(c *HTTPClient) { c.adminKey = key }
}

func NewHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &HTTPClient{baseURL: baseURL, httpClient: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (rpc.LoginResponse, error) {
	return call[rpc.LoginResponse](ctx, c, rpc.LoginRequest{Username: username, Password: password})
}

func (c *HTTPClient) AddUser(ctx context.Context, username, password string) (rpc.AddUserResponse, error) {
	return call[rpc.AddUserResponse](ctx, c, rpc.AddUserRequest{Username: username, Password: password})
}

func (c *HTTPClient) GetQuestions(ctx context.Context, req rpc.GetQuestionsRequest) (rpc.QuestionsResponse, error) {
	return call[rpc.QuestionsResponse](ctx, c, req)
}

func (c *HTTPClient) GetBookQuestions(ctx context.Context, req rpc.GetBookQuestionsRequest) (rpc.QuestionsResponse, error) {
	return call[rpc.QuestionsResponse](ctx, c, req)
}

func (c *HTTPClient) GetGenres(ctx context.Context, subject string) (rpc.GenresResponse, error) {
	return call[rpc.GenresResponse](ctx, c, rpc.GetGenresRequest{Subject: subject})
}

func (c *HTTPClient) GetBooks(ctx context.Context, subject, userID string) (rpc.BooksResponse, error) {
	return call[rpc.BooksResponse](ctx, c, rpc.GetBooksRequest{Subject: subject, UserID: userID})
}

func (c *HTTPClient) CreateBook(ctx context.Context, req rpc.CreateBookRequest) (rpc.CreateBookResponse, error) {
	return call[rpc.CreateBookResponse](ctx, c, req)
}

func (c *HTTPClient) SubmitAnswers(ctx context.Context, req rpc.SubmitAnswersRequest) (rpc.SubmitAnswersResponse, error) {
	return call[rpc.SubmitAnswersResponse](ctx, c, req)
}

func (c *HTTPClient) GetStats(ctx context.Context, userID string) (rpc.StatsResponse, error) {
	return call[rpc.StatsResponse](ctx, c, rpc.GetStatsRequest{UserID: userID})
}

func (c *HTTPClient) GetHistory(ctx context.Context, userID string, limit int) (rpc.HistoryResponse, error) {
	req := rpc.GetHistoryRequest{UserID: userID}
	if limit > 0 {
		req.Limit = &limit
	}
	return call[rpc.HistoryResponse](ctx, c, req)
}

func (c *HTTPClient) ImportQuestions(ctx context.Context, req rpc.ImportQuestionsRequest) (rpc.ImportQuestionsResponse, error) {
	return call[rpc.ImportQuestionsResponse](ctx, c, req)
}

func (c *HTTPClient) GetRecentImports(ctx context.Context, limit int) (rpc.RecentImportsResponse, error) {
	req := rpc.GetRecentImportsRequest{}
	if limit > 0 {
		req.Limit = &limit
	}
	return call[rpc.RecentImportsResponse](ctx, c, req)
}

func call[T any](ctx context.Context, c *HTTPClient, req rpc.Request) (T, error) {
	var out T
	err := c.post(ctx, req, &out)
	return out, err
}

func (c *HTTPClient) post(ctx context.Context, req rpc.Request, responseBody any) error {
	encoded, err := rpc.Encode(req)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	// text/plain keeps browsers from sending a preflight; the server accepts any type
	request.Header.Set("Content-Type", "text/plain;charset=utf-8")
	if c.token != nil {
		if t := c.token(); t != "" {
			request.Header.Set("Authorization", "Bearer "+t)
		}
	}
	if c.adminKey != "" {
		request.Header.Set("X-Admin-Key", c.adminKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrServiceUnavailable, req.ActionName(), response.Status)
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("%w: decode %s reply: %v", ErrServiceUnavailable, req.ActionName(), err)
	}
	return nil
}
