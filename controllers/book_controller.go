package controllers

import (
	"context"
	"fmt"

	"github.com/vnkhanh/quiz-backend/rpc"
)

func (ctl *RPCController) getBooks(ctx context.Context, r rpc.GetBooksRequest) (rpc.BooksResponse, error) {
	books, err := ctl.svc.Catalog.Books(ctx, r.Subject, r.UserID)
	if err != nil {
		return rpc.BooksResponse{}, err
	}
	return rpc.BooksResponse{Response: ok(), Books: books, Total: len(books)}, nil
}

func (ctl *RPCController) createBook(ctx context.Context, r rpc.CreateBookRequest) (rpc.CreateBookResponse, error) {
	book, n, err := ctl.svc.Catalog.CreateBook(ctx, r)
	if err != nil {
		return rpc.CreateBookResponse{}, err
	}
	return rpc.CreateBookResponse{
		Response:      ok(),
		BookID:        book.BookID,
		Subject:       book.Subject,
		Title:         book.Title,
		QuestionCount: n,
		Message:       fmt.Sprintf("book %s created with %d questions", book.BookID, n),
	}, nil
}
