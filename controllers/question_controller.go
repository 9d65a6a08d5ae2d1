package controllers

import (
	"context"

	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

func (ctl *RPCController) getQuestions(ctx context.Context, r rpc.GetQuestionsRequest) (rpc.QuestionsResponse, error) {
	filter := repository.QuestionFilter{Subject: r.Subject, GenreID: r.GenreID, BatchID: r.BatchID}
	batch, err := ctl.svc.Catalog.Questions(ctx, filter, r.EffectiveCount())
	if err != nil {
		return rpc.QuestionsResponse{}, err
	}
	return rpc.QuestionsResponse{Response: ok(), Questions: batch.Questions, TimeLimit: batch.TimeLimit}, nil
}

func (ctl *RPCController) getBookQuestions(ctx context.Context, r rpc.GetBookQuestionsRequest) (rpc.QuestionsResponse, error) {
	batch, err := ctl.svc.Catalog.BookQuestions(ctx, r.BookID, r.EffectiveCount())
	if err != nil {
		return rpc.QuestionsResponse{}, err
	}
	return rpc.QuestionsResponse{
		Response:  ok(),
		Questions: batch.Questions,
		TimeLimit: batch.TimeLimit,
		BookID:    batch.BookID,
	}, nil
}

func (ctl *RPCController) getGenres(ctx context.Context, r rpc.GetGenresRequest) (rpc.GenresResponse, error) {
	genres, err := ctl.svc.Catalog.Genres(ctx, r.Subject)
	if err != nil {
		return rpc.GenresResponse{}, err
	}
	return rpc.GenresResponse{Response: ok(), Genres: genres}, nil
}
