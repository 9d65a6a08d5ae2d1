package controllers

import (
	"context"
	"time"

	"github.com/vnkhanh/quiz-backend/rpc"
	"github.com/vnkhanh/quiz-backend/services"
)

func (ctl *RPCController) submitAnswers(ctx context.Context, r rpc.SubmitAnswersRequest) (rpc.SubmitAnswersResponse, error) {
	var started time.Time
	if r.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.StartedAt); err == nil {
			started = t
		}
	}
	sum, err := ctl.svc.Recorder.Record(ctx, services.Attempt{
		UserID:        r.UserID,
		SessionID:     r.SessionID,
		Subject:       r.Subject,
		GenreID:       r.GenreID,
		Answers:       r.Answers,
		TimeRemaining: r.TimeRemaining,
		StartedAt:     started,
	})
	if err != nil {
		return rpc.SubmitAnswersResponse{}, err
	}
	return rpc.SubmitAnswersResponse{
		Response:     ok(),
		CorrectCount: sum.CorrectCount,
		Total:        sum.Total,
		Accuracy:     sum.Accuracy,
	}, nil
}

func (ctl *RPCController) getStats(ctx context.Context, r rpc.GetStatsRequest) (rpc.StatsResponse, error) {
	st, err := ctl.svc.Stats.Aggregate(ctx, r.UserID)
	if err != nil {
		return rpc.StatsResponse{}, err
	}
	return rpc.StatsResponse{Response: ok(), Stats: &st}, nil
}

func (ctl *RPCController) getHistory(ctx context.Context, r rpc.GetHistoryRequest) (rpc.HistoryResponse, error) {
	h, err := ctl.svc.History.List(ctx, r.UserID, r.EffectiveLimit())
	if err != nil {
		return rpc.HistoryResponse{}, err
	}
	return rpc.HistoryResponse{Response: ok(), History: h}, nil
}
