package controllers

import (
	"context"
	"fmt"

	"github.com/vnkhanh/quiz-backend/rpc"
)

func (ctl *RPCController) importQuestions(ctx context.Context, r rpc.ImportQuestionsRequest) (rpc.ImportQuestionsResponse, error) {
	res, err := ctl.svc.Importer.Import(ctx, r.Questions, r.BatchID)
	if err != nil {
		return rpc.ImportQuestionsResponse{}, err
	}
	return rpc.ImportQuestionsResponse{
		Response:      ok(),
		BatchID:       res.BatchID,
		ImportedCount: res.ImportedCount,
		GeneratedIDs:  res.QuestionIDs,
		Message:       fmt.Sprintf("imported %d questions (batch %s)", res.ImportedCount, res.BatchID),
	}, nil
}

func (ctl *RPCController) getRecentImports(ctx context.Context, r rpc.GetRecentImportsRequest) (rpc.RecentImportsResponse, error) {
	imports, err := ctl.svc.Importer.RecentImports(ctx, r.EffectiveLimit())
	if err != nil {
		return rpc.RecentImportsResponse{}, err
	}
	return rpc.RecentImportsResponse{Response: ok(), Imports: imports}, nil
}
