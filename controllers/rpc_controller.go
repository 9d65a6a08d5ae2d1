package controllers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/quiz-backend/middleware"
	"github.com/vnkhanh/quiz-backend/rpc"
	"github.com/vnkhanh/quiz-backend/services"
)

const maxBodyBytes = 4 << 20

// RPCController serves every action on one POST endpoint. Replies are always
// HTTP 200; failures carry success=false and a message.
type RPCController struct {
	svc *services.Services
	log *slog.Logger
}

func NewRPCController(svc *services.Services, log *slog.Logger) *RPCController {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RPCController{svc: svc, log: log}
}

func (ctl *RPCController) Handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusOK, rpc.Failure("could not read request body"))
		return
	}

	req, err := rpc.Decode(body)
	if err != nil {
		ctl.fail(c, rpc.Action(body), err)
		return
	}

	resp, err := ctl.dispatch(c.Request.Context(), req, caller{
		userID: callerID(c),
		admin:  middleware.IsAdmin(c),
	})
	if err != nil {
		ctl.fail(c, req.ActionName(), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type caller struct {
	userID string
	admin  bool
}

var adminActions = map[string]bool{
	rpc.ActionAddUser:         true,
	rpc.ActionCreateBook:      true,
	rpc.ActionImportQuestions: true,
}

func (ctl *RPCController) dispatch(ctx context.Context, req rpc.Request, who caller) (any, error) {
	if adminActions[req.ActionName()] && !who.admin {
		return nil, &services.Error{Kind: services.ErrAuth, Msg: "admin key required for " + req.ActionName()}
	}
	uid := who.userID

	switch r := req.(type) {
	case rpc.LoginRequest:
		return ctl.login(ctx, r)
	case rpc.AddUserRequest:
		return ctl.addUser(ctx, r)
	case rpc.GetQuestionsRequest:
		return ctl.getQuestions(ctx, r)
	case rpc.GetBookQuestionsRequest:
		return ctl.getBookQuestions(ctx, r)
	case rpc.GetGenresRequest:
		return ctl.getGenres(ctx, r)
	case rpc.GetBooksRequest:
		if r.UserID != "" {
			if err := sameUser(uid, r.UserID); err != nil {
				return nil, err
			}
		}
		return ctl.getBooks(ctx, r)
	case rpc.CreateBookRequest:
		return ctl.createBook(ctx, r)
	case rpc.SubmitAnswersRequest:
		if err := sameUser(uid, r.UserID); err != nil {
			return nil, err
		}
		return ctl.submitAnswers(ctx, r)
	case rpc.GetStatsRequest:
		if err := sameUser(uid, r.UserID); err != nil {
			return nil, err
		}
		return ctl.getStats(ctx, r)
	case rpc.GetHistoryRequest:
		if err := sameUser(uid, r.UserID); err != nil {
			return nil, err
		}
		return ctl.getHistory(ctx, r)
	case rpc.ImportQuestionsRequest:
		return ctl.importQuestions(ctx, r)
	case rpc.GetRecentImportsRequest:
		return ctl.getRecentImports(ctx, r)
	}
	return nil, errors.New("unhandled request type")
}

func (ctl *RPCController) fail(c *gin.Context, action string, err error) {
	msg, internal := errorMessage(err)
	if internal {
		ctl.log.ErrorContext(c.Request.Context(), "action failed", "action", action, "error", err)
	} else {
		ctl.log.InfoContext(c.Request.Context(), "action rejected", "action", action, "error", msg)
	}
	c.JSON(http.StatusOK, rpc.Failure(msg))
}

// errorMessage returns the client-facing text and whether the fault was ours.
func errorMessage(err error) (string, bool) {
	var svcErr *services.Error
	var verr *rpc.ValidationError
	switch {
	case errors.As(err, &svcErr):
		return svcErr.Msg, false
	case errors.As(err, &verr):
		return verr.Error(), false
	case errors.Is(err, rpc.ErrUnknownAction):
		return err.Error(), false
	case errors.Is(err, rpc.ErrMalformed):
		return "request body must be a JSON object", false
	}
	return "internal server error", true
}

func callerID(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// sameUser only applies when the request carried a valid token.
func sameUser(uid, userID string) error {
	if uid == "" || uid == userID {
		return nil
	}
	return &services.Error{Kind: services.ErrAuth, Msg: "user_id does not match the session token"}
}

func ok() rpc.Response { return rpc.Response{Success: true} }
