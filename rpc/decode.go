package rpc

import (
	"encoding/json"
	"fmt"
)

type envelope struct {
	Action string `json:"action"`
}

// Decode parses a request body into the payload type for its action and
// validates it. The body may arrive with any content type.
func Decode(body []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	req, err := newRequest(env.Action)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// newRequest hands out pointers; callers switch on value types.
	out := deref(req)
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Action extracts the action name without decoding the rest of the body.
func Action(body []byte) string {
	var env envelope
	_ = json.Unmarshal(body, &env)
	return env.Action
}

// Encode wraps a request in its action envelope.
func Encode(req Request) ([]byte, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	action, _ := json.Marshal(req.ActionName())
	fields["action"] = action
	return json.Marshal(fields)
}

func newRequest(action string) (any, error) {
	switch action {
	case ActionLogin:
		return &LoginRequest{}, nil
	case ActionAddUser:
		return &AddUserRequest{}, nil
	case ActionGetQuestions:
		return &GetQuestionsRequest{}, nil
	case ActionGetBookQuestions:
		return &GetBookQuestionsRequest{}, nil
	case ActionGetGenres:
		return &GetGenresRequest{}, nil
	case ActionGetBooks:
		return &GetBooksRequest{}, nil
	case ActionCreateBook:
		return &CreateBookRequest{}, nil
	case ActionSubmitAnswers:
		return &SubmitAnswersRequest{}, nil
	case ActionGetStats:
		return &GetStatsRequest{}, nil
	case ActionGetHistory:
		return &GetHistoryRequest{}, nil
	case ActionImportQuestions:
		return &ImportQuestionsRequest{}, nil
	case ActionGetRecentImports:
		return &GetRecentImportsRequest{}, nil
	}
	return nil, unknownAction(action)
}

func deref(v any) Request {
	switch r := v.(type) {
	case *LoginRequest:
		return *r
	case *AddUserRequest:
		return *r
	case *GetQuestionsRequest:
		return *r
	case *GetBookQuestionsRequest:
		return *r
	case *GetGenresRequest:
		return *r
	case *GetBooksRequest:
		return *r
	case *CreateBookRequest:
		return *r
	case *SubmitAnswersRequest:
		return *r
	case *GetStatsRequest:
		return *r
	case *GetHistoryRequest:
		return *r
	case *ImportQuestionsRequest:
		return *r
	case *GetRecentImportsRequest:
		return *r
	}
	panic(fmt.Sprintf("rpc: unhandled request type %T", v))
}
