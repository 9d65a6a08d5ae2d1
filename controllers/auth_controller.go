package controllers

import (
	"context"

	"github.com/vnkhanh/quiz-backend/rpc"
)

func (ctl *RPCController) login(ctx context.Context, r rpc.LoginRequest) (rpc.LoginResponse, error) {
	u, token, err := ctl.svc.Accounts.Login(ctx, r.Username, r.Password)
	if err != nil {
		return rpc.LoginResponse{}, err
	}
	return rpc.LoginResponse{
		Response: ok(),
		User:     &rpc.User{UserID: u.UserID, Username: u.Username},
		Token:    token,
	}, nil
}

func (ctl *RPCController) addUser(ctx context.Context, r rpc.AddUserRequest) (rpc.AddUserResponse, error) {
	u, err := ctl.svc.Accounts.AddUser(ctx, r.Username, r.Password)
	if err != nil {
		return rpc.AddUserResponse{}, err
	}
	return rpc.AddUserResponse{
		Response: ok(),
		UserID:   u.UserID,
		Username: u.Username,
		Message:  "user " + u.Username + " created",
	}, nil
}
