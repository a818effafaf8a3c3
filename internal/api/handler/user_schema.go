package handler

import (
	"time"

	"github.com/healthgate/api-gateway/internal/core/domain"
	"github.com/healthgate/api-gateway/internal/core/ports"
)

// userResponse is the public view of an identity. The password hash has no
// field here, so it can never be serialized.
type userResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		Phone:    u.Phone,
		Address:  u.Address,
	}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt
		resp.CreatedAt = &t
	}
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type userEnvelope struct {
	Success bool         `json:"success"`
	Data    userResponse `json:"data"`
}

type emptyEnvelope struct {
	Success bool     `json:"success"`
	Data    struct{} `json:"data"`
}

type pageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type pagination struct {
	Next *pageRef `json:"next,omitempty"`
	Prev *pageRef `json:"prev,omitempty"`
}

type listUsersResponse struct {
	Success     bool           `json:"success"`
	Count       int            `json:"count"`
	Pagination  pagination     `json:"pagination"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Data        []userResponse `json:"data"`
}

func toListUsersResponse(res *ports.ListUsersResult) listUsersResponse {
	data := make([]userResponse, 0, len(res.Items))
	for _, u := range res.Items {
		data = append(data, toUserResponse(u))
	}

	var p pagination
	if res.Next != nil {
		p.Next = &pageRef{Page: res.Next.Page, Limit: res.Next.Limit}
	}
	if res.Prev != nil {
		p.Prev = &pageRef{Page: res.Prev.Page, Limit: res.Prev.Limit}
	}

	return listUsersResponse{
		Success:     true,
		Count:       len(data),
		Pagination:  p,
		TotalPages:  res.TotalPages,
		CurrentPage: res.Page,
		Data:        data,
	}
}

// errorEnvelope documents the shape rendered by the HTTP error handler.
type errorEnvelope struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error"`
}
