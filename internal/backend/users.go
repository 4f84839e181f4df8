package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_storefront/internal/domain"
)

// loginResponse tolerates the backend's inconsistent id casing ("id" on
// some deployments, "ID" on others).
type loginResponse struct {
	ID       int64  `json:"id"`
	UpperID  int64  `json:"ID"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoggedUser, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/Users/Login", nil, "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	id := resp.ID
	if id == 0 {
		id = resp.UpperID
	}
	username := resp.Username
	if username == "" {
		username = email
	}
	return &domain.LoggedUser{
		ID:       id,
		Username: username,
		Email:    resp.Email,
		Role:     resp.Role,
		Token:    resp.Token,
	}, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/Users/Logout", nil, token, nil, nil)
}

// RegisterRequest is forwarded verbatim; the backend owns validation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPut, "/Users/Save", nil, "", req, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/Users/ForgotPassword", nil, "", map[string]string{"email": email}, nil)
}

func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	return c.do(ctx, http.MethodPost, "/Users/VerifyResetCode", nil, "", map[string]string{
		"email": email,
		"code":  code,
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/Users/ResetPassword", nil, "", map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": newPassword,
	}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/Users/ChangePassword", nil, token, map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	query := url.Values{"token": {token}}
	return c.do(ctx, http.MethodGet, "/Users/VerifyEmail", query, "", nil, nil)
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/Users/ResendVerification", nil, "", map[string]string{"email": email}, nil)
}

// User is the back-office listing shape.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/Users/List", nil, token, nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, user User) error {
	return c.do(ctx, http.MethodPost, "/Users/Update", nil, token, user, nil)
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	query := url.Values{"pID": {strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodDelete, "/Users/Delete", query, token, nil, nil)
}
