package client

import (
	"context"
	"net/http"
)

type UserService struct {
	client *Client
}

func (c *Client) Users() *UserService {
	return &UserService{client: c}
}

// Me returns the user the credential belongs to. Client-credentials tokens
// are not bound to a user, so the platform answers 400 for them.
func (s *UserService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.do(ctx, http.MethodGet, "/api/v2/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
