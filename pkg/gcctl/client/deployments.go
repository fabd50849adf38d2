package client

import (
	"context"
	"net/http"
)

type WebDeploymentService struct {
	client *Client
}

func (c *Client) WebDeployments() *WebDeploymentService {
	return &WebDeploymentService{client: c}
}

func (s *WebDeploymentService) Create(ctx context.Context, req CreateDeploymentRequest) (*Deployment, error) {
	var deployment Deployment
	if err := s.client.do(ctx, http.MethodPost, "/api/v2/webdeployments/deployments", nil, req, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}
