package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type QueueService struct {
	client *Client
}

func (c *Client) Queues() *QueueService {
	return &QueueService{client: c}
}

type queueMember struct {
	ID string `json:"id"`
}

// FindByName returns the first queue the name filter yields.
func (s *QueueService) FindByName(ctx context.Context, name string) (*Queue, error) {
	params := url.Values{}
	params.Set("name", name)
	var listing EntityListing[Queue]
	if err := s.client.do(ctx, http.MethodGet, "/api/v2/routing/queues", params, nil, &listing); err != nil {
		return nil, err
	}
	if len(listing.Entities) == 0 {
		return nil, fmt.Errorf("queue %q: %w", name, ErrNotFound)
	}
	return &listing.Entities[0], nil
}

func (s *QueueService) Create(ctx context.Context, req CreateQueueRequest) (*Queue, error) {
	var queue Queue
	if err := s.client.do(ctx, http.MethodPost, "/api/v2/routing/queues", nil, req, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// AddMembers adds users to a queue. A 404 means the queue or a user does not exist.
func (s *QueueService) AddMembers(ctx context.Context, queueID string, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]queueMember, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, queueMember{ID: id})
	}
	endpoint := fmt.Sprintf("/api/v2/routing/queues/%s/members", url.PathEscape(queueID))
	return s.client.do(ctx, http.MethodPost, endpoint, nil, members, nil)
}
