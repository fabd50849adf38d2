package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FlowTypeInboundShortMessage is the architect flow type that handles
// inbound messaging interactions.
const FlowTypeInboundShortMessage = "inboundshortmessage"

type FlowService struct {
	client *Client
}

func (c *Client) Flows() *FlowService {
	return &FlowService{client: c}
}

// Find returns the flow of the given type whose name matches exactly. The
// name query parameter is a prefix filter on the platform side.
func (s *FlowService) Find(ctx context.Context, name, flowType string) (*Flow, error) {
	params := url.Values{}
	params.Set("name", name)
	if flowType != "" {
		params.Set("type", flowType)
	}
	var listing EntityListing[Flow]
	if err := s.client.do(ctx, http.MethodGet, "/api/v2/flows", params, nil, &listing); err != nil {
		return nil, err
	}
	for i := range listing.Entities {
		if listing.Entities[i].Name == name {
			return &listing.Entities[i], nil
		}
	}
	return nil, fmt.Errorf("flow %q: %w", name, ErrNotFound)
}

func (s *FlowService) Create(ctx context.Context, req CreateFlowRequest) (*Flow, error) {
	var flow Flow
	if err := s.client.do(ctx, http.MethodPost, "/api/v2/flows", nil, req, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}
