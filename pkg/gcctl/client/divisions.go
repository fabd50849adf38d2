package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const divisionPageSize = 100

type DivisionService struct {
	client *Client
}

func (c *Client) Divisions() *DivisionService {
	return &DivisionService{client: c}
}

// List returns every division, following the listing's page count.
func (s *DivisionService) List(ctx context.Context) ([]Division, error) {
	var divisions []Division
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("pageSize", strconv.Itoa(divisionPageSize))
		params.Set("pageNumber", strconv.Itoa(page))
		var listing EntityListing[Division]
		if err := s.client.do(ctx, http.MethodGet, "/api/v2/authorization/divisions", params, nil, &listing); err != nil {
			return nil, err
		}
		divisions = append(divisions, listing.Entities...)
		if page >= listing.PageCount || len(listing.Entities) == 0 {
			return divisions, nil
		}
	}
}

// FindByName returns the division whose name matches exactly.
func (s *DivisionService) FindByName(ctx context.Context, name string) (*Division, error) {
	divisions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range divisions {
		if divisions[i].Name == name {
			return &divisions[i], nil
		}
	}
	return nil, fmt.Errorf("division %q: %w", name, ErrNotFound)
}
