package client

import (
	"context"
	"fmt"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/pkg/client/api"
)

// Query defines the query lifecycle operations
type Query interface {
	GetQuery(ctx context.Context, name string) (*v1alpha1.Query, error)
	CancelQuery(ctx context.Context, name string) (*api.CancelQueryResponse, error)
	DeleteQuery(ctx context.Context, name string) error
}

// queryClient handles query-related requests
type queryClient struct {
	client *BaseClient
}

// NewQueryClient creates a new query client
func NewQueryClient(client *BaseClient) Query {
	return &queryClient{client: client}
}

// GetQuery retrieves a query record
func (c *queryClient) GetQuery(ctx context.Context, name string) (*v1alpha1.Query, error) {
	resp, err := c.client.Get(ctx, fmt.Sprintf("/api/queries/%s", name), "")
	if err != nil {
		return nil, err
	}

	var query v1alpha1.Query
	if err := DecodeResponse(resp, &query); err != nil {
		return nil, err
	}

	return &query, nil
}

// CancelQuery requests cancellation of a running query
func (c *queryClient) CancelQuery(ctx context.Context, name string) (*api.CancelQueryResponse, error) {
	resp, err := c.client.Post(ctx, fmt.Sprintf("/api/queries/%s/cancel", name), nil, "")
	if err != nil {
		return nil, err
	}

	var ack api.CancelQueryResponse
	if err := DecodeResponse(resp, &ack); err != nil {
		return nil, err
	}

	return &ack, nil
}

// DeleteQuery removes a query record
func (c *queryClient) DeleteQuery(ctx context.Context, name string) error {
	resp, err := c.client.Delete(ctx, fmt.Sprintf("/api/queries/%s", name), "")
	if err != nil {
		return err
	}
	resp.Body.Close() //nolint:errcheck
	return nil
}
