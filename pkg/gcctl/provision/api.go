package provision

import (
	"context"

	"github.com/telekom/gcctl/pkg/gcctl/client"
)

// API is the subset of the resource client a run needs.
type API interface {
	ListDivisions(ctx context.Context) ([]client.Division, error)
	FindQueue(ctx context.Context, name string) (*client.Queue, error)
	CreateQueue(ctx context.Context, req client.CreateQueueRequest) (*client.Queue, error)
	AddQueueMembers(ctx context.Context, queueID string, userIDs ...string) error
	FindFlow(ctx context.Context, name, flowType string) (*client.Flow, error)
	CreateFlow(ctx context.Context, req client.CreateFlowRequest) (*client.Flow, error)
	CreateDeployment(ctx context.Context, req client.CreateDeploymentRequest) (*client.Deployment, error)
}

type clientAPI struct {
	c *client.Client
}

// NewClientAPI adapts a resource client to API.
func NewClientAPI(c *client.Client) API {
	return clientAPI{c: c}
}

func (a clientAPI) ListDivisions(ctx context.Context) ([]client.Division, error) {
	return a.c.Divisions().List(ctx)
}

func (a clientAPI) FindQueue(ctx context.Context, name string) (*client.Queue, error) {
	return a.c.Queues().FindByName(ctx, name)
}

func (a clientAPI) CreateQueue(ctx context.Context, req client.CreateQueueRequest) (*client.Queue, error) {
	return a.c.Queues().Create(ctx, req)
}

func (a clientAPI) AddQueueMembers(ctx context.Context, queueID string, userIDs ...string) error {
	return a.c.Queues().AddMembers(ctx, queueID, userIDs...)
}

func (a clientAPI) FindFlow(ctx context.Context, name, flowType string) (*client.Flow, error) {
	return a.c.Flows().Find(ctx, name, flowType)
}

func (a clientAPI) CreateFlow(ctx context.Context, req client.CreateFlowRequest) (*client.Flow, error) {
	return a.c.Flows().Create(ctx, req)
}

func (a clientAPI) CreateDeployment(ctx context.Context, req client.CreateDeploymentRequest) (*client.Deployment, error) {
	return a.c.WebDeployments().Create(ctx, req)
}
