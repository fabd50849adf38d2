package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/metrics"
)

type Provisioner struct {
	api API
	log *zap.SugaredLogger
}

func New(api API, log *zap.SugaredLogger) *Provisioner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Provisioner{api: api, log: log}
}

// Run executes every stage against the targets. The returned error is only
// set for invalid targets; stage failures are recorded in the report.
func (p *Provisioner) Run(ctx context.Context, t Targets) (*Report, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	run := &run{p: p, report: &Report{}}

	division, ok := run.division(ctx, t)
	if !ok {
		run.skipAfter(StageDivision)
		return run.report, nil
	}
	queue, ok := run.queue(ctx, t, division)
	if !ok {
		run.skipAfter(StageQueue)
		return run.report, nil
	}
	if !run.member(ctx, t, queue) {
		run.skipAfter(StageMember)
		return run.report, nil
	}
	flow, ok := run.flow(ctx, t)
	if !ok {
		run.skipAfter(StageFlow)
		return run.report, nil
	}
	run.deployment(ctx, t, flow)
	return run.report, nil
}

type run struct {
	p      *Provisioner
	report *Report
}

func (r *run) record(res StageResult) {
	r.report.Stages = append(r.report.Stages, res)
	metrics.ProvisionStages.WithLabelValues(string(res.Stage), string(res.Status)).Inc()
	log := r.p.log.With("stage", res.Stage, "status", res.Status)
	switch res.Status {
	case StatusFailed:
		log.Errorw("Provisioning stage failed", "name", res.Name, "reason", res.Reason)
	case StatusSkipped:
		log.Debugw("Provisioning stage skipped", "reason", res.Reason)
	default:
		log.Infow("Provisioning stage done", "name", res.Name, "id", res.ID)
	}
}

func (r *run) fail(stage Stage, name string, err error) {
	r.record(StageResult{Stage: stage, Status: StatusFailed, Name: name, Reason: err.Error()})
}

// skipAfter marks every stage after failed as skipped.
func (r *run) skipAfter(failed Stage) {
	after := false
	for _, s := range Stages {
		if after {
			r.record(StageResult{Stage: s, Status: StatusSkipped, Reason: fmt.Sprintf("%s stage did not complete", failed)})
		}
		if s == failed {
			after = true
		}
	}
}

func (r *run) division(ctx context.Context, t Targets) (*client.Division, bool) {
	divisions, err := client.RetryOnExpiry(ctx, r.p.api.ListDivisions)
	if err != nil {
		r.fail(StageDivision, t.Division, fmt.Errorf("failed to list divisions: %w", err))
		return nil, false
	}
	names := make([]string, 0, len(divisions))
	for i := range divisions {
		if divisions[i].Name == t.Division {
			d := divisions[i]
			r.record(StageResult{Stage: StageDivision, Status: StatusFound, ID: d.ID, Name: d.Name})
			return &d, true
		}
		names = append(names, divisions[i].Name)
	}
	reason := fmt.Errorf("division %q not found", t.Division)
	if len(names) > 0 {
		reason = fmt.Errorf("%w; available: %s", reason, strings.Join(names, ", "))
	}
	r.fail(StageDivision, t.Division, reason)
	return nil, false
}

func (r *run) queue(ctx context.Context, t Targets, division *client.Division) (*client.Queue, bool) {
	queue, status, err := findOrCreate(ctx, r.p.log.With("stage", StageQueue),
		func(ctx context.Context) (*client.Queue, error) {
			return r.p.api.FindQueue(ctx, t.Queue)
		},
		func(ctx context.Context) (*client.Queue, error) {
			return r.p.api.CreateQueue(ctx, client.CreateQueueRequest{
				Name:        t.Queue,
				Description: t.QueueDescription,
				Division:    client.EntityRef{ID: division.ID, Name: division.Name},
			})
		})
	if err != nil {
		r.fail(StageQueue, t.Queue, err)
		return nil, false
	}
	if queue.ID == "" {
		r.fail(StageQueue, t.Queue, errors.New("queue has no id"))
		return nil, false
	}
	r.record(StageResult{Stage: StageQueue, Status: status, ID: queue.ID, Name: queue.Name})
	return queue, true
}

func (r *run) member(ctx context.Context, t Targets, queue *client.Queue) bool {
	if t.UserID == "" {
		r.record(StageResult{Stage: StageMember, Status: StatusSkipped, Reason: "no user configured"})
		return true
	}
	_, err := client.RetryOnExpiry(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.p.api.AddQueueMembers(ctx, queue.ID, t.UserID)
	})
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			err = fmt.Errorf("queue or user not found: %w", err)
		}
		r.fail(StageMember, t.UserID, err)
		return false
	}
	r.record(StageResult{Stage: StageMember, Status: StatusCreated, ID: t.UserID, Name: queue.Name})
	return true
}

func (r *run) flow(ctx context.Context, t Targets) (*client.Flow, bool) {
	flow, status, err := findOrCreate(ctx, r.p.log.With("stage", StageFlow),
		func(ctx context.Context) (*client.Flow, error) {
			return r.p.api.FindFlow(ctx, t.Flow, t.FlowType)
		},
		func(ctx context.Context) (*client.Flow, error) {
			return r.p.api.CreateFlow(ctx, client.CreateFlowRequest{
				Name:        t.Flow,
				Description: t.FlowDescription,
				Type:        t.FlowType,
			})
		})
	if err != nil {
		r.fail(StageFlow, t.Flow, err)
		return nil, false
	}
	if flow.ID == "" {
		r.fail(StageFlow, t.Flow, errors.New("flow has no id"))
		return nil, false
	}
	r.record(StageResult{Stage: StageFlow, Status: status, ID: flow.ID, Name: flow.Name})
	return flow, true
}

func (r *run) deployment(ctx context.Context, t Targets, flow *client.Flow) {
	req := client.CreateDeploymentRequest{
		Name:            t.Deployment,
		Description:     t.DeploymentDescription,
		AllowAllDomains: t.AllowAllDomains,
		Configuration:   client.ConfigurationRef{ID: t.ConfigurationID, Version: t.ConfigurationVersion},
		Flow:            client.EntityRef{ID: flow.ID},
	}
	deployment, err := client.RetryOnExpiry(ctx, func(ctx context.Context) (*client.Deployment, error) {
		return r.p.api.CreateDeployment(ctx, req)
	})
	if err != nil {
		r.fail(StageDeployment, t.Deployment, err)
		return
	}
	// The response may leave out what was sent.
	if deployment.Configuration.ID == "" {
		deployment.Configuration = req.Configuration
	}
	if deployment.Flow == nil || deployment.Flow.ID == "" {
		deployment.Flow = &client.EntityRef{ID: flow.ID, Name: flow.Name}
	}
	r.report.Deployment = deployment
	r.record(StageResult{Stage: StageDeployment, Status: StatusCreated, ID: deployment.ID, Name: deployment.Name})
}

// findOrCreate looks the entity up and creates it when the lookup yields
// nothing. A failed create is followed by exactly one more lookup, which
// covers the entity having been created concurrently, unless the failure is
// a 401 that persisted through the retry.
func findOrCreate[T any](
	ctx context.Context,
	log *zap.SugaredLogger,
	find func(context.Context) (*T, error),
	create func(context.Context) (*T, error),
) (*T, Status, error) {
	found, err := client.RetryOnExpiry(ctx, find)
	if err == nil {
		return found, StatusFound, nil
	}
	if errors.Is(err, client.ErrNotFound) {
		log.Debugw("Not found, creating", "error", err)
	} else {
		log.Warnw("Lookup failed, trying to create", "error", err)
	}

	created, createErr := client.RetryOnExpiry(ctx, create)
	if createErr == nil {
		return created, StatusCreated, nil
	}
	if errors.Is(createErr, client.ErrTokenExpired) {
		return nil, StatusFailed, createErr
	}
	if errors.Is(createErr, client.ErrConflict) {
		log.Infow("Already exists, looking it up again", "error", createErr)
	} else {
		log.Warnw("Create failed, looking it up again", "error", createErr)
	}
	found, err = client.RetryOnExpiry(ctx, find)
	if err != nil {
		return nil, StatusFailed, fmt.Errorf("create failed: %w; lookup after create failed: %v", createErr, err)
	}
	return found, StatusFound, nil
}
