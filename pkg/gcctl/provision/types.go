package provision

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/telekom/gcctl/pkg/gcctl/client"
)

type Stage string

const (
	StageDivision   Stage = "division"
	StageQueue      Stage = "queue"
	StageMember     Stage = "member"
	StageFlow       Stage = "flow"
	StageDeployment Stage = "deployment"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageDivision, StageQueue, StageMember, StageFlow, StageDeployment}

type Status string

const (
	StatusSkipped Status = "skipped"
	StatusFound   Status = "found"
	StatusCreated Status = "created"
	StatusFailed  Status = "failed"
)

// Targets names everything a run looks up or creates.
type Targets struct {
	Division              string `json:"division" yaml:"division"`
	Queue                 string `json:"queue" yaml:"queue"`
	QueueDescription      string `json:"queueDescription,omitempty" yaml:"queueDescription,omitempty"`
	UserID                string `json:"userId,omitempty" yaml:"userId,omitempty"`
	Flow                  string `json:"flow" yaml:"flow"`
	FlowType              string `json:"flowType" yaml:"flowType"`
	FlowDescription       string `json:"flowDescription,omitempty" yaml:"flowDescription,omitempty"`
	Deployment            string `json:"deployment" yaml:"deployment"`
	DeploymentDescription string `json:"deploymentDescription,omitempty" yaml:"deploymentDescription,omitempty"`
	AllowAllDomains       bool   `json:"allowAllDomains" yaml:"allowAllDomains"`
	ConfigurationID       string `json:"configurationId" yaml:"configurationId"`
	ConfigurationVersion  string `json:"configurationVersion" yaml:"configurationVersion"`
}

func (t Targets) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"division":         t.Division,
		"queue":            t.Queue,
		"flow":             t.Flow,
		"flow type":        t.FlowType,
		"deployment":       t.Deployment,
		"configuration id": t.ConfigurationID,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("provisioning targets missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

type StageResult struct {
	Stage  Stage  `json:"stage" yaml:"stage"`
	Status Status `json:"status" yaml:"status"`
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type Report struct {
	Stages []StageResult `json:"stages" yaml:"stages"`
	// Deployment is the created web deployment, nil unless that stage succeeded.
	Deployment *client.Deployment `json:"deployment,omitempty" yaml:"deployment,omitempty"`
}

func (r *Report) Result(stage Stage) (StageResult, bool) {
	for _, res := range r.Stages {
		if res.Stage == stage {
			return res, true
		}
	}
	return StageResult{}, false
}

func (r *Report) Failed() bool {
	for _, res := range r.Stages {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Err joins the reasons of all failed stages, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Stages {
		if res.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %s", res.Stage, res.Reason))
		}
	}
	return errors.Join(errs...)
}
