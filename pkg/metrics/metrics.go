package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every gcctl collector. A dedicated registry keeps the Go
// runtime collectors out of the exported textfile.
var Registry = prometheus.NewRegistry()

var (
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gcctl_api_requests_total",
		Help: "Total number of platform API requests grouped by method and response status",
	}, []string{"method", "status"})
	TokenAcquisitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gcctl_token_acquisitions_total",
		Help: "Total number of OAuth client-credentials exchanges by result (success/failure)",
	}, []string{"result"})
	TokenInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gcctl_token_invalidations_total",
		Help: "Total number of cached credentials discarded after a 401 response",
	})
	ProvisionStages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gcctl_provision_stages_total",
		Help: "Provisioning stage outcomes grouped by stage and status",
	}, []string{"stage", "status"})
	MessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gcctl_messages_sent_total",
		Help: "Messages sent from the interactive session by result (success/failure)",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(APIRequests)
	Registry.MustRegister(TokenAcquisitions)
	Registry.MustRegister(TokenInvalidations)
	Registry.MustRegister(ProvisionStages)
	Registry.MustRegister(MessagesSent)
}

// StatusLabel turns an HTTP status code into the label value used by
// APIRequests. Zero means the request never produced a response.
func StatusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return fmt.Sprintf("%d", code)
}

// WriteTextfile writes the current state of Registry in the Prometheus text
// format. The file is written atomically.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
