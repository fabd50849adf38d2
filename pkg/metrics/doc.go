// Package metrics defines the Prometheus counters recorded by gcctl and the
// textfile export used to hand them to a node-exporter textfile collector.
package metrics
