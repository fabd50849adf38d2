// Package client implements the typed HTTP client gcctl uses against the
// contact-center platform API: divisions, routing queues and members, flows,
// web deployments, conversation messages and the current user.
package client
