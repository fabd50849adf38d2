// Package messaging implements the interactive agent-side message session:
// it asks for a conversation and communication id and then sends every
// non-blank input line into that conversation until input ends.
package messaging
