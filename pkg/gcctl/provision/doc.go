// Package provision sets up the demo tenant entities in order: division
// lookup, queue, queue member, inbound message flow and web messaging
// deployment. Each stage yields a StageResult; a failed stage skips the
// stages that depend on it and nothing is rolled back.
package provision
