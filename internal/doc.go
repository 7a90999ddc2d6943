// Package internal documents the warehouse management server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem rendering, and routing
// - domain: business logic and domain models, one package per aggregate
// - storage: repository interfaces with postgres and in-memory engines
// - jobs: background workers and queues
// - auth, audit, config, metrics, email, reports: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
