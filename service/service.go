// Package service runs long-lived subsystems (audio, snapshot feed) in dependency order
package service

import "context"

// Service is the lifecycle of a long-lived subsystem
//
// Lifecycle:
//  1. Construction
//  2. Init - open devices, dial, validate config
//  3. Start - launch background goroutines bound to ctx
//  4. Stop - halt goroutines, release resources; must be idempotent
type Service interface {
	// Name is the unique id used for dependency references
	Name() string

	// Dependencies lists services that must Init and Start first
	Dependencies() []string

	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}
