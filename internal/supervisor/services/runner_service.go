// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package services

import (
	"context"
)

// Runner matches components whose lifecycle is a single blocking run
// call that returns when the context is canceled. Satisfied by the
// WebSocket hub's RunWithContext and by a bound Pipeline.Run.
type Runner func(ctx context.Context) error

// RunnerService wraps a Runner as a supervised service. The supervisor
// restarts the runner if it returns with an unexpected error.
type RunnerService struct {
	run  Runner
	name string
}

// NewRunnerService creates a service wrapper around run, identified by
// name in supervision logs.
func NewRunnerService(name string, run Runner) *RunnerService {
	return &RunnerService{run: run, name: name}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.run(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *RunnerService) String() string {
	return s.name
}
