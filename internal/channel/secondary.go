package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/netauto-ai/conduit/internal/types"
)

// CommandRunner opens a command session against a device and runs one
// command. Implementations wrap whatever session transport the deployment
// uses (terminal gateway, jump host). The runner gives no atomicity or
// validation guarantees; that is the point of the secondary channel.
type CommandRunner interface {
	Run(ctx context.Context, device, command string) (string, error)
}

// Secondary is the best-effort command-session channel. It performs no
// pre-validation and cannot roll back: a failed multi-line change leaves the
// device in whatever state the session reached.
type Secondary struct {
	runner CommandRunner
}

// NewSecondary creates the secondary channel over the given runner.
func NewSecondary(runner CommandRunner) *Secondary {
	return &Secondary{runner: runner}
}

// Name returns the channel instance name.
func (s *Secondary) Name() string { return "secondary" }

// Kind returns KindSecondary.
func (s *Secondary) Kind() Kind { return KindSecondary }

// SupportsRollback is false: command sessions are not transactional.
func (s *Secondary) SupportsRollback() bool { return false }

// Validate always reports unsupported; the secondary channel has no schema.
func (s *Secondary) Validate(ctx context.Context, req Request) error {
	return NewNotSupportedError(s.Name(), "secondary channel has no pre-validation")
}

// Execute runs the request's raw command equivalent in a session.
func (s *Secondary) Execute(ctx context.Context, req Request) (*Response, error) {
	if req.Device == "" {
		return nil, NewNotSupportedError(s.Name(), "device is required")
	}
	if !req.HasSecondaryEquivalent() {
		return nil, NewNotSupportedError(s.Name(),
			fmt.Sprintf("operation %q has no command equivalent", req.Operation))
	}

	out, err := s.runner.Run(ctx, req.Device, req.Command)
	if err != nil {
		return nil, wrapExecErr(s.Name(), err)
	}

	summary := fmt.Sprintf("ran %q on %s", req.Command, req.Device)
	if lines := strings.Count(out, "\n"); lines > 0 {
		summary = fmt.Sprintf("%s (%d output lines)", summary, lines)
	}

	return &Response{
		Channel: s.Name(),
		Output:  map[string]any{"stdout": out},
		Summary: summary,
	}, nil
}

// Health reports degraded when no runner is wired.
func (s *Secondary) Health(ctx context.Context) types.HealthStatus {
	if s.runner == nil {
		return types.NewHealthStatus(types.HealthStateDegraded, "no command runner configured")
	}
	return types.Healthy("")
}
