// Package channel abstracts the execution backends that carry tool calls to
// devices. The primary channel is schema-validated and rolls back atomically
// on partial failure; the secondary channel drives raw command sessions with
// no rollback guarantee. Channels surface failures as typed errors and never
// retry or downgrade on their own; the degradation decision belongs to the
// orchestrator.
package channel

import (
	"context"

	"github.com/netauto-ai/conduit/internal/types"
)

// Kind distinguishes the two channel classes.
type Kind string

const (
	// KindPrimary is the structured, validated, rollback-capable channel.
	KindPrimary Kind = "primary"
	// KindSecondary is the best-effort command-session channel.
	KindSecondary Kind = "secondary"
)

// Request is one logical operation to execute on a device.
type Request struct {
	// Device is the target device identifier.
	Device string `json:"device"`
	// Operation is the logical operation name (e.g. "get", "merge-config",
	// "delete-config").
	Operation string `json:"operation"`
	// Payload is the structured body for the primary channel.
	Payload map[string]any `json:"payload,omitempty"`
	// Command is the raw command equivalent for the secondary channel.
	// Empty means the operation has no secondary-channel equivalent and
	// must not be degraded.
	Command string `json:"command,omitempty"`
	// Mutating marks operations that change device or system state.
	Mutating bool `json:"mutating"`
}

// HasSecondaryEquivalent reports whether the operation can be re-issued on
// the secondary channel.
func (r Request) HasSecondaryEquivalent() bool {
	return r.Command != ""
}

// Response is the outcome of a channel execution.
type Response struct {
	// Channel is the name of the channel that executed the call.
	Channel string `json:"channel"`
	// Output is the structured or raw result.
	Output map[string]any `json:"output,omitempty"`
	// Summary is a short human-readable result description for the audit
	// trail.
	Summary string `json:"summary"`
}

// Channel is the uniform execution backend interface.
type Channel interface {
	// Name returns the channel instance name used in audit records.
	Name() string

	// Kind returns the channel class.
	Kind() Kind

	// SupportsRollback reports whether partial failures roll back atomically.
	SupportsRollback() bool

	// Validate checks a request against the channel's schema before any
	// side effect. Secondary channels return CHANNEL_NOT_SUPPORTED.
	Validate(ctx context.Context, req Request) error

	// Execute performs the request. Timeouts are supplied by the caller
	// through ctx; deadline expiry surfaces as a transport failure.
	Execute(ctx context.Context, req Request) (*Response, error)

	// Health checks backend connectivity.
	Health(ctx context.Context) types.HealthStatus
}
