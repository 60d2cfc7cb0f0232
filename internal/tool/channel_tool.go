package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/types"
)

// ChannelTool is implemented by tools whose execution travels over a device
// channel. The tool turns its arguments into a channel request and the
// channel response back into tool output; channel selection and degradation
// belong to the orchestrator.
type ChannelTool interface {
	Tool

	// BuildRequest converts tool arguments into a channel request.
	BuildRequest(args map[string]any) (channel.Request, error)

	// Interpret converts a channel response into tool output.
	Interpret(resp *channel.Response) (map[string]any, error)
}

// ExecuteVia runs a channel-aware tool's request over the given channel,
// recording metrics. Primary channels are validated before execution.
// Channel failures are returned unwrapped so the caller can inspect their
// typed codes for the degradation decision.
func (r *Registry) ExecuteVia(ctx context.Context, name string, ch channel.Channel,
	req channel.Request) (map[string]any, *channel.Response, error) {

	reg, err := r.Get(name)
	if err != nil {
		return nil, nil, err
	}
	ct, ok := reg.Tool.(ChannelTool)
	if !ok {
		return nil, nil, types.NewError(types.TOOL_INVALID_INPUT,
			fmt.Sprintf("tool %q is not channel-aware", name))
	}

	r.mu.RLock()
	m := r.metrics[name]
	r.mu.RUnlock()

	start := time.Now()
	var resp *channel.Response
	var execErr error
	if ch.Kind() == channel.KindPrimary {
		execErr = ch.Validate(ctx, req)
	}
	if execErr == nil {
		resp, execErr = ch.Execute(ctx, req)
	}
	if m != nil {
		m.record(time.Since(start), execErr != nil)
	}
	if execErr != nil {
		return nil, nil, execErr
	}

	out, err := ct.Interpret(resp)
	if err != nil {
		return nil, resp, types.WrapError(types.TOOL_EXECUTION_ERROR,
			fmt.Sprintf("tool %q failed to interpret response", name), err)
	}
	return out, resp, nil
}
