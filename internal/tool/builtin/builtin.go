// Package builtin provides the stock tools registered on startup: read-only
// device lookups, gated configuration changes, and the inventory API
// client. Device tools are channel-aware; the orchestrator picks the
// channel and owns degradation.
package builtin

import (
	"context"
	"fmt"

	"github.com/netauto-ai/conduit/internal/channel"
	"github.com/netauto-ai/conduit/internal/tool"
)

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// ShowCommand retrieves operational state from one device. It is read-only
// and never gated.
type ShowCommand struct{}

func (ShowCommand) Name() string { return "show_command" }

func (ShowCommand) Description() string {
	return "Run a read-only lookup against one device (operational or config state)."
}

func (ShowCommand) InputSchema() map[string]string {
	return map[string]string{
		"device":  "target device name",
		"command": "raw command equivalent, e.g. \"show interfaces\"",
	}
}

func (ShowCommand) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	return nil, fmt.Errorf("show_command executes over a device channel")
}

func (ShowCommand) BuildRequest(args map[string]any) (channel.Request, error) {
	device := argString(args, "device")
	if device == "" {
		return channel.Request{}, fmt.Errorf("device is required")
	}
	return channel.Request{
		Device:    device,
		Operation: "get",
		Command:   argString(args, "command"),
	}, nil
}

func (ShowCommand) Interpret(resp *channel.Response) (map[string]any, error) {
	return map[string]any{
		"summary": resp.Summary,
		"output":  resp.Output,
	}, nil
}

// ConfigApply pushes a configuration change to one device. Every call is
// mutating and therefore gated.
type ConfigApply struct{}

func (ConfigApply) Name() string { return "config_apply" }

func (ConfigApply) Description() string {
	return "Apply a configuration change to one device. Requires approval."
}

func (ConfigApply) InputSchema() map[string]string {
	return map[string]string{
		"device":    "target device name",
		"operation": "merge-config (default), replace-config, or delete-config",
		"config":    "structured configuration payload",
		"command":   "raw command-session equivalent, empty disables degradation",
	}
}

func (ConfigApply) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	return nil, fmt.Errorf("config_apply executes over a device channel")
}

func (ConfigApply) BuildRequest(args map[string]any) (channel.Request, error) {
	device := argString(args, "device")
	if device == "" {
		return channel.Request{}, fmt.Errorf("device is required")
	}
	op := argString(args, "operation")
	if op == "" {
		op = "merge-config"
	}
	payload, _ := args["config"].(map[string]any)
	if payload == nil && op != "delete-config" {
		return channel.Request{}, fmt.Errorf("config payload is required for %s", op)
	}
	return channel.Request{
		Device:    device,
		Operation: op,
		Payload:   payload,
		Command:   argString(args, "command"),
		Mutating:  true,
	}, nil
}

func (ConfigApply) Interpret(resp *channel.Response) (map[string]any, error) {
	return map[string]any{
		"summary": resp.Summary,
		"output":  resp.Output,
	}, nil
}

// Register adds the stock tools to a registry with their gating policies.
// inventory may be nil when no inventory API is configured.
func Register(reg *tool.Registry, inventory *Inventory) error {
	if err := reg.Register(tool.Registration{Tool: ShowCommand{}}); err != nil {
		return err
	}
	if err := reg.Register(tool.Registration{
		Tool: ConfigApply{},
		Gate: tool.AlwaysGated,
	}); err != nil {
		return err
	}
	if inventory != nil {
		if err := reg.Register(tool.Registration{
			Tool: inventory,
			Gate: tool.HTTPMutatingMethod,
		}); err != nil {
			return err
		}
	}
	return nil
}
