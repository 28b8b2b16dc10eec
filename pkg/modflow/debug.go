package modflow

import (
	"github.com/nicola-lissandrini/modflow/pkg/modflow/params"
)

// Parameter paths for the graph's own debug configuration.
const (
	debugEnablePath          = "mod_flow/debug/enable"
	debugOnlyChannelsPath    = "mod_flow/debug/only_channels"
	debugOnlyModulesPath     = "mod_flow/debug/only_modules"
	debugExcludeChannelsPath = "mod_flow/debug/exclude_channels"
	debugExcludeModulesPath  = "mod_flow/debug/exclude_modules"
)

// debugConfig controls emission tracing. Filters act on event ancestry: an
// event is traced only if every only-list name appears somewhere in its
// ancestor chain and no exclude-list name does.
type debugConfig struct {
	enabled         bool
	onlyChannels    []string
	onlyModules     []string
	excludeChannels []string
	excludeModules  []string
}

func loadDebugConfig(p *params.Params) debugConfig {
	cfg := debugConfig{
		enabled: p.BoolOr(debugEnablePath, false),
	}
	if !cfg.enabled {
		return cfg
	}
	cfg.onlyChannels = p.StringsOr(debugOnlyChannelsPath, nil)
	cfg.onlyModules = p.StringsOr(debugOnlyModulesPath, nil)
	cfg.excludeChannels = p.StringsOr(debugExcludeChannelsPath, nil)
	cfg.excludeModules = p.StringsOr(debugExcludeModulesPath, nil)
	return cfg
}

// passes reports whether an event should be traced.
func (d *debugConfig) passes(ev *Event) bool {
	if !d.enabled {
		return false
	}
	for _, name := range d.onlyChannels {
		if !ev.ChannelInAncestors(name) {
			return false
		}
	}
	for _, name := range d.onlyModules {
		if !ev.ModuleInAncestors(name) {
			return false
		}
	}
	for _, name := range d.excludeChannels {
		if ev.ChannelInAncestors(name) {
			return false
		}
	}
	for _, name := range d.excludeModules {
		if ev.ModuleInAncestors(name) {
			return false
		}
	}
	return true
}
