// Package params provides hierarchical, typed configuration resolution
// for modflow graphs.
//
// A Params value wraps a tree of maps, lists and scalars (typically decoded
// from YAML or JSON) and resolves slash-separated paths into typed values:
//
//	p, _ := params.FromYAML(data)
//	rate, err := p.Float("clock/rate")
//	mode, err := p.Enum("controller/mode", []string{"position", "velocity"})
//
// Every accessor has an -Or variant that substitutes a default instead of
// returning an error when the path is missing. Lookup failures report the
// full absolute path, including the segments of any parent Sub calls, so a
// per-module subtree produces diagnostics rooted at the module name.
package params
