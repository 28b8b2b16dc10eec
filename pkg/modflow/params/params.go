package params

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for parameter resolution.
var (
	// ErrNotFound indicates the path does not exist in the parameter tree.
	ErrNotFound = errors.New("parameter not found")

	// ErrWrongType indicates the value exists but has an incompatible type.
	ErrWrongType = errors.New("parameter has wrong type")

	// ErrBadEnum indicates a value is not among the allowed enum strings.
	ErrBadEnum = errors.New("value not in enum")
)

// Params resolves slash-separated paths against a configuration tree.
// The zero value behaves as an empty tree: every lookup fails with
// ErrNotFound and every -Or accessor returns its default.
type Params struct {
	data any
	path string
}

// New creates a Params from a decoded configuration map. A nil map yields
// an empty tree rather than a tree holding a typed nil.
func New(data map[string]any) *Params {
	if data == nil {
		return &Params{}
	}
	return &Params{data: data}
}

// Sub returns the subtree rooted at name. Sub never fails: a missing
// subtree yields an empty Params whose lookups report the full path.
func (p *Params) Sub(name string) *Params {
	child := &Params{path: p.join(name)}
	v, err := p.resolve(name)
	if err == nil {
		child.data = v
	}
	return child
}

// Has reports whether the path resolves to a value.
func (p *Params) Has(path string) bool {
	_, err := p.resolve(path)
	return err == nil
}

// Path returns the absolute path of this subtree, for diagnostics.
func (p *Params) Path() string {
	return p.path
}

// IsEmpty reports whether the tree holds no data at all.
func (p *Params) IsEmpty() bool {
	return p == nil || p.data == nil
}

func (p *Params) join(name string) string {
	if p.path == "" {
		return name
	}
	return p.path + "/" + name
}

// resolve walks the tree following slash-separated segments. Map nodes are
// indexed by key; list nodes accept numeric segments.
func (p *Params) resolve(path string) (any, error) {
	if p == nil || p.data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.join(path))
	}

	node := p.data
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, p.join(path))
			}
			node = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, p.join(path))
			}
			node = n[i]
		default:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p.join(path))
		}
	}
	return node, nil
}

// String returns the string value at path.
func (p *Params) String(path string) (string, error) {
	v, err := p.resolve(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrWrongType, p.join(path), v)
	}
	return s, nil
}

// StringOr returns the string value at path, or def if missing or mistyped.
func (p *Params) StringOr(path, def string) string {
	if s, err := p.String(path); err == nil {
		return s
	}
	return def
}

// Int returns the integer value at path.
//
// Accepts int, int64 and float64 without fractional part; YAML and JSON
// decoders disagree on which of these a literal produces.
func (p *Params) Int(path string) (int, error) {
	v, err := p.resolve(path)
	if err != nil {
		return 0, err
	}
	i, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want int", ErrWrongType, p.join(path), v)
	}
	return i, nil
}

// IntOr returns the integer value at path, or def if missing or mistyped.
func (p *Params) IntOr(path string, def int) int {
	if i, err := p.Int(path); err == nil {
		return i
	}
	return def
}

// Float returns the float value at path. Integer values are widened.
func (p *Params) Float(path string) (float64, error) {
	v, err := p.resolve(path)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want float", ErrWrongType, p.join(path), v)
	}
	return f, nil
}

// FloatOr returns the float value at path, or def if missing or mistyped.
func (p *Params) FloatOr(path string, def float64) float64 {
	if f, err := p.Float(path); err == nil {
		return f
	}
	return def
}

// Bool returns the boolean value at path.
func (p *Params) Bool(path string) (bool, error) {
	v, err := p.resolve(path)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, want bool", ErrWrongType, p.join(path), v)
	}
	return b, nil
}

// BoolOr returns the boolean value at path, or def if missing or mistyped.
func (p *Params) BoolOr(path string, def bool) bool {
	if b, err := p.Bool(path); err == nil {
		return b
	}
	return def
}

// Duration returns the duration value at path.
//
// Accepts a string parsed with time.ParseDuration, or a number interpreted
// as seconds.
func (p *Params) Duration(path string) (time.Duration, error) {
	v, err := p.resolve(path)
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrWrongType, p.join(path), err)
		}
		return d, nil
	default:
		if f, ok := toFloat(v); ok {
			return time.Duration(f * float64(time.Second)), nil
		}
	}
	return 0, fmt.Errorf("%w: %s is %T, want duration", ErrWrongType, p.join(path), v)
}

// DurationOr returns the duration at path, or def if missing or mistyped.
func (p *Params) DurationOr(path string, def time.Duration) time.Duration {
	if d, err := p.Duration(path); err == nil {
		return d
	}
	return def
}

// Strings returns the string list at path.
func (p *Params) Strings(path string) ([]string, error) {
	return list(p, path, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

// StringsOr returns the string list at path, or def if missing or mistyped.
func (p *Params) StringsOr(path string, def []string) []string {
	if l, err := p.Strings(path); err == nil {
		return l
	}
	return def
}

// Ints returns the integer list at path.
func (p *Params) Ints(path string) ([]int, error) {
	return list(p, path, toInt)
}

// Floats returns the float list at path.
func (p *Params) Floats(path string) ([]float64, error) {
	return list(p, path, toFloat)
}

// Enum returns the index of the string at path within values.
// A value outside values fails with ErrBadEnum listing the alternatives.
func (p *Params) Enum(path string, values []string) (int, error) {
	s, err := p.String(path)
	if err != nil {
		return 0, err
	}
	return enumIndex(p.join(path), s, values)
}

// EnumOr returns the enum index at path, or def if the path is missing.
// A present but invalid value still fails.
func (p *Params) EnumOr(path string, values []string, def int) (int, error) {
	if !p.Has(path) {
		return def, nil
	}
	return p.Enum(path, values)
}

// Enums returns the enum indices of the string list at path.
func (p *Params) Enums(path string, values []string) ([]int, error) {
	raw, err := p.Strings(path)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raw))
	for i, s := range raw {
		idx, err := enumIndex(p.join(path), s, values)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

func enumIndex(fullPath, s string, values []string) (int, error) {
	for i, v := range values {
		if v == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s=%q, allowed %v", ErrBadEnum, fullPath, s, values)
}

func list[T any](p *Params, path string, conv func(any) (T, bool)) ([]T, error) {
	v, err := p.resolve(path)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want list", ErrWrongType, p.join(path), v)
	}
	out := make([]T, len(raw))
	for i, item := range raw {
		c, ok := conv(item)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T", ErrWrongType, p.join(path), i, item)
		}
		out[i] = c
	}
	return out, nil
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val == float64(int(val)) {
			return int(val), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	}
	return 0, false
}
