// Task requirement/hint resolution (§4.8 step 1: "resolve requirements/
// hints"). Grounded on internal/astview's AttrSection/Attr views: an
// attribute node's value expression is its only child (the key is a bare
// leading token, confirmed against internal/parser/sections.go's
// parseAttrSection), so a value is read via attr.Syntax().Children()[0]
// rather than through a typed accessor astview doesn't expose.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"wdlc/internal/astview"
	"wdlc/internal/cst"
	"wdlc/internal/eval"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// Requirements is a task's resolved runtime footprint and retry policy,
// merged from its (mutually exclusive, but both may be present across
// WDL versions) `runtime` and `requirements`/`hints` sections.
type Requirements struct {
	Container   string
	CPU         float64
	MemoryBytes int64
	MaxRetries  int
	Shell       string
}

// ResolveRequirements evaluates every attribute in task's runtime,
// requirements, and hints sections against env, merging them into one
// Requirements value. `requirements`/`hints` (WDL 1.1+) attribute names
// take precedence over the legacy `runtime` section's when both are
// present, since a document written against a later WDL version is
// expected to use the newer sections.
func ResolveRequirements(task astview.TaskDefinition, env *eval.Env) (Requirements, error) {
	var req Requirements
	req.Shell = "bash"

	if rt := task.Runtime(); rt != nil {
		attrs, err := evalAttrs(rt, env)
		if err != nil {
			return req, fmt.Errorf("runtime section: %w", err)
		}
		applyAttrs(&req, attrs)
	}
	if reqs := task.Requirements(); reqs != nil {
		attrs, err := evalAttrs(reqs, env)
		if err != nil {
			return req, fmt.Errorf("requirements section: %w", err)
		}
		applyAttrs(&req, attrs)
	}
	if hints := task.Hints(); hints != nil {
		attrs, err := evalAttrs(hints, env)
		if err != nil {
			return req, fmt.Errorf("hints section: %w", err)
		}
		applyAttrs(&req, attrs)
	}
	return req, nil
}

// evalAttrs evaluates every `key: expr` entry of a runtime/requirements/
// hints section node against env.
func evalAttrs(section *cst.Node, env *eval.Env) (map[string]value.Value, error) {
	view, _ := astview.Cast(section).(astview.AttrSection)
	out := make(map[string]value.Value)
	for _, attr := range view.Attrs() {
		children := attr.Syntax().Children()
		if len(children) == 0 {
			continue
		}
		v, err := eval.Eval(children[0], env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", attr.Key(), err)
		}
		out[attr.Key()] = v
	}
	return out, nil
}

func applyAttrs(req *Requirements, attrs map[string]value.Value) {
	for key, v := range attrs {
		switch key {
		case "container", "docker":
			req.Container = stringOrEmpty(v)
		case "cpu":
			req.CPU = numericOrZero(v)
		case "memory":
			if bytes, err := parseMemory(v); err == nil {
				req.MemoryBytes = bytes
			}
		case "maxRetries", "max_retries", "preemptible":
			if key != "preemptible" {
				req.MaxRetries = int(numericOrZero(v))
			}
		case "shell":
			if s := stringOrEmpty(v); s != "" {
				req.Shell = s
			}
		}
	}
}

func stringOrEmpty(v value.Value) string {
	if v.IsNone() {
		return ""
	}
	return v.Str()
}

func numericOrZero(v value.Value) float64 {
	switch v.Kind {
	case types.KindFloat:
		return v.Float()
	case types.KindInt:
		return float64(v.Int())
	default:
		return 0
	}
}

// parseMemory parses a memory requirement given either as a number
// (bytes) or a string like "2 GB"/"512 MiB" (§4.8's requirements.memory).
func parseMemory(v value.Value) (int64, error) {
	switch v.Kind {
	case types.KindNone:
		return 0, nil
	case types.KindInt:
		return v.Int(), nil
	case types.KindFloat:
		return int64(v.Float()), nil
	case types.KindString:
		return parseMemorySpec(v.Str())
	default:
		return 0, fmt.Errorf("memory value has unsupported type")
	}
}

var memoryUnits = map[string]int64{
	"B":   1,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
	"TB":  1000 * 1000 * 1000 * 1000,
	"KiB": 1024,
	"MiB": 1024 * 1024,
	"GiB": 1024 * 1024 * 1024,
	"TiB": 1024 * 1024 * 1024 * 1024,
}

func parseMemorySpec(spec string) (int64, error) {
	spec = strings.TrimSpace(spec)
	i := 0
	for i < len(spec) && (spec[i] == '.' || spec[i] == '-' || (spec[i] >= '0' && spec[i] <= '9')) {
		i++
	}
	numPart := spec[:i]
	unitPart := strings.TrimSpace(spec[i:])
	if unitPart == "" {
		unitPart = "B"
	}
	mult, ok := memoryUnits[unitPart]
	if !ok {
		return 0, fmt.Errorf("unrecognized memory unit %q", unitPart)
	}
	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory amount %q", numPart)
	}
	return int64(n * float64(mult)), nil
}
