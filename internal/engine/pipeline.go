// Package engine implements the task execution pipeline (§4.8): resolve
// requirements/hints, render the command, stage inputs, consult the call
// cache, admit against the resource budget, execute via a backend,
// evaluate outputs and record the cache entry, retrying with exponential
// backoff on failure.
package engine

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"wdlc/internal/astview"
	"wdlc/internal/backend"
	"wdlc/internal/cache"
	"wdlc/internal/config"
	"wdlc/internal/eval"
	"wdlc/internal/metrics"
	"wdlc/internal/observ"
	"wdlc/internal/token"
	"wdlc/internal/transfer"
	"wdlc/internal/types"
	"wdlc/internal/value"
)

// TaskSpec is one task call's execution request: which task, what inputs
// were bound to it, and an Env already scoped to those inputs (so
// requirement expressions referencing input declarations resolve
// correctly).
type TaskSpec struct {
	Name   string
	Task   astview.TaskDefinition
	Env    *eval.Env
	Inputs map[string]value.Value
}

// Engine runs TaskSpecs through the full §4.8 pipeline.
type Engine struct {
	Config    config.EngineConfig
	Cache     *cache.DiskCache
	Backend   backend.Backend
	Transfer  transfer.Transferer
	Resources *ResourceManager
	RunRoot   string
}

// New wires an Engine from its dependencies, deriving a ResourceManager
// from cfg's configured budget.
func New(cfg config.EngineConfig, dc *cache.DiskCache, be backend.Backend, tr transfer.Transferer, runRoot string) *Engine {
	return &Engine{
		Config:    cfg,
		Cache:     dc,
		Backend:   be,
		Transfer:  tr,
		Resources: NewResourceManager(cfg.Resources.CPU, cfg.Resources.Memory),
		RunRoot:   runRoot,
	}
}

// RunTask executes spec through the full pipeline, retrying up to the
// effective retry count on failure (§4.8 step 8).
func (e *Engine) RunTask(ctx context.Context, spec TaskSpec) (map[string]value.Value, error) {
	timer := observ.NewTimer()

	idx := timer.Begin("resolve-requirements")
	req, err := ResolveRequirements(spec.Task, spec.Env)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", spec.Name, err)
	}

	maxRetries := e.Config.EffectiveRetries(req.MaxRetries)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			metrics.TaskRetried()
			wait := backoffDelay(attempt)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		outputs, err := e.attempt(ctx, spec, req, timer)
		if err == nil {
			return outputs, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	metrics.TaskFailed()
	return nil, fmt.Errorf("task %s: failed after %d attempts: %w", spec.Name, maxRetries+1, lastErr)
}

// backoffDelay is the exponential backoff between retry attempts (§4.8
// step 8), capped at 30s so a high max_retries doesn't stall a workflow
// for hours between attempts.
func backoffDelay(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

func (e *Engine) attempt(ctx context.Context, spec TaskSpec, req Requirements, timer *observ.Timer) (map[string]value.Value, error) {
	idx := timer.Begin("render-command")
	cmdNode := spec.Task.Command().Syntax()
	command, err := eval.RenderCommand(cmdNode, spec.Env)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("render command: %w", err)
	}

	idx = timer.Begin("stage-inputs")
	staged, err := e.stageInputs(ctx, spec.Inputs)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("stage inputs: %w", err)
	}

	idx = timer.Begin("cache-consult")
	key, parts := e.cacheKey(spec, req, command)
	if e.Cache != nil {
		if entry, ok, err := e.Cache.Get(key); err == nil && ok {
			outputs, err := decodeOutputs(entry.Outputs)
			if err == nil {
				metrics.CacheHit()
				timer.End(idx, "hit")
				return outputs, nil
			}
		}
	}
	metrics.CacheMiss()
	timer.End(idx, "miss")

	idx = timer.Begin("admit")
	release, err := e.Resources.Acquire(ctx, req.CPU, req.MemoryBytes)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("resource admission: %w", err)
	}
	defer release()

	workDir, err := e.prepareWorkDir(staged)
	if err != nil {
		return nil, fmt.Errorf("prepare workdir: %w", err)
	}

	idx = timer.Begin("execute")
	stdoutPath := filepath.Join(workDir, "stdout")
	stderrPath := filepath.Join(workDir, "stderr")
	res, err := e.Backend.Execute(ctx, backend.ExecSpec{
		WorkDir:    workDir,
		Command:    command,
		Shell:      req.Shell,
		StdoutPath: stdoutPath,
		StderrPath: stderrPath,
	})
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("task %s exited with status %d", spec.Name, res.ExitCode)
	}

	idx = timer.Begin("evaluate-outputs")
	outEnv := eval.NewEnv(spec.Env.Interner(), nil, newExecPaths(workDir), "")
	outputs, err := e.evaluateOutputs(spec, outEnv, workDir)
	timer.End(idx, "")
	if err != nil {
		return nil, fmt.Errorf("evaluate outputs: %w", err)
	}

	if e.Cache != nil {
		encoded, err := encodeOutputs(outputs)
		if err == nil {
			entry := &cache.Entry{
				Command:      parts["command"],
				Container:    parts["container"],
				Shell:        parts["shell"],
				Requirements: parts["requirements"],
				Hints:        parts["hints"],
				Inputs:       parts["inputs"],
				Outputs:      encoded,
				StdoutPath:   stdoutPath,
				StderrPath:   stderrPath,
				WorkdirPath:  workDir,
			}
			if d, err := cache.DigestFileContent(stdoutPath); err == nil {
				entry.Stdout = d
			}
			if d, err := cache.DigestFileContent(stderrPath); err == nil {
				entry.Stderr = d
			}
			_ = e.Cache.Put(key, entry)
		}
	}

	return outputs, nil
}

// stageInputs fetches every File/Directory input to a local path via
// Transfer, concurrently bounded the way internal/driver/parallel.go
// bounds its own file-processing fan-out with errgroup.WithContext +
// SetLimit, so staging N remote inputs doesn't open N connections at
// once.
func (e *Engine) stageInputs(ctx context.Context, inputs map[string]value.Value) (map[string]value.Value, error) {
	if e.Transfer == nil {
		return inputs, nil
	}
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}

	staged := make(map[string]value.Value, len(inputs))
	for name, v := range inputs {
		staged[name] = v
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, name := range names {
		name := name
		v := inputs[name]
		if v.Kind != types.KindFile && v.Kind != types.KindDirectory {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			local, err := e.Transfer.Fetch(gctx, v.Path())
			if err != nil {
				return fmt.Errorf("stage %s: %w", name, err)
			}
			if v.Kind == types.KindFile {
				staged[name] = value.File(local)
			} else {
				staged[name] = value.Directory(local)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return staged, nil
}

func (e *Engine) prepareWorkDir(staged map[string]value.Value) (string, error) {
	dir, err := os.MkdirTemp(e.RunRoot, "task-*")
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (e *Engine) evaluateOutputs(spec TaskSpec, outEnv *eval.Env, workDir string) (map[string]value.Value, error) {
	out := spec.Task.Output()
	if out == nil {
		return map[string]value.Value{}, nil
	}
	for name, v := range spec.Inputs {
		outEnv.Bind(name, v)
	}
	result := make(map[string]value.Value)
	for _, decl := range out.Declarations() {
		name := declName(decl)
		if name == "" {
			continue
		}
		init := decl.Initializer()
		if init == nil {
			continue
		}
		v, err := eval.Eval(init, outEnv)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", name, err)
		}
		outEnv.Bind(name, v)
		result[name] = v
	}
	return result, nil
}

// declName extracts an output declaration's bound name, mirroring
// internal/eval's own test-fixture helper of the same shape: the name is
// the declaration's first Ident token, since astview.Declaration exposes
// only Type()/Initializer(), not the name itself.
func declName(d astview.Declaration) string {
	for _, e := range d.Syntax().ChildrenWithTokens() {
		if e.Token != nil && e.Token.Kind() == token.Ident {
			return e.Token.Text()
		}
	}
	return ""
}

// cacheKey computes §4.9's combined digest over everything a task
// execution depends on, along with the named sub-digests so a future
// mismatch (not yet acted on here; see DESIGN.md) could report which
// one changed.
func (e *Engine) cacheKey(spec TaskSpec, req Requirements, command string) (cache.Digest, map[string]cache.Digest) {
	parts := map[string]cache.Digest{
		"command":      cache.DigestScalar("command", command),
		"container":    cache.DigestScalar("container", req.Container),
		"shell":        cache.DigestScalar("shell", req.Shell),
		"requirements": cache.DigestScalar("requirements", fmt.Sprintf("%v/%v", req.CPU, req.MemoryBytes)),
		"hints":        cache.DigestScalar("hints", ""),
		"inputs":       digestInputs(spec.Inputs),
	}
	return cache.CombineDigests(parts), parts
}

func digestInputs(inputs map[string]value.Value) cache.Digest {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	parts := make(map[string]cache.Digest, len(names))
	for _, name := range names {
		parts[name] = cache.DigestScalar("input:"+inputs[name].Kind.String(), reprOf(inputs[name]))
	}
	return cache.CombineDigests(parts)
}

// reprOf renders a value's textual representation for digesting scalar
// and path-shaped inputs. Compound values (Array/Map/Pair/Object) are
// digested shallowly via their wire encoding rather than recursively
// per-element, a simplification noted in DESIGN.md.
func reprOf(v value.Value) string {
	switch v.Kind {
	case types.KindString, types.KindFile, types.KindDirectory:
		return v.Str()
	case types.KindInt:
		return fmt.Sprintf("%d", v.Int())
	case types.KindFloat:
		return fmt.Sprintf("%v", v.Float())
	case types.KindBoolean:
		return fmt.Sprintf("%v", v.Bool())
	case types.KindNone:
		return "None"
	default:
		b, err := encodeOutput(v)
		if err != nil {
			return fmt.Sprintf("%v", v.Kind)
		}
		return string(b)
	}
}

func encodeOutputs(outputs map[string]value.Value) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(outputs))
	for name, v := range outputs {
		b, err := encodeOutput(v)
		if err != nil {
			return nil, fmt.Errorf("encode output %s: %w", name, err)
		}
		encoded[name] = b
	}
	return encoded, nil
}

func decodeOutputs(encoded map[string][]byte) (map[string]value.Value, error) {
	outputs := make(map[string]value.Value, len(encoded))
	for name, b := range encoded {
		v, err := decodeOutput(b)
		if err != nil {
			return nil, fmt.Errorf("decode output %s: %w", name, err)
		}
		outputs[name] = v
	}
	return outputs, nil
}
