package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"wdlc/internal/stdlib"
)

// workflowPaths is the stdlib.Env implementation bound to one workflow
// run's root directory: it backs stdlib file functions evaluated outside
// any task (workflow-level declarations and outputs). Grounded on
// internal/engine/execPaths, generalized from a single task's working
// directory to a whole run's root.
type workflowPaths struct {
	runRoot string
	nextTmp int
}

var _ stdlib.Env = (*workflowPaths)(nil)

func newWorkflowPaths(runRoot string) *workflowPaths {
	return &workflowPaths{runRoot: runRoot}
}

func (p *workflowPaths) ResolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.runRoot, name)
}

func (p *workflowPaths) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(p.ResolvePath(pattern))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (p *workflowPaths) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(p.ResolvePath(path))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *workflowPaths) WriteFile(content string) (string, error) {
	dir := filepath.Join(p.runRoot, "write_tmp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p.nextTmp++
	path := filepath.Join(dir, fmt.Sprintf("%d", p.nextTmp))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (p *workflowPaths) Stat(path string) (int64, error) {
	info, err := os.Stat(p.ResolvePath(path))
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		var total int64
		err := filepath.Walk(p.ResolvePath(path), func(_ string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() {
				total += fi.Size()
			}
			return nil
		})
		return total, err
	}
	return info.Size(), nil
}
