package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"wdlc/internal/stdlib"
)

// execPaths is the stdlib.Env implementation bound to one task
// invocation's staged working directory: it resolves `stdout()`/
// `stderr()` and relative File/Directory values against workDir, and
// backs read_*/write_*/size() against the real filesystem there.
// Grounded on internal/eval.noPaths (the test fixture's stub
// implementation of the same interface) generalized from stub errors to
// real file I/O.
type execPaths struct {
	workDir string
	nextTmp int
}

var _ stdlib.Env = (*execPaths)(nil)

func newExecPaths(workDir string) *execPaths {
	return &execPaths{workDir: workDir}
}

func (p *execPaths) ResolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.workDir, name)
}

func (p *execPaths) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(p.ResolvePath(pattern))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (p *execPaths) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(p.ResolvePath(path))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *execPaths) WriteFile(content string) (string, error) {
	dir := filepath.Join(p.workDir, "write_tmp")
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

func (p *execPaths) Stat(path string) (int64, error) {
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
