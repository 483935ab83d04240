package backend_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"wdlc/internal/backend"
)

func TestLocalExecuteSuccess(t *testing.T) {
	dir := t.TempDir()
	l := backend.NewLocal(1)
	spec := backend.ExecSpec{
		WorkDir:    dir,
		Command:    "echo hello",
		StdoutPath: filepath.Join(dir, "stdout"),
		StderrPath: filepath.Join(dir, "stderr"),
	}
	res, err := l.Execute(context.Background(), spec)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("got exit code %d, want 0", res.ExitCode)
	}
	out, err := os.ReadFile(spec.StdoutPath)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if string(out) != "hello\n" {
		t.Fatalf("got stdout %q, want %q", out, "hello\n")
	}
}

func TestLocalExecuteNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	l := backend.NewLocal(1)
	spec := backend.ExecSpec{
		WorkDir:    dir,
		Command:    "exit 3",
		StdoutPath: filepath.Join(dir, "stdout"),
		StderrPath: filepath.Join(dir, "stderr"),
	}
	res, err := l.Execute(context.Background(), spec)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("got exit code %d, want 3", res.ExitCode)
	}
}

func TestLocalExecuteWorkDir(t *testing.T) {
	dir := t.TempDir()
	l := backend.NewLocal(1)
	spec := backend.ExecSpec{
		WorkDir:    dir,
		Command:    "pwd",
		StdoutPath: filepath.Join(dir, "stdout"),
		StderrPath: filepath.Join(dir, "stderr"),
	}
	if _, err := l.Execute(context.Background(), spec); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out, err := os.ReadFile(spec.StdoutPath)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if got := string(out); got != resolved+"\n" {
		t.Fatalf("got pwd %q, want %q", got, resolved+"\n")
	}
}

func TestLocalExecuteUnknownShell(t *testing.T) {
	dir := t.TempDir()
	l := backend.NewLocal(1)
	spec := backend.ExecSpec{
		WorkDir:    dir,
		Command:    "echo hi",
		Shell:      "not-a-real-shell-binary",
		StdoutPath: filepath.Join(dir, "stdout"),
		StderrPath: filepath.Join(dir, "stderr"),
	}
	if _, err := l.Execute(context.Background(), spec); err == nil {
		t.Fatalf("expected an error for a missing shell")
	}
}
