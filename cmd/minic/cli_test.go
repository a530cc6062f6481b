package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minic/pkg/compiler"
)

// newTestCmd builds a command whose output lands in the returned buffer.
func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}

func writeProgram(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCmd(t *testing.T) {
	path := writeProgram(t, "prog.c", "int a = 6; int b = 7; return a * b;")

	cmd, buf := newTestCmd()
	if err := runProgram(cmd, []string{path}); err != nil {
		t.Fatalf("runProgram failed: %v", err)
	}
	if got := buf.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestRunCmd_WithEnv(t *testing.T) {
	path := writeProgram(t, "prog.c", "int b = 7; int a = 6; return a * b;")

	runShowEnv = true
	defer func() { runShowEnv = false }()

	cmd, buf := newTestCmd()
	if err := runProgram(cmd, []string{path}); err != nil {
		t.Fatalf("runProgram failed: %v", err)
	}
	want := "42\na = 6\nb = 7\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunCmd_Folded(t *testing.T) {
	path := writeProgram(t, "prog.c", "int a = 6; int b = 7; return a * b;")

	logger = zap.NewNop()
	runFold = true
	defer func() { runFold = false }()

	cmd, buf := newTestCmd()
	if err := runProgram(cmd, []string{path}); err != nil {
		t.Fatalf("runProgram failed: %v", err)
	}
	if got := buf.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestRunCmd_Stdin(t *testing.T) {
	cmd, buf := newTestCmd()
	cmd.SetIn(strings.NewReader("return 5;"))

	if err := runProgram(cmd, []string{"-"}); err != nil {
		t.Fatalf("runProgram failed: %v", err)
	}
	if got := buf.String(); got != "5\n" {
		t.Errorf("output = %q, want %q", got, "5\n")
	}
}

func TestRunCmd_ReportsEvalError(t *testing.T) {
	path := writeProgram(t, "bad.c", "return x;")

	cmd, _ := newTestCmd()
	err := runProgram(cmd, []string{path})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), `undefined variable "x"`) {
		t.Errorf("error = %q, missing undefined variable report", err)
	}
}

func TestEvalCmd(t *testing.T) {
	cmd, buf := newTestCmd()
	if err := evalExpression(cmd, []string{"(1", "+", "2)", "*", "3"}); err != nil {
		t.Fatalf("evalExpression failed: %v", err)
	}
	if got := buf.String(); got != "9\n" {
		t.Errorf("output = %q, want %q", got, "9\n")
	}
}

func TestEvalCmd_ShiftWraps(t *testing.T) {
	cmd, buf := newTestCmd()
	if err := evalExpression(cmd, []string{"1 << 33"}); err != nil {
		t.Fatalf("evalExpression failed: %v", err)
	}
	if got := buf.String(); got != "2\n" {
		t.Errorf("output = %q, want %q", got, "2\n")
	}
}

func TestTokensCmd(t *testing.T) {
	path := writeProgram(t, "prog.c", "int a = 1;")

	cmd, buf := newTestCmd()
	if err := dumpTokens(cmd, []string{path}); err != nil {
		t.Fatalf("dumpTokens failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 6 { // int a = 1 ; EOF
		t.Fatalf("got %d token lines, want 6:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "IDENTIFIER") || !strings.Contains(lines[1], `"a"`) {
		t.Errorf("second token line = %q, want the identifier a", lines[1])
	}
}

func TestAstCmd(t *testing.T) {
	path := writeProgram(t, "prog.c", "int a = 1 + 2 * 3;")

	cmd, buf := newTestCmd()
	if err := dumpAST(cmd, []string{path}); err != nil {
		t.Fatalf("dumpAST failed: %v", err)
	}
	want := "VariableDecl(int a = (1 + (2 * 3)))\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAstCmd_Folded(t *testing.T) {
	path := writeProgram(t, "prog.c", "int a = 1 + 2 * 3;")

	astFold = true
	defer func() { astFold = false }()

	cmd, buf := newTestCmd()
	if err := dumpAST(cmd, []string{path}); err != nil {
		t.Fatalf("dumpAST failed: %v", err)
	}
	want := "VariableDecl(int a = 7)\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTacCmd(t *testing.T) {
	path := writeProgram(t, "prog.c", "return 1 + 2;")

	cmd, buf := newTestCmd()
	if err := lowerProgram(cmd, []string{path}); err != nil {
		t.Fatalf("lowerProgram failed: %v", err)
	}
	want := "  tmp.0 = 1 + 2\n  ret tmp.0\n  ret 0\n"
	if got := buf.String(); got != want {
		t.Errorf("listing = %q, want %q", got, want)
	}
}

func TestTacCmd_Folded(t *testing.T) {
	path := writeProgram(t, "prog.c", "return 1 + 2;")

	tacFold = true
	defer func() { tacFold = false }()

	cmd, buf := newTestCmd()
	if err := lowerProgram(cmd, []string{path}); err != nil {
		t.Fatalf("lowerProgram failed: %v", err)
	}
	want := "  ret 3\n  ret 0\n"
	if got := buf.String(); got != want {
		t.Errorf("listing = %q, want %q", got, want)
	}
}

func TestExecCmd(t *testing.T) {
	path := writeProgram(t, "prog.tac", "x = 40\ny = x + 2\nret y\n")

	execShowEnv = true
	defer func() { execShowEnv = false }()

	cmd, buf := newTestCmd()
	if err := execListing(cmd, []string{path}); err != nil {
		t.Fatalf("execListing failed: %v", err)
	}
	want := "42\nx = 40\ny = 42\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestExecCmd_Trace(t *testing.T) {
	path := writeProgram(t, "prog.tac", "x = 40\ny = x + 2\nret y\n")

	logger = zap.NewNop()
	execTrace = true
	defer func() { execTrace = false }()

	cmd, buf := newTestCmd()
	if err := execListing(cmd, []string{path}); err != nil {
		t.Fatalf("execListing failed: %v", err)
	}
	if got := buf.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestFixturesCmd(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "suite.yaml")
	content := "suite: smoke\ncases:\n  - name: six times seven\n    source: \"return 6 * 7;\"\n    result: 42\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd, buf := newTestCmd()
	if err := runFixtures(cmd, []string{manifest}); err != nil {
		t.Fatalf("runFixtures failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ok   six times seven") {
		t.Errorf("output missing the case line:\n%s", out)
	}
	if !strings.Contains(out, "smoke: 1 passed, 0 failed") {
		t.Errorf("output missing the summary:\n%s", out)
	}
}

func TestFixturesCmd_FailureSetsExitStatus(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "suite.yaml")
	content := "suite: smoke\ncases:\n  - name: wrong\n    source: \"return 1;\"\n    result: 2\n"
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd, buf := newTestCmd()
	err := runFixtures(cmd, []string{manifest})
	if err == nil {
		t.Fatal("expected an error for the failing suite")
	}
	if !strings.Contains(err.Error(), "1 of 1 cases failed") {
		t.Errorf("error = %q", err)
	}
	if !strings.Contains(buf.String(), "FAIL wrong") {
		t.Errorf("output missing the FAIL line:\n%s", buf.String())
	}
}

func TestFixturesCmd_MultipleManifests(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	if err := os.WriteFile(first, []byte("suite: alpha\ncases:\n  - name: a\n    source: \"return 1;\"\n    result: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("suite: beta\ncases:\n  - name: b\n    source: \"return 2;\"\n    result: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd, buf := newTestCmd()
	if err := runFixtures(cmd, []string{first, second}); err != nil {
		t.Fatalf("runFixtures failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "alpha: 1 passed, 0 failed") || !strings.Contains(out, "beta: 1 passed, 0 failed") {
		t.Errorf("output missing a suite summary:\n%s", out)
	}
}

func TestWatchCmd_MissingTarget(t *testing.T) {
	logger = zap.NewNop()

	cmd, _ := newTestCmd()
	err := watchTarget(cmd, []string{filepath.Join(t.TempDir(), "absent.c")})
	if err == nil {
		t.Fatal("expected an error for a missing target")
	}
}

func TestReplLine(t *testing.T) {
	env := compiler.Env{}
	buf := &bytes.Buffer{}

	if err := replLine(buf, "int a = 2", env); err != nil {
		t.Fatalf("declaration failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("declaration printed %q, want nothing", buf.String())
	}
	if env["a"] != 2 {
		t.Errorf("env[a] = %d, want 2", env["a"])
	}

	buf.Reset()
	if err := replLine(buf, "a + 1", env); err != nil {
		t.Fatalf("expression failed: %v", err)
	}
	if got := buf.String(); got != "3\n" {
		t.Errorf("expression printed %q, want %q", got, "3\n")
	}

	buf.Reset()
	if err := replLine(buf, "a = 9", env); err != nil {
		t.Fatalf("assignment failed: %v", err)
	}
	if env["a"] != 9 {
		t.Errorf("env[a] = %d, want 9", env["a"])
	}

	buf.Reset()
	if err := replLine(buf, "a == 9", env); err != nil {
		t.Fatalf("comparison failed: %v", err)
	}
	if got := buf.String(); got != "1\n" {
		t.Errorf("comparison printed %q, want %q", got, "1\n")
	}

	buf.Reset()
	if err := replLine(buf, "return a", env); err != nil {
		t.Fatalf("return failed: %v", err)
	}
	if got := buf.String(); got != "9\n" {
		t.Errorf("return printed %q, want %q", got, "9\n")
	}
	if len(env) != 0 {
		t.Errorf("return left %d variables in the session, want none", len(env))
	}

	if err := replLine(buf, "ghost", env); err == nil {
		t.Error("expected an undefined variable error")
	}
}

func TestReplSession(t *testing.T) {
	cmd, buf := newTestCmd()
	cmd.SetIn(strings.NewReader("int a = 6\na * 7\n:env\n:reset\n:env\n:quit\n"))

	if err := runRepl(cmd, nil); err != nil {
		t.Fatalf("runRepl failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "42\n") {
		t.Errorf("output missing the product:\n%s", out)
	}
	if !strings.Contains(out, "a = 6\n") {
		t.Errorf("output missing the :env dump:\n%s", out)
	}
}
