package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultPython); err != nil {
		t.Skipf("%s not available: %v", DefaultPython, err)
	}
}

func writeScript(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestExecuteAnalysisFailure(t *testing.T) {
	path := writeScript(t, "broken.py", "def main(:\n")
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path})
	if res.Succeeded || res.Kind != KindAnalysisFailure {
		t.Fatalf("result = %+v, want analysis-failure", res)
	}
	if !strings.HasPrefix(res.Message, "script is not executable:") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteValidationHappensBeforeSpawn(t *testing.T) {
	dir := t.TempDir()
	sentinel := filepath.Join(dir, "touched")
	path := filepath.Join(dir, "toucher.py")
	source := "import argparse\n" +
		"parser = argparse.ArgumentParser()\n" +
		"parser.add_argument('--count', type=int, required=True)\n" +
		"open(" + pyString(sentinel) + ", 'w').close()\n"
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path, Args: map[string]any{"count": "nope"}})
	if res.Kind != KindValidationFailure {
		t.Fatalf("kind = %s, want validation-failure", res.Kind)
	}
	if _, err := os.Stat(sentinel); !os.IsNotExist(err) {
		t.Fatal("script ran despite validation failure")
	}
}

func pyString(s string) string {
	return "\"" + strings.ReplaceAll(s, "\\", "\\\\") + "\""
}

func TestExecuteCommandLinePayload(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "report.py", `
import argparse, json
parser = argparse.ArgumentParser()
parser.add_argument('--device', required=True)
args = parser.parse_args()
print("working on", args.device)
print(json.dumps({"success": True, "message": "toggled " + args.device, "device": args.device}))
`)
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path, Args: map[string]any{"device": "speakers"}})
	if !res.Succeeded || res.Kind != KindSuccess {
		t.Fatalf("result = %+v", res)
	}
	if res.Strategy != analyzer.StrategyCommandLine {
		t.Fatalf("strategy = %s", res.Strategy)
	}
	if res.Message != "toggled speakers" {
		t.Fatalf("message = %q", res.Message)
	}
	if res.ExitCode == nil || *res.ExitCode != 0 {
		t.Fatalf("exit = %v", res.ExitCode)
	}
	if res.Data["device"] != "speakers" {
		t.Fatalf("data = %v", res.Data)
	}
}

func TestExecuteEntryCallDictResult(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "entry.py", `
def main(device="monitor", volume=50):
    return {"success": False, "message": "cannot reach " + device}
`)
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path, Args: map[string]any{"device": "amp"}})
	if res.Strategy != analyzer.StrategyEntryCall {
		t.Fatalf("strategy = %s", res.Strategy)
	}
	if res.Succeeded || res.Kind != KindRuntimeFailure {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "cannot reach amp" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteEntryCallException(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "raise.py", `
def main():
    raise RuntimeError("device offline")
`)
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path})
	if res.Succeeded || res.Kind != KindRuntimeFailure {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "RuntimeError: device offline" {
		t.Fatalf("message = %q", res.Message)
	}
	if !strings.Contains(res.Stderr, "Traceback") {
		t.Fatalf("stderr = %q", res.Stderr)
	}
}

func TestExecuteModuleExec(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "flat.py", `
print("side effect done")
`)
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path})
	if res.Strategy != analyzer.StrategyModuleExec {
		t.Fatalf("strategy = %s", res.Strategy)
	}
	if !res.Succeeded {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Stdout, "side effect done") {
		t.Fatalf("stdout = %q", res.Stdout)
	}
	if strings.Contains(res.Stdout, resultMarker) {
		t.Fatal("marker leaked into stdout")
	}
}

func TestExecuteModuleExecSysExit(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "exits.py", `
import sys
sys.exit(4)
`)
	eng := New(Options{})
	res := eng.Execute(context.Background(), Request{Path: path})
	if res.Succeeded || res.Kind != KindRuntimeFailure {
		t.Fatalf("result = %+v", res)
	}
	if res.ExitCode == nil || *res.ExitCode != 4 {
		t.Fatalf("exit = %v", res.ExitCode)
	}
}

func TestExecuteTimeout(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "sleepy.py", `
import time
if __name__ == "__main__":
    time.sleep(10)
`)
	eng := New(Options{TermGrace: 200 * time.Millisecond})
	start := time.Now()
	res := eng.Execute(context.Background(), Request{Path: path, Timeout: 300 * time.Millisecond})
	if res.Succeeded || res.Kind != KindTimeout {
		t.Fatalf("result = %+v, want timeout", res)
	}
	if !strings.Contains(res.Message, "timed out") {
		t.Fatalf("message = %q", res.Message)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout took %s, process group not reaped", elapsed)
	}
	if res.Duration <= 0 {
		t.Fatal("duration not recorded")
	}
}

func TestExecuteContextCancel(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "sleepy.py", `
import time
if __name__ == "__main__":
    time.sleep(10)
`)
	eng := New(Options{TermGrace: 200 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()
	res := eng.Execute(ctx, Request{Path: path})
	if res.Kind != KindTimeout {
		t.Fatalf("kind = %s, want timeout", res.Kind)
	}
	if !strings.Contains(res.Message, "canceled") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteMissingInterpreter(t *testing.T) {
	path := writeScript(t, "flat.py", "print('hi')\n")
	eng := New(Options{Python: "definitely-not-a-python-binary"})
	res := eng.Execute(context.Background(), Request{Path: path})
	if res.Succeeded || res.Kind != KindRuntimeFailure {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Message, "not found") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestExecuteDeterministicResultJSON(t *testing.T) {
	requirePython(t)
	path := writeScript(t, "echo.py", `
import argparse, json
parser = argparse.ArgumentParser()
parser.add_argument('--n', type=int, default=1)
args = parser.parse_args()
print(json.dumps({"success": True, "message": "n=" + str(args.n)}))
`)
	eng := New(Options{})
	first := eng.Execute(context.Background(), Request{Path: path, Args: map[string]any{"n": 7}})
	second := eng.Execute(context.Background(), Request{Path: path, Args: map[string]any{"n": 7}})
	if first.Message != second.Message || first.Kind != second.Kind || first.Succeeded != second.Succeeded {
		t.Fatalf("runs diverged: %+v vs %+v", first, second)
	}
	if first.Message != "n=7" {
		t.Fatalf("message = %q", first.Message)
	}
}
