package engine

import (
	"encoding/json"
	"strings"
)

// resultMarker prefixes the single stdout line carrying the bootstrap
// report. The marker keeps the report separable from anything the script
// prints itself.
const resultMarker = "<<<scriptdeck:result>>>"

// bootstrapReport is the JSON payload the bootstrap shims emit on the
// marker line.
type bootstrapReport struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value"`
	Error string          `json:"error"`
	Exit  int             `json:"exit"`
}

const entryCallBootstrapTemplate = `
import importlib.util, inspect, json, sys, traceback

_marker = "@@MARKER@@"

def _emit(payload):
    sys.stdout.flush()
    sys.stderr.flush()
    sys.stdout.write("\n" + _marker + json.dumps(payload) + "\n")
    sys.stdout.flush()

def _run():
    path, raw_kwargs, entry = sys.argv[1], sys.argv[2], sys.argv[3]
    kwargs = json.loads(raw_kwargs)
    spec = importlib.util.spec_from_file_location("scriptdeck_target", path)
    module = importlib.util.module_from_spec(spec)
    spec.loader.exec_module(module)
    fn = getattr(module, entry)
    accepted = {}
    sig = inspect.signature(fn)
    has_var_kw = any(
        p.kind is inspect.Parameter.VAR_KEYWORD for p in sig.parameters.values()
    )
    for name, value in kwargs.items():
        if has_var_kw or name in sig.parameters:
            accepted[name] = value
    return fn(**accepted)

try:
    _value = _run()
    try:
        json.dumps(_value)
    except (TypeError, ValueError):
        _value = repr(_value)
    _emit({"ok": True, "value": _value, "error": "", "exit": 0})
except SystemExit as exc:
    _code = exc.code if isinstance(exc.code, int) else (0 if exc.code is None else 1)
    _emit({"ok": _code == 0, "value": None, "error": "", "exit": _code})
except BaseException:
    _emit({"ok": False, "value": None, "error": traceback.format_exc(), "exit": 1})
`

const moduleExecBootstrapTemplate = `
import json, runpy, sys, traceback

_marker = "@@MARKER@@"

def _emit(payload):
    sys.stdout.flush()
    sys.stderr.flush()
    sys.stdout.write("\n" + _marker + json.dumps(payload) + "\n")
    sys.stdout.flush()

try:
    path, raw_argv = sys.argv[1], sys.argv[2]
    sys.argv = [path] + json.loads(raw_argv)
    runpy.run_path(path, run_name="__main__")
    _emit({"ok": True, "value": None, "error": "", "exit": 0})
except SystemExit as exc:
    _code = exc.code if isinstance(exc.code, int) else (0 if exc.code is None else 1)
    _emit({"ok": _code == 0, "value": None, "error": "", "exit": _code})
except BaseException:
    _emit({"ok": False, "value": None, "error": traceback.format_exc(), "exit": 1})
`

var (
	entryCallBootstrap  = strings.ReplaceAll(entryCallBootstrapTemplate, "@@MARKER@@", resultMarker)
	moduleExecBootstrap = strings.ReplaceAll(moduleExecBootstrapTemplate, "@@MARKER@@", resultMarker)
)

// extractReport pulls the last marker line out of stdout and returns the
// remaining script output with the marker lines removed. ok is false when
// no marker line was found or its JSON did not parse.
func extractReport(stdout string) (report bootstrapReport, cleaned string, ok bool) {
	lines := strings.Split(stdout, "\n")
	kept := make([]string, 0, len(lines))
	found := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, resultMarker) {
			raw := strings.TrimPrefix(trimmed, resultMarker)
			var r bootstrapReport
			if err := json.Unmarshal([]byte(raw), &r); err == nil {
				report = r
				found = true
			}
			continue
		}
		kept = append(kept, line)
	}
	cleaned = strings.Join(kept, "\n")
	return report, cleaned, found
}
