package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultSuccessMessage = "Script executed successfully"
	defaultFailureMessage = "Script execution failed"
)

// normalizeProcess fills Succeeded, Kind, Message and Data for a plain
// process run. When the script printed a JSON object, its success and
// message fields override the exit-derived outcome.
func normalizeProcess(res *Result, exitOK bool) {
	res.Succeeded = exitOK
	if exitOK {
		res.Kind = KindSuccess
		res.Message = defaultSuccessMessage
	} else {
		res.Kind = KindRuntimeFailure
		res.Message = defaultFailureMessage
		if summary := exceptionSummary(res.Stderr); summary != "" {
			res.Message = summary
		}
	}

	payload, parseErr := scanPayload(res.Stdout)
	if parseErr != "" {
		res.Succeeded = false
		res.Kind = KindMalformedOutput
		res.Message = "script printed malformed JSON output"
		appendStderr(res, parseErr)
		return
	}
	if payload == nil {
		return
	}
	res.Data = payload
	if v, ok := payload["success"]; ok {
		if b, isBool := v.(bool); isBool {
			res.Succeeded = b
			if b {
				res.Kind = KindSuccess
			} else {
				res.Kind = KindRuntimeFailure
			}
		}
	}
	if v, ok := payload["message"]; ok {
		if s, isStr := v.(string); isStr && s != "" {
			res.Message = s
		}
	}
	if res.Succeeded && res.Message == defaultFailureMessage {
		res.Message = defaultSuccessMessage
	}
}

// scanPayload looks for a JSON object in stdout: first the whole trimmed
// output, then the last non-empty line. A candidate that looks like an
// object but does not parse reports the parse error instead of being
// ignored.
func scanPayload(stdout string) (map[string]any, string) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, ""
	}
	if payload, parseErr, matched := tryParseObject(trimmed); matched {
		return payload, parseErr
	}
	lines := strings.Split(trimmed, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if payload, parseErr, matched := tryParseObject(line); matched {
			return payload, parseErr
		}
		break
	}
	return nil, ""
}

func tryParseObject(candidate string) (payload map[string]any, parseErr string, matched bool) {
	if !strings.HasPrefix(candidate, "{") || !strings.HasSuffix(candidate, "}") {
		return nil, "", false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(candidate), &m); err != nil {
		return nil, fmt.Sprintf("invalid structured payload: %v", err), true
	}
	return m, "", true
}

func appendStderr(res *Result, text string) {
	if text == "" {
		return
	}
	if res.Stderr != "" && !strings.HasSuffix(res.Stderr, "\n") {
		res.Stderr += "\n"
	}
	res.Stderr += text
}

// normalizeEntryReport maps an entry function's return value onto the
// result. A dict return may carry success and message fields; other value
// shapes get stringified into the message.
func normalizeEntryReport(res *Result, report bootstrapReport) {
	if !report.OK {
		res.Succeeded = false
		res.Kind = KindRuntimeFailure
		res.Message = defaultFailureMessage
		if summary := exceptionSummary(report.Error); summary != "" {
			res.Message = summary
		}
		appendStderr(res, report.Error)
		return
	}

	res.Succeeded = true
	res.Kind = KindSuccess
	res.Message = defaultSuccessMessage

	if len(report.Value) == 0 || string(report.Value) == "null" {
		return
	}
	var value any
	if err := json.Unmarshal(report.Value, &value); err != nil {
		return
	}
	switch v := value.(type) {
	case map[string]any:
		res.Data = v
		if s, ok := v["success"]; ok {
			if b, isBool := s.(bool); isBool {
				res.Succeeded = b
				if b {
					res.Kind = KindSuccess
				} else {
					res.Kind = KindRuntimeFailure
					res.Message = defaultFailureMessage
				}
			}
		}
		if m, ok := v["message"]; ok {
			if s, isStr := m.(string); isStr && s != "" {
				res.Message = s
			}
		}
	case string:
		if v != "" {
			res.Message = v
		}
	case bool:
		res.Succeeded = v
		if v {
			res.Kind = KindSuccess
		} else {
			res.Kind = KindRuntimeFailure
			res.Message = defaultFailureMessage
		}
	default:
		res.Message = fmt.Sprint(v)
	}
}

// normalizeModuleReport maps a module level run, where the report carries
// only an exit disposition, onto the result.
func normalizeModuleReport(res *Result, report bootstrapReport) {
	exit := report.Exit
	res.ExitCode = &exit
	if report.OK {
		res.Succeeded = true
		res.Kind = KindSuccess
		res.Message = defaultSuccessMessage
		if payload, parseErr := scanPayload(res.Stdout); parseErr != "" {
			res.Succeeded = false
			res.Kind = KindMalformedOutput
			res.Message = "script printed malformed JSON output"
			appendStderr(res, parseErr)
		} else if payload != nil {
			res.Data = payload
			if m, ok := payload["message"]; ok {
				if s, isStr := m.(string); isStr && s != "" {
					res.Message = s
				}
			}
			if v, ok := payload["success"]; ok {
				if b, isBool := v.(bool); isBool {
					res.Succeeded = b
					if b {
						res.Kind = KindSuccess
					} else {
						res.Kind = KindRuntimeFailure
					}
				}
			}
		}
		return
	}
	res.Succeeded = false
	res.Kind = KindRuntimeFailure
	res.Message = defaultFailureMessage
	if summary := exceptionSummary(report.Error); summary != "" {
		res.Message = summary
	}
	appendStderr(res, report.Error)
}

// exceptionSummary returns the last non-empty line of a traceback, which
// for CPython is the exception type and message.
func exceptionSummary(trace string) string {
	lines := strings.Split(strings.TrimSpace(trace), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
