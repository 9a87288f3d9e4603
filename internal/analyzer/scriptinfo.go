package analyzer

// Strategy identifies how a script should be invoked.
type Strategy string

const (
	// StrategyCommandLine runs the script as a command-line tool in its own
	// process, with arguments rendered as CLI tokens.
	StrategyCommandLine Strategy = "command-line"
	// StrategyEntryCall imports the script and calls its entry point.
	StrategyEntryCall Strategy = "entry-call"
	// StrategyModuleExec executes the module body in a fresh namespace.
	StrategyModuleExec Strategy = "module-exec"
)

// Kind is the semantic type of a parameter value.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	// KindChoice restricts the value to one of Parameter.Choices.
	KindChoice Kind = "choice"
)

// Parameter describes one declared input of a script.
type Parameter struct {
	Name     string   `json:"name"`
	Required bool     `json:"required"`
	Default  any      `json:"default,omitempty"`
	Kind     Kind     `json:"kind"`
	Choices  []string `json:"choices,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// ScriptInfo is the immutable result of analyzing one script source file.
// When Err is non-empty the script could not be parsed: Strategy is
// undefined and the script must be treated as non-executable.
type ScriptInfo struct {
	Path         string      `json:"path"`
	DisplayName  string      `json:"display_name"`
	Strategy     Strategy    `json:"strategy,omitempty"`
	EntryPoint   string      `json:"entry_point,omitempty"`
	Parameters   []Parameter `json:"parameters,omitempty"`
	HasMainGuard bool        `json:"has_main_guard"`
	HasArgParser bool        `json:"has_arg_parser"`
	Err          string      `json:"error,omitempty"`
}

// Executable reports whether the script parsed cleanly and may be run.
func (s ScriptInfo) Executable() bool { return s.Err == "" }

// Parameter returns the declared parameter with the given name.
func (s ScriptInfo) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
