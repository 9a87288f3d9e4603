package analyzer

// chooseStrategy maps the analysis signals to exactly one execution
// strategy. Scripts that exhibit command-line-tool shape, argparse
// declarations or a __main__ guard, are isolated in their own process:
// they are the most likely to mutate global state or call exit. A bare
// main() is invoked directly, and anything else has its module body
// executed as a flat sequence of statements.
//
// The function is total: every parseable script maps to a strategy.
func chooseStrategy(hasArgParser, hasMainGuard, hasEntry bool) Strategy {
	switch {
	case hasArgParser || hasMainGuard:
		return StrategyCommandLine
	case hasEntry:
		return StrategyEntryCall
	default:
		return StrategyModuleExec
	}
}
