package analyzer

import "testing"

func TestChooseStrategy_Precedence(t *testing.T) {
	cases := []struct {
		name                        string
		argParser, mainGuard, entry bool
		want                        Strategy
	}{
		{"argparse only", true, false, false, StrategyCommandLine},
		{"guard only", false, true, false, StrategyCommandLine},
		{"argparse and entry", true, false, true, StrategyCommandLine},
		{"guard and entry", false, true, true, StrategyCommandLine},
		{"everything", true, true, true, StrategyCommandLine},
		{"entry only", false, false, true, StrategyEntryCall},
		{"nothing", false, false, false, StrategyModuleExec},
	}
	for _, c := range cases {
		if got := chooseStrategy(c.argParser, c.mainGuard, c.entry); got != c.want {
			t.Fatalf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}
