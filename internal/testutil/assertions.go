package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that some log line contains every one of the given
// fragments, such as `msg="Generated builder file."` and a path.
func AssertLogged(t *testing.T, result *HarnessResult, fragments ...string) {
	t.Helper()
	for _, line := range strings.Split(result.LogOutput, "\n") {
		matched := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "log line not found", "no log line contains all of %q in:\n%s", fragments, result.LogOutput)
}
