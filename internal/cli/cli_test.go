package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/app"
	"github.com/vk/typestate/internal/cli"
)

func TestParse_Generate(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := cli.Parse([]string{
		"--log-level", "DEBUG",
		"generate", "a.hcl", "schemas",
		"--out", "gen", "--suffix", ".gen.go", "-p", "model", "--no-guard",
	}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	require.Equal(t, &app.Config{
		Command:   app.CommandGenerate,
		Paths:     []string{"a.hcl", "schemas"},
		LogFormat: "text",
		LogLevel:  "debug",
		OutDir:    "gen",
		Suffix:    ".gen.go",
		Package:   "model",
		NoGuard:   true,
	}, cfg)
}

func TestParse_Build(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := cli.Parse([]string{
		"build", "--type", "Foo", "--set", `hi="a,b"`, "-s", "bye=upper(\"x\")",
	}, &out)
	require.NoError(t, err)
	require.Equal(t, app.CommandBuild, cfg.Command)
	require.Equal(t, []string{"."}, cfg.Paths)
	require.Equal(t, "Foo", cfg.TypeName)
	require.Equal(t, []string{`hi="a,b"`, `bye=upper("x")`}, cfg.Sets)
}

func TestParse_Help(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {"generate", "-h"}} {
		var out bytes.Buffer
		cfg, exit, err := cli.Parse(args, &out)
		require.NoError(t, err)
		require.True(t, exit)
		require.Nil(t, cfg)
		require.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"check", "--nope"}, "unknown flag: --nope"},
		{"unknown command", []string{"deploy"}, `unknown command "deploy"`},
		{"invalid level", []string{"--log-level", "loud", "check"}, "invalid log-level"},
		{"build without type", []string{"build"}, "set --type"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := cli.Parse(tc.args, &out)

			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, cli.ExitUsage, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.want)
		})
	}
}
