package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/typestate/internal/app"
	"github.com/vk/typestate/internal/gen"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly (help was shown), or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var parsed *app.Config
	capture := func(command string, cfg *app.Config) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, paths []string) error {
			cfg.Command = command
			cfg.Paths = paths
			validated, err := app.NewConfig(*cfg)
			if err != nil {
				return &ExitError{Code: ExitUsage, Message: err.Error()}
			}
			parsed = validated
			return nil
		}
	}

	cfg := &app.Config{}
	root := newRootCommand(cfg)
	root.AddCommand(
		newGenerateCommand(cfg, capture(app.CommandGenerate, cfg)),
		newCheckCommand(capture(app.CommandCheck, cfg)),
		newBuildCommand(cfg, capture(app.CommandBuild, cfg)),
	)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	if parsed == nil {
		// Help or bare invocation: cobra already printed usage.
		slog.Debug("No command run, exiting.")
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "command", parsed.Command)
	return parsed, false, nil
}

func newRootCommand(cfg *app.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "typestate",
		Short: "Generate type-state builders for immutable Go value types",
		Long: `typestate reads struct declarations (HCL or YAML) and generates, for each
struct, an immutable value type and a generic builder on which building is
only possible once every required field has been set, and on which each
setter can be called only once. The checks happen at compile time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		cfg.LogFormat = strings.ToLower(cfg.LogFormat)
		cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	}
	return root
}

func newGenerateCommand(cfg *app.Config, run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Generate builder source files",
		Long: `Generate writes one Go file per declaration file, next to it unless --out is
set. Files whose content is unchanged are not rewritten.`,
		Example: `  typestate generate ./schemas
  //go:generate go run github.com/vk/typestate/cmd/typestate generate greeting.hcl`,
		RunE: run,
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfg.OutDir, "out", "o", "", "Directory for generated files. Defaults to each declaration file's directory.")
	flags.StringVar(&cfg.Suffix, "suffix", gen.DefaultSuffix, "Suffix replacing the declaration file's extension.")
	flags.StringVarP(&cfg.Package, "package", "p", "", "Package name for generated files, overriding the declarations.")
	flags.BoolVar(&cfg.NoGuard, "no-guard", false, "Omit the run-time single-use check from builders.")
	flags.BoolVarP(&cfg.Watch, "watch", "w", false, "Regenerate whenever a declaration file changes.")
	return cmd
}

func newCheckCommand(run func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate declarations and summarize each struct's state space",
		RunE:  run,
	}
}

func newBuildCommand(cfg *app.Config, run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [paths...] --type NAME [--set field=expr]...",
		Short: "Build one value with the run-time checked builder and print it as JSON",
		Long: `Build constructs a value without generating code. Every --set value is an HCL
expression. Misuse (setting a field twice, setting a private field, a
missing required field) fails immediately and names the field.`,
		Example: `  typestate build ./schemas --type Foo --set 'hi="wowie"'`,
		RunE:    run,
	}
	flags := cmd.Flags()
	flags.StringVarP(&cfg.TypeName, "type", "t", "", "Struct to build, by name or package.Name.")
	flags.StringArrayVarP(&cfg.Sets, "set", "s", nil, "Field assignment name=expression. Repeatable.")
	return cmd
}
