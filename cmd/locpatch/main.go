// Command locpatch batch-translates Paradox localization files with an AI
// model and rewrites them in place.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ZaguanLabs/locpatch"
	"github.com/ZaguanLabs/locpatch/config"
	"github.com/ZaguanLabs/locpatch/logger"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log zerolog.Logger

	// gateway replaces the configured provider when set.
	gateway locpatch.Gateway
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

// skipSetup marks commands that run without configuration.
const skipSetup = "locpatch/skip-setup"

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   locpatch.Name,
		Short: "Batch-translate Paradox localization files with AI",
		Long: `locpatch batch-processes the localization files of a Paradox game mod.

Commands:
  rename        Turn *_english.yml files into *_german.yml files
  cleanup       Delete stray localization files after one confirmation
  translate     Translate every unprocessed value in *_german.yml files
  fix-articles  Resolve $the_$ article placeholders
  scan          Show what translate would send, without calling the API

Translated lines carry the marker #~TR~ and are never sent again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.FileName+" if present)")
	pf.StringVar(&a.envFile, "env-file", "", "Dotenv file (default: ./"+config.DefaultEnvFile+" if present)")
	pf.StringVar(&a.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "console", "Log format (console, json)")

	root.AddCommand(
		a.renameCmd(),
		a.cleanupCmd(),
		a.translateCmd(),
		a.fixArticlesCmd(),
		a.scanCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(config.LoadOptions{Path: a.configPath, EnvFile: a.envFile})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(logger.Options{
		Level:  a.logLevel,
		Format: a.logFormat,
		Writer: a.stderr,
	})
	if !locpatch.IsKnownLanguage(cfg.TargetLang) {
		a.log.Warn().Str("target_lang", cfg.TargetLang).Msg("unknown Paradox language, file names may not match")
	}
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", locpatch.Name, locpatch.FullVersion())
			if locpatch.GitCommit != "unknown" && locpatch.GitCommit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", locpatch.GitCommit)
			}
			if locpatch.BuildDate != "unknown" && locpatch.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", locpatch.BuildDate)
			}
		},
	}
}

// dirArg returns the first positional argument or def.
func dirArg(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)
