package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	auditapp "github.com/khanhnv2901/seca-sri/internal/application/audit"
	"github.com/khanhnv2901/seca-sri/internal/checker"
	domainaudit "github.com/khanhnv2901/seca-sri/internal/domain/audit"
	"github.com/khanhnv2901/seca-sri/internal/report"
	consts "github.com/khanhnv2901/seca-sri/internal/shared/constants"
)

var rootCmd = newRootCmd()

var osExit = os.Exit

func newRootCmd() *cobra.Command {
	cfg := newCLIConfig()
	var logger *zap.SugaredLogger

	cmd := &cobra.Command{
		Use:   "seca-sri [document]",
		Short: "Audit an HTML document for Subresource Integrity and baseline security headers",
		Long: `Audit a single HTML document.

Every external <link> and <script> must carry a matching integrity digest and a
crossorigin attribute unless its origin is exempt (preconnect hints, font kit
hosts, dynamic web font CSS). Integrity values are verified by fetching each
resource once. The document must also mention Content-Security-Policy,
X-Frame-Options, X-Content-Type-Options and Referrer-Policy.

Exit status is 0 when no issues are found and 1 otherwise.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfigFile(cfg.ConfigFile)
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd.Flags(), v, cfg)
			if len(args) == 1 {
				cfg.Document = args[0]
			}

			if cfg.NoColor {
				color.NoColor = true
			}

			logger, err = newLogger(cfg.Verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if used := v.ConfigFileUsed(); used != "" {
				logger.Debugw("config loaded", "file", used)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorw("unhandled error", "panic", r)
					err = &PanicError{Value: r}
				}
			}()
			defer func() { _ = logger.Sync() }()
			return runAudit(cmd, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "config file (default is $HOME/.seca-sri.yaml)")
	flags.IntVar(&cfg.TimeoutSecs, "timeout", cfg.TimeoutSecs, "per-resource fetch timeout in seconds")
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "maximum concurrent resource fetches")
	flags.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "maximum resource fetches per second")
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "output format: text, json, yaml or markdown")
	flags.StringVarP(&cfg.Output, "output", "O", "", "write the report to this file instead of stdout")
	flags.StringSliceVar(&cfg.ExemptHosts, "exempt-host", nil, "additional host exempt from the SRI requirement (repeatable)")
	flags.BoolVar(&cfg.Suggest, "suggest", false, "compute an integrity value for required resources that lack one")
	flags.StringVar(&cfg.SuggestAlgorithm, "suggest-algorithm", cfg.SuggestAlgorithm, "digest used by --suggest: sha256, sha384 or sha512")
	flags.BoolVar(&cfg.Progress, "progress", false, "show verification progress on stderr")
	flags.BoolVar(&cfg.NoColor, "no-color", false, "disable colored output")
	flags.BoolVar(&cfg.Verbose, "debug", false, "enable debug logging on stderr")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runAudit(cmd *cobra.Command, cfg *CLIConfig, logger *zap.SugaredLogger) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	suggestAlgo, err := checker.ParseHashAlgorithm(cfg.SuggestAlgorithm)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier := checker.NewVerifier(time.Duration(cfg.TimeoutSecs)*time.Second, userAgent())
	opts := auditapp.Options{
		Policy: checker.NewPolicy(cfg.ExemptHosts...),
		Runner: &checker.Runner{
			Verifier:    verifier,
			Concurrency: cfg.Concurrency,
			RateLimit:   cfg.RateLimit,
		},
		Logger:           logger,
		Suggest:          cfg.Suggest,
		SuggestAlgorithm: suggestAlgo,
	}
	if cfg.Progress {
		opts.Progress = progressFor(cmd.ErrOrStderr())
	}

	result, err := auditapp.NewService(opts).Run(ctx, cfg.Document)
	if err != nil {
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), cfg.Output, format, result); err != nil {
		return err
	}

	if n := result.IssueCount(); n > 0 {
		return &IssuesFoundError{Count: n}
	}
	return nil
}

// writeReport renders result to stdout, or to path when one is given. A
// failed close of the output file is reported.
func writeReport(stdout io.Writer, path string, format report.Format, result *domainaudit.Report) (err error) {
	out := stdout
	if path != "" {
		f, openErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePerm)
		if openErr != nil {
			return fmt.Errorf("failed to create output file: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		out = f
	}

	w, err := report.NewWriter(format, out, Version)
	if err != nil {
		return err
	}
	if err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func progressFor(out io.Writer) auditapp.ProgressFunc {
	return func(total int) (func(checker.VerifyResult), func()) {
		p := newProgressPrinter(out, total, "verify")
		p.Start()
		onResult := func(res checker.VerifyResult) {
			ok := res.Err == nil && res.Outcome != nil && res.Outcome.Matches
			p.Increment(ok, res.Duration.Seconds())
		}
		return onResult, p.Stop
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Execute runs the root command and exits non-zero on issues or errors.
func Execute() {
	if code := execute(rootCmd, os.Args[1:]); code != 0 {
		osExit(code)
	}
}

func execute(cmd *cobra.Command, args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), colorError("Error:"), &PanicError{Value: r})
			code = 1
		}
	}()

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var issues *IssuesFoundError
		if !errors.As(err, &issues) {
			fmt.Fprintln(cmd.ErrOrStderr(), colorError("Error:"), err)
		}
		return 1
	}
	return 0
}
