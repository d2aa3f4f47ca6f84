package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atinylittleshell/typecomp/internal/core"
	"github.com/atinylittleshell/typecomp/internal/repl"
	"github.com/atinylittleshell/typecomp/internal/repl/completion"
	"github.com/atinylittleshell/typecomp/internal/repl/config"
	"github.com/atinylittleshell/typecomp/internal/repl/input"
	"github.com/atinylittleshell/typecomp/internal/signature"
	"github.com/atinylittleshell/typecomp/internal/styles"
)

var BUILD_VERSION = "dev"

func main() {
	app := newApp(os.Stdin, os.Stdout)
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "typecomp",
		Usage:   "Type-aware completion REPL",
		Version: BUILD_VERSION,
		Reader:  in,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file (default ~/.typecomp/config.yaml)",
			},
			&cli.StringFlag{
				Name:  "completor",
				Usage: "Completion provider: type or regexp",
			},
			&cli.StringFlag{
				Name:  "runtime-version",
				Usage: "Runtime version used to choose the default completor",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				Sources: cli.EnvVars("TYPECOMP_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "self",
				Usage: "Type of the receiver at the prompt",
			},
			&cli.StringSliceFlag{
				Name:  "local",
				Usage: "Declare a variable as name=Type (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "signatures",
				Usage: "Extra signature file to load (repeatable)",
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "History database (default ~/.typecomp/history.db)",
			},
		},
		Action: runREPL,
		Commands: []*cli.Command{
			{
				Name:   "repl",
				Usage:  "Start an interactive session",
				Action: runREPL,
			},
			{
				Name:      "complete",
				Usage:     "Print the completion candidates for a line, with the cursor at its end",
				ArgsUsage: "<line>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "postposing",
						Usage: "Text after the cursor",
					},
				},
				Action: runComplete,
			},
			{
				Name:      "doc",
				Usage:     "Print the documentation name for the fragment at the end of a line",
				ArgsUsage: "<line>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "show",
						Usage: "Print the documentation instead of its name",
					},
				},
				Action: runDoc,
			},
			{
				Name:   "info",
				Usage:  "Print session information",
				Action: runInfo,
			},
		},
	}
}

func runREPL(ctx context.Context, cmd *cli.Command) error {
	r, logger, err := newSession(cmd, sessionOptions{interactive: true})
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer r.Close()

	logger.Info("starting typecomp", zap.String("version", BUILD_VERSION))
	return r.Run(ctx)
}

func runComplete(_ context.Context, cmd *cli.Command) error {
	line, err := lineArgument(cmd)
	if err != nil {
		return err
	}
	r, logger, err := newSession(cmd, sessionOptions{})
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer r.Close()

	for _, candidate := range r.Provider().Candidates(request(r, line, cmd.String("postposing"))) {
		fmt.Fprintln(cmd.Root().Writer, candidate)
	}
	return nil
}

func runDoc(ctx context.Context, cmd *cli.Command) error {
	line, err := lineArgument(cmd)
	if err != nil {
		return err
	}
	r, logger, err := newSession(cmd, sessionOptions{})
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer r.Close()

	namespace, ok := r.Provider().DocNamespace(request(r, line, ""))
	if !ok {
		return fmt.Errorf("no documentation for %q", line)
	}
	if cmd.Bool("show") {
		return r.Execute(ctx, "show_doc "+namespace)
	}
	fmt.Fprintln(cmd.Root().Writer, namespace)
	return nil
}

func runInfo(ctx context.Context, cmd *cli.Command) error {
	r, logger, err := newSession(cmd, sessionOptions{history: true})
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer r.Close()

	return r.Execute(ctx, "irb_info")
}

func lineArgument(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() == 0 {
		return "", errors.New(cmd.Name + " requires a line")
	}
	return strings.Join(cmd.Args().Slice(), " "), nil
}

func request(r *repl.REPL, line, postposing string) completion.Request {
	preposing, target, _ := input.SplitLine(line, len(line))
	return completion.Request{
		Preposing:  preposing,
		Target:     target,
		Postposing: postposing,
		Binding:    r.Binding(),
	}
}

type sessionOptions struct {
	// interactive sessions load signatures in the background.
	interactive bool
	history     bool
}

// newSession builds a REPL from the configuration file and the flags.
func newSession(cmd *cli.Command, opts sessionOptions) (*repl.REPL, *zap.Logger, error) {
	logger, logLevel, err := initializeLogger(cmd.String("log-level"))
	if err != nil {
		return nil, nil, err
	}

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = core.ConfigFile()
	}
	result, err := config.NewLoader(logger).LoadFromFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg := result.Config
	if cmd.String("log-level") == "" && BUILD_VERSION != "dev" {
		logLevel.SetLevel(cfg.Level())
	}
	if err := applyFlags(cfg, cmd); err != nil {
		return nil, nil, err
	}

	var store *signature.Store
	if !opts.interactive {
		store = signature.NewStore()
		if err := store.Load(append(core.SignatureFiles(), cfg.SignaturePaths...)...); err != nil {
			logger.Warn("failed to load some signatures", zap.Error(err))
		}
	}

	r, err := repl.NewREPL(repl.Options{
		ConfigPath:  result.Path,
		Config:      cfg,
		HistoryPath: cmd.String("history"),
		NoHistory:   !opts.interactive && !opts.history,
		Store:       store,
		Logger:      logger,
		In:          cmd.Root().Reader,
		Out:         cmd.Root().Writer,
		Version:     BUILD_VERSION,
	})
	if err != nil {
		return nil, nil, err
	}
	return r, logger, nil
}

// applyFlags overrides configuration values with the command line.
func applyFlags(cfg *config.Config, cmd *cli.Command) error {
	if completor := cmd.String("completor"); completor != "" {
		if _, err := completion.ParseKind(completor); err != nil {
			return err
		}
		cfg.Completor = completor
	}
	if version := cmd.String("runtime-version"); version != "" {
		cfg.RuntimeVersion = version
	}
	if self := cmd.String("self"); self != "" {
		cfg.Self = self
	}

	locals, err := parseLocals(cmd.StringSlice("local"))
	if err != nil {
		return err
	}
	cfg.Locals = lo.Assign(cfg.Locals, locals)
	cfg.SignaturePaths = append(cfg.SignaturePaths, cmd.StringSlice("signatures")...)
	return nil
}

// parseLocals parses name=Type declarations.
func parseLocals(decls []string) (map[string]string, error) {
	locals := make(map[string]string, len(decls))
	for _, decl := range decls {
		name, typ, ok := strings.Cut(decl, "=")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid local %q, expected name=Type", decl)
		}
		locals[name] = typ
	}
	return locals, nil
}

func initializeLogger(level string) (*zap.Logger, zap.AtomicLevel, error) {
	logLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logLevel.SetLevel(parsed)
	} else if BUILD_VERSION == "dev" {
		logLevel.SetLevel(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	// The terminal belongs to the line editor; use `tail -f ~/.typecomp/typecomp.log`.
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return logger, logLevel, nil
}
