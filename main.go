package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cloudfoundry-incubator/rendezvous/commands"
	"github.com/cloudfoundry-incubator/rendezvous/config"
	"github.com/cloudfoundry-incubator/rendezvous/logging"
	"github.com/cloudfoundry-incubator/rendezvous/metrics"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader, stdout *os.File) *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "rendezvous [flags] [FILE]",
		Short: "Pair begin/end log records into spans",
		Long: `rendezvous reads begin/end records (bunyan or lager JSON lines) from FILE or stdin,
pairs every begin with its end and prints what it found:

  --stream            one line per begin and end as they are paired (the default)
  --raw               the same as JSON objects
  --report            per-operation statistics and duration histograms at end of input
  --timeline REQ_ID   the nested start/end trace of one request at end of input

Examples:
  rendezvous -r vmapi.log
  rendezvous -s -d 250ms < vmapi.log
  rendezvous -t 8a1f0e52-6b6e-4a0e-9a4b-6a1b1c2d3e4f vmapi.log`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, args)
			if err != nil {
				cmd.Usage()
				return err
			}

			logCfg := logging.DefaultConfig()
			logCfg.Level = cfg.LogLevel
			logCfg.Development = cfg.Debug
			logger, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			in := stdin
			if cfg.Input != "" {
				f, err := os.Open(cfg.Input)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			if cfg.PlotDir != "" {
				if err := os.MkdirAll(cfg.PlotDir, 0o755); err != nil {
					return fmt.Errorf("creating plot directory: %w", err)
				}
			}

			analyzer := &commands.Analyzer{
				Config:   cfg,
				Logger:   logger,
				Counters: metrics.New(),
				Stdout:   stdout,
				Color:    !cfg.NoColor && term.IsTerminal(int(stdout.Fd())),
			}
			return analyzer.Run(cmd.Context(), in)
		},
	}

	if err := config.BindFlags(cmd.Flags(), v); err != nil {
		panic(err)
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.Usage()
		return err
	})
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate(fmt.Sprintf("rendezvous version %s\n", version))

	return cmd
}
