package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/cryptofolio/server"
	"github.com/google/subcommands"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the analytics over HTTP" }
func (*serveCmd) Usage() string {
	return `cfo serve [-addr <host:port>]

  Serves the portfolio analytics as JSON or markdown:

    GET /api/v1/portfolio
    GET /api/v1/assets/{symbol}
    GET /api/v1/assets/{symbol}/events

  with optional 'from', 'to' or 'period' query parameters, and 'format=markdown'.
  /health and /metrics (Prometheus) are served too.

  The data files are read again on SIGHUP.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.addr != "" {
		cfg.Server.Addr = c.addr
	}
	log := newLogger(cfg)

	ds, err := loadDataset(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	srv := server.New(ds, server.WithLogger(log))
	log.Info().
		Int("transactions", len(ds.Transactions)).
		Int("transfers", len(ds.Transfers)).
		Int("assets", len(ds.Assets)).
		Msg("data loaded")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				ds, err := loadDataset(cfg)
				if err != nil {
					log.Error().Err(err).Msg("reload failed, keeping the previous data")
					continue
				}
				srv.SetDataset(ds)
				log.Info().Uint64("version", srv.Version()).Msg("data reloaded")
			}
		}
	}()

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		log.Error().Err(err).Msg("server failed")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
