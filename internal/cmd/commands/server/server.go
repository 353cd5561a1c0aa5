package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/verilogica/orchestrator/internal/api"
	"github.com/verilogica/orchestrator/internal/cmd/base"
	"github.com/verilogica/orchestrator/internal/config"
	"github.com/verilogica/orchestrator/internal/server"
	"github.com/verilogica/orchestrator/pkg/existdb"
)

type Command struct {
	*base.Command

	flagConfig string
	flagAddr   string
}

func (c *Command) Synopsis() string {
	return "Run the orchestrator server"
}

func (c *Command) Help() string {
	return `Usage: orchestrator server -config=config.hcl

  Run the orchestrator HTTP server fronting the XML document store.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("server", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "config.hcl",
		"Path to the configuration file",
	)
	f.StringVar(
		&c.flagAddr, "addr", "",
		"Listen address (overrides listen_addr from the config file)",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}
	if c.flagAddr != "" {
		cfg.ListenAddr = c.flagAddr
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "orchestrator",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	clientCfg, err := cfg.Store.ClientConfig()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building store config: %v", err))
		return 1
	}

	client, err := existdb.NewClient(clientCfg)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating store client: %v", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := waitForStore(ctx, client, log); err != nil {
		c.UI.Error(fmt.Sprintf("store is not reachable: %v", err))
		return 1
	}

	repo := existdb.NewRepository(client, log)
	srv := server.Server{
		Config:    cfg,
		Documents: existdb.NewService(repo, log),
		Logger:    log,
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, srv)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr, "store", clientCfg.BaseURL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.UI.Error(fmt.Sprintf("server error: %v", err))
			return 1
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("error during shutdown", "error", err)
			return 1
		}
	}

	return 0
}

// waitForStore probes the store's base URL until it answers or the backoff
// budget runs out. Any response counts as reachable; interpreting statuses
// is not this function's job. This is startup readiness only — individual
// document operations are never retried.
func waitForStore(ctx context.Context, client *existdb.Client, log hclog.Logger) error {
	probe := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		_, err := client.Head(probeCtx, "")
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8), ctx)

	return backoff.RetryNotify(probe, policy, func(err error, next time.Duration) {
		log.Warn("store not reachable yet", "error", err, "retry_in", next)
	})
}
