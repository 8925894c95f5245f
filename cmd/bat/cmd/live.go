package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/battrading/bat/config"
	"github.com/battrading/bat/live"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run a strategy live against a broker",
	Long: `Live polls a data provider on a fixed interval, recomputes the
strategy over a rolling candle window, and trades the latest signal
through the configured broker. Ctrl-C stops the loop cleanly.

The broker is the source of truth for position state; the local trade
history is reporting only.

Example:
  bat live --config live.yaml`,
	RunE: runLive,
}

var (
	lvIterations int
	lvTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().IntVar(&lvIterations, "iterations", 0, "stop after N iterations (0 = run until interrupted)")
	liveCmd.Flags().DurationVar(&lvTimeout, "pending-timeout", time.Minute, "cancel unfilled limit orders after this age")
}

func runLive(cmd *cobra.Command, args []string) error {
	if cfgPath == "" {
		return fmt.Errorf("live trading requires a config file (--config)")
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return err
	}
	creds := config.LoadCredentials()

	strat, err := buildStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg, creds)
	if err != nil {
		return err
	}
	gw, feed, err := buildGateway(cfg, creds, provider)
	if err != nil {
		return err
	}
	jnl, err := buildJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer jnl.Close()

	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	runner, err := live.New(live.Config{
		Symbol:              cfg.Trading.Symbol,
		Mode:                cfg.Mode(),
		PositionPct:         cfg.Trading.PositionPct,
		SpreadPips:          cfg.Trading.SpreadPips,
		Interval:            interval,
		MaxCandles:          cfg.Trading.MaxCandles,
		UseLimitOrders:      cfg.Trading.UseLimitOrders,
		PendingOrderTimeout: lvTimeout,
		MaxIterations:       lvIterations,
	}, strat, feed, gw, jnl)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		log.WithError(err).Error("live run ended with error")
	}

	fmt.Println()
	fmt.Println(runner.Summary())
	return nil
}
