package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/battrading/bat/backtest"
	"github.com/battrading/bat/config"
	"github.com/battrading/bat/data/csvfile"
	"github.com/battrading/bat/engine"
	"github.com/battrading/bat/ledger"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy against historical bar data",
	Long: `Backtest replays a CSV of OHLCV bars through a signal strategy and
the trade state machine, then prints a performance summary.

Example:
  bat backtest --csv data/eurusd_1m.csv --symbol EUR/USD --strategy moving_average --spread-pips 1.5`,
	RunE: runBacktest,
}

var (
	btCSVPath    string
	btSymbol     string
	btMode       string
	btBalance    float64
	btPosPct     float64
	btSpreadPips float64
	btStrategy   string
	btExportPath string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&btCSVPath, "csv", "", "path to bar CSV (time,open,high,low,close,volume)")
	backtestCmd.Flags().StringVar(&btSymbol, "symbol", "", "instrument symbol (e.g. AAPL, BTC/USD, EUR/USD)")
	backtestCmd.Flags().StringVar(&btMode, "mode", "long_only", "trading mode (long_only, long_short)")
	backtestCmd.Flags().Float64VarP(&btBalance, "balance", "b", 10_000, "starting cash balance")
	backtestCmd.Flags().Float64Var(&btPosPct, "position-pct", 100, "percent of cash committed per open")
	backtestCmd.Flags().Float64Var(&btSpreadPips, "spread-pips", 0, "forex spread in pips (ignored for non-forex)")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "moving_average", "strategy name (moving_average, mean_reversion, rsi, macd)")
	backtestCmd.Flags().StringVar(&btExportPath, "export", "", "write the trade log to this CSV path")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	sc := config.StrategyConfig{Name: btStrategy}
	jc := config.JournalConfig{}
	csvPath := btCSVPath
	symbol := btSymbol
	mode := engine.Mode(btMode)
	balance := btBalance
	posPct := btPosPct
	spreadPips := btSpreadPips

	// A config file supplies everything the flags did not.
	if cfgPath != "" {
		cfg, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return err
		}
		sc = cfg.Strategy
		if btStrategy != "moving_average" {
			sc = config.StrategyConfig{Name: btStrategy}
		}
		if csvPath == "" {
			csvPath = cfg.Data.CSVPath
		}
		if symbol == "" {
			symbol = cfg.Trading.Symbol
		}
		if !cmd.Flags().Changed("mode") {
			mode = cfg.Mode()
		}
		if !cmd.Flags().Changed("balance") {
			balance = cfg.Trading.InitialBalance
		}
		if !cmd.Flags().Changed("position-pct") {
			posPct = cfg.Trading.PositionPct
		}
		if !cmd.Flags().Changed("spread-pips") {
			spreadPips = cfg.Trading.SpreadPips
		}
		jc = cfg.Journal
	}

	if csvPath == "" {
		return fmt.Errorf("a bar CSV is required (--csv or data.csv_path in the config)")
	}
	if symbol == "" {
		return fmt.Errorf("a symbol is required (--symbol or trading.symbol in the config)")
	}

	bars, err := csvfile.Load(csvPath)
	if err != nil {
		return err
	}

	strat, err := buildStrategy(sc)
	if err != nil {
		return err
	}

	rows, err := strat.GenerateSignals(bars)
	if err != nil {
		return fmt.Errorf("generate signals: %w", err)
	}

	runner, err := backtest.New(backtest.Config{
		Symbol:         symbol,
		InitialBalance: balance,
		Mode:           mode,
		PositionPct:    posPct,
		SpreadPips:     spreadPips,
	})
	if err != nil {
		return err
	}

	records, err := runner.Run(rows)
	if err != nil {
		return err
	}

	if jc.Type != "" && jc.Type != "none" {
		jnl, err := buildJournal(jc)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := jnl.RecordTrade(rec); err != nil {
				jnl.Close()
				return fmt.Errorf("journal: %w", err)
			}
		}
		if err := jnl.Close(); err != nil {
			return err
		}
	}

	fmt.Printf("Backtest: %s, %d bars, strategy %s\n\n", symbol, len(bars), strat.Name())
	fmt.Println(backtest.Analyze(symbol, balance, records))

	if btExportPath != "" {
		if err := ledger.ExportCSV(btExportPath, records); err != nil {
			return fmt.Errorf("export trades: %w", err)
		}
		fmt.Printf("Trade log written to %s\n", btExportPath)
	}
	return nil
}
