package cmd

import (
	"context"
	"fmt"

	"github.com/battrading/bat/broker"
	brokeralpaca "github.com/battrading/bat/broker/alpaca"
	"github.com/battrading/bat/broker/sim"
	"github.com/battrading/bat/config"
	dataalpaca "github.com/battrading/bat/data/alpaca"
	"github.com/battrading/bat/data/csvfile"
	"github.com/battrading/bat/data/synth"
	"github.com/battrading/bat/journal"
	"github.com/battrading/bat/live"
	"github.com/battrading/bat/market"
	"github.com/battrading/bat/strategies"
)

// buildStrategy instantiates the configured strategy, letting zero
// values fall through to each strategy's defaults.
func buildStrategy(sc config.StrategyConfig) (strategies.Strategy, error) {
	switch sc.Name {
	case "moving_average", "ma":
		return strategies.NewMovingAverage(sc.ShortWindow, sc.MediumWindow, sc.LongWindow), nil
	case "mean_reversion", "bollinger":
		return strategies.NewMeanReversion(sc.Window, sc.NumStd), nil
	case "rsi":
		return strategies.NewRSI(sc.Window, sc.Oversold, sc.Overbought), nil
	case "macd":
		return strategies.NewMACD(sc.Fast, sc.Slow, sc.Signal), nil
	default:
		return strategies.ByName(sc.Name)
	}
}

func buildProvider(cfg *config.Config, creds config.Credentials) (live.Provider, error) {
	switch cfg.Data.Source {
	case "csv":
		return csvfile.NewProvider(cfg.Data.CSVPath)
	case "alpaca":
		if creds.APIKey == "" || creds.SecretKey == "" {
			return nil, fmt.Errorf("alpaca data source needs ALPACA_API_KEY and ALPACA_SECRET_KEY")
		}
		return dataalpaca.NewClient(creds.APIKey, creds.SecretKey), nil
	case "synth":
		return synth.NewClient(cfg.Data.SynthURL, creds.SynthKey)
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func buildJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(jc.CSVPath)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

// simFeed wraps a provider so every poll also pushes the latest close
// into the simulated broker, keeping its fills current.
type simFeed struct {
	live.Provider
	engine *sim.Engine
}

func (f simFeed) GetLiveData(ctx context.Context, ticker string, lookback int) ([]market.Bar, error) {
	bars, err := f.Provider.GetLiveData(ctx, ticker, lookback)
	if err == nil && len(bars) > 0 {
		f.engine.SetPrice(ticker, bars[len(bars)-1].Close)
	}
	return bars, err
}

// buildGateway returns the broker and, for the sim kind, a provider
// wrapper that feeds it prices.
func buildGateway(cfg *config.Config, creds config.Credentials, provider live.Provider) (broker.Gateway, live.Provider, error) {
	switch cfg.Broker.Kind {
	case "sim":
		engine := sim.NewEngine(cfg.Trading.InitialBalance)
		return engine, simFeed{Provider: provider, engine: engine}, nil
	case "alpaca":
		if creds.APIKey == "" || creds.SecretKey == "" {
			return nil, nil, fmt.Errorf("alpaca broker needs ALPACA_API_KEY and ALPACA_SECRET_KEY")
		}
		base, err := brokeralpaca.BaseURL(cfg.Broker.Env)
		if err != nil {
			return nil, nil, err
		}
		client, err := brokeralpaca.NewClient(base, creds.APIKey, creds.SecretKey)
		if err != nil {
			return nil, nil, err
		}
		return client, provider, nil
	default:
		return nil, nil, fmt.Errorf("unknown broker kind %q", cfg.Broker.Kind)
	}
}
