package runner

import (
	"context"
	"time"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"
)

type Exchange interface {
	GetBalance(ctx context.Context, asset string) (float64, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

type Analyzer interface {
	Snapshot(ctx context.Context, symbol string, price float64) (models.IndicatorSnapshot, error)
	MultiTimeframe(ctx context.Context, symbol string) models.AlignmentResult
	GlobalRegime(ctx context.Context, symbol string) models.Regime
	Sentiment(ctx context.Context) models.SentimentReading
}

type Advisor interface {
	Suggest(ctx context.Context, snap models.IndicatorSnapshot) models.AISuggestion
}

type Scorer interface {
	Score(mtf models.AlignmentResult, ai models.AISuggestion, sent models.SentimentReading, regime models.Regime) models.ScoreResult
}

type Positions interface {
	MonitorAll(ctx context.Context) []models.ClosedTrade
	Open(ctx context.Context, symbol string, ai models.AISuggestion, regime models.Regime) (models.Position, error)
	Has(symbol string) bool
	Count() int
	Positions() []models.Position
	Stats() models.DailyStats
	ResetStats() models.DailyStats
	Advanced() bool
}

type Notifier interface {
	Notify(ctx context.Context, msg models.Message)
}

type Health interface {
	TouchCycle(t time.Time, openPositions int)
}

type Options struct {
	Symbols         []string
	QuoteAsset      string
	MaxPositions    int
	MaxRiskPercent  float64
	StopLossPercent float64
	CheckInterval   time.Duration
	SymbolDelay     time.Duration
	ErrorBackoff    time.Duration
	ReportHour      int
	MarketFilter    bool
}

func OptionsFromConfig(cfg *config.Config, symbols []string) Options {
	return Options{
		Symbols:         symbols,
		QuoteAsset:      cfg.Trading.QuoteAsset,
		MaxPositions:    cfg.Trading.MaxPositions,
		MaxRiskPercent:  cfg.Trading.MaxRiskPercent,
		StopLossPercent: cfg.Trading.StopLossPercent,
		CheckInterval:   cfg.Trading.CheckInterval,
		SymbolDelay:     cfg.Trading.SymbolDelay,
		ErrorBackoff:    cfg.Trading.ErrorBackoff,
		ReportHour:      cfg.Trading.ReportHour,
		MarketFilter:    cfg.Strategy.MarketFilter,
	}
}

type Deps struct {
	Exchange  Exchange
	Analyzer  Analyzer
	Advisor   Advisor
	Scorer    Scorer
	Positions Positions
	Notifier  Notifier
	Health    Health
}

// Runner — цикл: мониторинг позиций, оценка символов по очереди, сводка, сон.
type Runner struct {
	opts Options
	Deps
	now func() time.Time

	lastReport time.Time
}

func New(o Options, d Deps) *Runner {
	if o.QuoteAsset == "" {
		o.QuoteAsset = "USDT"
	}
	return &Runner{opts: o, Deps: d, now: time.Now}
}

func (r *Runner) notify(ctx context.Context, sev models.Severity, title, text string) {
	if r.Notifier == nil {
		return
	}
	r.Notifier.Notify(ctx, models.Message{Title: title, Text: text, Severity: sev})
}
