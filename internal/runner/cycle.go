package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Regasking/trade-bot/internal/helper"
	"github.com/Regasking/trade-bot/internal/models"
	positions "github.com/Regasking/trade-bot/internal/modules/positions/service"
	quantizer "github.com/Regasking/trade-bot/internal/modules/quantizer/service"
	strategy "github.com/Regasking/trade-bot/internal/modules/strategy/service"
	"github.com/Regasking/trade-bot/pkg/logger"
	"github.com/Regasking/trade-bot/pkg/tracing"

	"github.com/pkg/errors"
)

// RunCycle — один проход по всем символам.
func (r *Runner) RunCycle(ctx context.Context) error {
	span, ctx := tracing.StartSpan(ctx, "runner.cycle")
	defer span.Finish()

	logger.Info("[CYCLE] === new cycle ===")

	balance, err := r.Exchange.GetBalance(ctx, r.opts.QuoteAsset)
	if err != nil {
		logger.Warn("[CYCLE] balance: %v", err)
		balance = 0
	}
	logger.Info("[CYCLE] balance %.2f %s", balance, r.opts.QuoteAsset)

	r.Positions.MonitorAll(ctx)

	sent := r.Analyzer.Sentiment(ctx)
	evaluated := 0
	for _, symbol := range r.opts.Symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Positions.Has(symbol) {
			logger.Info("[CYCLE] %s: position open, skip", symbol)
			continue
		}
		if evaluated > 0 && !helper.Sleep(ctx, r.opts.SymbolDelay) {
			return ctx.Err()
		}
		evaluated++
		r.evaluate(ctx, symbol, balance, sent)
	}

	r.CycleSummary(ctx, balance)
	if r.Health != nil {
		r.Health.TouchCycle(r.now(), r.Positions.Count())
	}
	return nil
}

func (r *Runner) evaluate(ctx context.Context, symbol string, balance float64, sent models.SentimentReading) {
	span, ctx := tracing.StartSpan(ctx, "runner.symbol", "symbol", symbol)
	defer span.Finish()

	price, err := r.Exchange.GetCurrentPrice(ctx, symbol)
	if err != nil || price <= 0 {
		logger.Warn("[CYCLE] %s: no price: %v", symbol, err)
		return
	}

	snap, err := r.Analyzer.Snapshot(ctx, symbol, price)
	if err != nil {
		logger.Warn("[CYCLE] %s: snapshot: %v", symbol, err)
		return
	}
	snap.Balance = balance
	snap.MaxRiskPercent = r.opts.MaxRiskPercent
	snap.MaxRiskUSD = balance * r.opts.MaxRiskPercent / 100
	snap.StopLossPercent = r.opts.StopLossPercent

	ai := r.Advisor.Suggest(ctx, snap)
	mtf := r.Analyzer.MultiTimeframe(ctx, symbol)
	regime := r.Analyzer.GlobalRegime(ctx, symbol)

	if r.opts.MarketFilter {
		var filtered bool
		if ai, filtered = strategy.FilterByRegime(ai, regime); filtered {
			logger.Info("[CYCLE] %s: %s", symbol, ai.Reasoning)
		}
	}

	res := r.Scorer.Score(mtf, ai, sent, regime)
	logger.Info("[CYCLE] %s: ai=%s %.0f%% mtf=%s regime=%s score=%d trade=%v | %s",
		symbol, ai.Action, ai.Confidence, mtf.Recommendation, regimeName(regime), res.Score, res.ShouldTrade,
		strings.Join(res.Reasons, "; "))

	if !res.ShouldTrade || ai.Action != models.ActionBuy {
		r.notify(ctx, models.SeverityInfo, fmt.Sprintf("⏸️ %s: HOLD", symbol), fmt.Sprintf(
			"AI: %s (уверенность %.0f%%)\nScore: %d\n%s",
			ai.Action, ai.Confidence, res.Score, strings.Join(res.Reasons, "\n")))
		return
	}

	if _, err := r.Positions.Open(ctx, symbol, ai, regime); err != nil {
		tracing.Fail(span, err)
		logger.Warn("[CYCLE] %s: open: %v", symbol, err)
		if !expectedReject(err) {
			r.notify(ctx, models.SeverityDanger, "❌ Ошибка открытия", fmt.Sprintf("%s: %v", symbol, err))
		}
	}
}

var expectedRejects = []error{
	positions.ErrMaxPositions,
	positions.ErrPositionExists,
	positions.ErrLowConfidence,
	positions.ErrSizeTooSmall,
	quantizer.ErrRulesUnavailable,
}

// expectedReject — отказ уже отправлен менеджером позиций или достаточно лога.
func expectedReject(err error) bool {
	for _, target := range expectedRejects {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func regimeName(r models.Regime) string {
	if r == models.RegimeUnknown {
		return "UNKNOWN"
	}
	return string(r)
}
