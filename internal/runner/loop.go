package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Regasking/trade-bot/internal/helper"
	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/pkg/errors"
)

// Run крутит циклы до отмены ctx.
func (r *Runner) Run(ctx context.Context) {
	mode := "basic"
	if r.Positions.Advanced() {
		mode = "advanced"
	}
	logger.Info("[CYCLE] start: mode=%s symbols=%v interval=%s", mode, r.opts.Symbols, r.opts.CheckInterval)
	r.notify(ctx, models.SeverityInfo, "🤖 Бот запущен", fmt.Sprintf(
		"Режим: %s\nСимволы: %s\nИнтервал: %s\nМакс. позиций: %d",
		mode, strings.Join(r.opts.Symbols, ", "), r.opts.CheckInterval, r.opts.MaxPositions))

	r.lastReport = helper.DailyBoundary(r.now(), r.opts.ReportHour)

	for ctx.Err() == nil {
		if err := r.Step(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("[CYCLE] %v", err)
			r.notify(ctx, models.SeverityDanger, "❌ Ошибка", err.Error())
			if !helper.Sleep(ctx, r.opts.ErrorBackoff) {
				break
			}
			continue
		}

		logger.Info("[CYCLE] sleep %s", r.opts.CheckInterval)
		if !helper.Sleep(ctx, r.opts.CheckInterval) {
			break
		}
	}

	logger.Info("[CYCLE] stopped")
	r.notify(context.Background(), models.SeverityDanger, "⛔ Бот остановлен", "Остановка процесса")
}

// Step — дневной отчёт при пересечении границы и один цикл. Паника превращается в ошибку.
func (r *Runner) Step(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("panic in cycle: %v", rec)
		}
	}()

	if b := helper.DailyBoundary(r.now(), r.opts.ReportHour); b.After(r.lastReport) {
		r.DailyReport(ctx)
		r.lastReport = b
	}
	return r.RunCycle(ctx)
}
