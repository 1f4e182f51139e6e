package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
)

type RulesLoader interface {
	Rules(ctx context.Context, symbol string) (models.SymbolRules, error)
}

type Notifier interface {
	Notify(ctx context.Context, msg models.Message)
}

// Warmuper заранее подтягивает правила символов, чтобы первый ордер не ждал exchangeInfo.
type Warmuper struct {
	rules RulesLoader
	n     Notifier

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmuper(rules RulesLoader, n Notifier) *Warmuper {
	return &Warmuper{
		rules: rules,
		n:     n,
		sem:   make(chan struct{}, 4),
	}
}

// Warmup возвращает символы, для которых правила не загрузились.
func (w *Warmuper) Warmup(ctx context.Context, symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	for _, sym := range symbols {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case w.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-w.sem }()

			r, err := w.rules.Rules(ctx, sym)
			if err != nil {
				logger.Warn("[BOOT] %s rules: %v", sym, err)
				mu.Lock()
				failed = append(failed, sym)
				mu.Unlock()
				return
			}
			logger.Info("[BOOT] %s step=%v tick=%v minQty=%v minNotional=%v",
				sym, r.StepSize, r.TickSize, r.MinQty, r.MinNotional)
		}()
	}
	wg.Wait()
	sort.Strings(failed)

	if len(failed) > 0 && w.n != nil {
		w.n.Notify(ctx, models.Message{
			Title:    "⚠️ Правила символов",
			Text:     fmt.Sprintf("Не удалось загрузить правила: %v. Ордера по ним будут пропускаться до восстановления.", failed),
			Severity: models.SeverityDanger,
		})
	}
	return failed
}
