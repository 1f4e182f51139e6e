package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"
	quantizer "github.com/Regasking/trade-bot/internal/modules/quantizer/service"

	"github.com/pkg/errors"
)

var (
	ErrMaxPositions   = errors.New("max open positions reached")
	ErrPositionExists = errors.New("position already open")
	ErrLowConfidence  = errors.New("ai confidence too low for sizing")
	ErrSizeTooSmall   = errors.New("position size below minimum")
	ErrNoPosition     = errors.New("no open position")
)

// Exchange — то, что менеджеру нужно от биржи.
type Exchange interface {
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	GetBalance(ctx context.Context, asset string) (float64, error)
	PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Order, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error)
	CancelOrder(ctx context.Context, symbol, orderID string) error
}

type Quantizer interface {
	AdjustQuantity(ctx context.Context, symbol string, rawQty float64) (float64, error)
	AdjustPrice(ctx context.Context, symbol string, price float64) (float64, error)
	EnsureMinNotional(ctx context.Context, symbol string, qty, price float64) (quantizer.NotionalResult, error)
}

type TargetSource interface {
	DynamicTargets(ctx context.Context, symbol string, entry float64) models.VolatilityTargets
}

type Notifier interface {
	Notify(ctx context.Context, msg models.Message)
}

type Options struct {
	Mode            config.Mode
	QuoteAsset      string
	MaxPositions    int
	MinPositionUSD  float64
	MaxRiskPercent  float64 // basic
	StopLossPercent float64 // basic

	TrailActivation float64
	TrailPercent    float64

	PyramidActivation float64
	PyramidMaxAdds    int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:              cfg.Trading.Mode,
		QuoteAsset:        cfg.Trading.QuoteAsset,
		MaxPositions:      cfg.Trading.MaxPositions,
		MinPositionUSD:    cfg.Trading.MinPositionUSD,
		MaxRiskPercent:    cfg.Trading.MaxRiskPercent,
		StopLossPercent:   cfg.Trading.StopLossPercent,
		TrailActivation:   cfg.Trailing.ActivationPercent,
		TrailPercent:      cfg.Trailing.TrailPercent,
		PyramidActivation: cfg.Pyramid.ActivationPercent,
		PyramidMaxAdds:    cfg.Pyramid.MaxAdds,
	}
}

// Manager владеет открытыми позициями и дневной статистикой.
type Manager struct {
	opts     Options
	exchange Exchange
	quant    Quantizer
	targets  TargetSource
	notifier Notifier
	now      func() time.Time

	mu        sync.Mutex
	positions map[string]*models.Position
	stats     models.DailyStats
}

func NewManager(cfg *config.Config, ex Exchange, q Quantizer, t TargetSource, n Notifier) *Manager {
	return New(OptionsFromConfig(cfg), ex, q, t, n)
}

func New(o Options, ex Exchange, q Quantizer, t TargetSource, n Notifier) *Manager {
	if o.QuoteAsset == "" {
		o.QuoteAsset = "USDT"
	}
	if o.PyramidMaxAdds > len(pyramidFractions) || o.PyramidMaxAdds < 0 {
		o.PyramidMaxAdds = len(pyramidFractions)
	}
	return &Manager{
		opts:      o,
		exchange:  ex,
		quant:     q,
		targets:   t,
		notifier:  n,
		now:       time.Now,
		positions: make(map[string]*models.Position),
	}
}

func (m *Manager) Advanced() bool { return m.opts.Mode != config.ModeBasic }

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.positions)
}

func (m *Manager) Has(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.positions[symbol]
	return ok
}

// Positions — копии открытых позиций по символу.
func (m *Manager) Positions() []models.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (m *Manager) Position(symbol string) (models.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[symbol]
	if !ok {
		return models.Position{}, false
	}
	return *p, true
}

func (m *Manager) Stats() models.DailyStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// ResetStats обнуляет дневную статистику и возвращает накопленную.
func (m *Manager) ResetStats() models.DailyStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.stats
	m.stats = models.DailyStats{}
	return prev
}

func (m *Manager) store(p models.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.Symbol] = &p
}

func (m *Manager) update(p models.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.positions[p.Symbol]; ok {
		p.Updated = m.now()
		m.positions[p.Symbol] = &p
	}
}

// finish удаляет позицию и учитывает сделку. false, если позицию уже закрыли.
func (m *Manager) finish(t models.ClosedTrade) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.positions[t.Symbol]; !ok {
		return false
	}
	delete(m.positions, t.Symbol)

	m.stats.Trades++
	if t.PnL > 0 {
		m.stats.Wins++
	} else {
		m.stats.Losses++
	}
	m.stats.RealizedProfit += t.PnL
	return true
}

func (m *Manager) notify(ctx context.Context, sev models.Severity, title, text string) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(ctx, models.Message{Title: title, Text: text, Severity: sev})
}
