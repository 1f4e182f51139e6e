package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testOptions() Options {
	return Options{
		Mode:              config.ModeAdvanced,
		QuoteAsset:        "USDT",
		MaxPositions:      2,
		MinPositionUSD:    10,
		MaxRiskPercent:    2,
		StopLossPercent:   3,
		TrailActivation:   2,
		TrailPercent:      2,
		PyramidActivation: 3,
		PyramidMaxAdds:    2,
	}
}

func newTestManager(o Options) (*Manager, *fakeExchange, *recordingNotifier) {
	ex := newFakeExchange()
	n := &recordingNotifier{}
	return New(o, ex, fakeQuantizer{rules: btcRules}, fixedTargets{}, n), ex, n
}

func buySignal(conf float64) models.AISuggestion {
	return models.AISuggestion{Action: models.ActionBuy, Confidence: conf}
}

func TestOpenAdvanced(t *testing.T) {
	m, ex, n := newTestManager(testOptions())

	pos, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	// 10000 * 3% * 1.2 = 360$ -> 3.6 BTC по 100
	assert.Equal(t, 3.6, pos.Quantity)
	assert.Equal(t, 3.6, pos.OriginalQuantity)
	assert.InDelta(t, 360, pos.OriginalNotional, 1e-9)
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, 97.0, pos.StopLoss)
	assert.Equal(t, 106.0, pos.TakeProfit)
	assert.Zero(t, pos.PyramidCount)
	assert.NotEmpty(t, pos.StopOrderID)

	stops := ex.ordersOf(models.OrderStopLossLimit, models.SideSell)
	require.Len(t, stops, 1)
	assert.Equal(t, 97.0, stops[0].StopPrice)
	assert.Equal(t, 96.51, stops[0].Price)
	assert.Equal(t, 3.6, stops[0].Quantity)
	assert.LessOrEqual(t, len(stops[0].ClientOrderID), 36)

	assert.Equal(t, 1, m.Count())
	assert.Contains(t, n.titles(), "🟢 Позиция открыта")
}

func TestOpenRejections(t *testing.T) {
	t.Run("low confidence", func(t *testing.T) {
		m, _, _ := newTestManager(testOptions())
		_, err := m.Open(context.Background(), "BTCUSDT", buySignal(49), models.RegimeBull)
		assert.True(t, errors.Is(err, ErrLowConfidence))
	})

	t.Run("size too small", func(t *testing.T) {
		m, ex, _ := newTestManager(testOptions())
		ex.balance = 100
		// 100 * 1.5% * 0.8 = 1.2$
		_, err := m.Open(context.Background(), "BTCUSDT", buySignal(55), models.RegimeSideways)
		assert.True(t, errors.Is(err, ErrSizeTooSmall))
		assert.Empty(t, ex.placed)
	})

	t.Run("already open", func(t *testing.T) {
		m, _, _ := newTestManager(testOptions())
		_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
		require.NoError(t, err)
		_, err = m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
		assert.True(t, errors.Is(err, ErrPositionExists))
	})

	t.Run("capacity", func(t *testing.T) {
		o := testOptions()
		o.MaxPositions = 1
		m, ex, n := newTestManager(o)
		ex.setPrice("ETHUSDT", 100)

		_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
		require.NoError(t, err)
		_, err = m.Open(context.Background(), "ETHUSDT", buySignal(95), models.RegimeBull)
		assert.True(t, errors.Is(err, ErrMaxPositions))
		assert.Equal(t, 1, m.Count())
		assert.Contains(t, n.titles(), "⚠️ Лимит позиций")
	})
}

func TestOpenRaisesToMinNotional(t *testing.T) {
	m, ex, _ := newTestManager(testOptions())
	ex.balance = 300
	// 10.8$ по 9800 -> 0.001 (9.8$ < 10$) -> 0.002
	ex.setPrice("BTCUSDT", 9800)

	pos, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)
	assert.Equal(t, 0.002, pos.Quantity)
}

func TestTrailingScenario(t *testing.T) {
	o := testOptions()
	o.PyramidActivation = 50
	m, ex, n := newTestManager(o)

	pos, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)
	firstStop := pos.StopOrderID

	ex.setPrice("BTCUSDT", 103)
	assert.Empty(t, m.MonitorAll(context.Background()))

	got, ok := m.Position("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 100.94, got.StopLoss)
	assert.True(t, got.Trailing)
	assert.NotEqual(t, firstStop, got.StopOrderID)
	assert.Contains(t, ex.cancels, firstStop)

	stops := ex.ordersOf(models.OrderStopLossLimit, models.SideSell)
	require.Len(t, stops, 2)
	assert.Equal(t, 100.94, stops[1].StopPrice)
	assert.Contains(t, n.titles(), "🛡 Трейлинг-стоп")
}

func TestTrailingStopNeverDecreases(t *testing.T) {
	o := testOptions()
	o.PyramidActivation = 50
	m, ex, _ := newTestManager(o)

	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	prev := 97.0
	for _, px := range []float64{101, 103, 102, 104, 103.5, 105, 104.2, 105.5} {
		ex.setPrice("BTCUSDT", px)
		m.MonitorAll(context.Background())

		p, ok := m.Position("BTCUSDT")
		require.True(t, ok, "closed at %v", px)
		assert.GreaterOrEqual(t, p.StopLoss, prev, "price %v", px)
		prev = p.StopLoss
	}
	assert.Equal(t, 103.39, prev)
}

func TestPyramiding(t *testing.T) {
	m, ex, n := newTestManager(testOptions())

	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	// +4%: трейлинг и первая доливка 180$ -> 1.731
	ex.setPrice("BTCUSDT", 104)
	m.MonitorAll(context.Background())

	p, _ := m.Position("BTCUSDT")
	assert.Equal(t, 1, p.PyramidCount)
	assert.Equal(t, 5.331, p.Quantity)
	wantEntry := (100*3.6 + 104*1.731) / (3.6 + 1.731)
	assert.InDelta(t, wantEntry, p.EntryPrice, 1e-9)
	assert.Equal(t, 101.92, p.StopLoss)
	assert.Equal(t, 3.6, p.OriginalQuantity)

	// вторая доливка 90$ -> 0.857
	ex.setPrice("BTCUSDT", 105)
	m.MonitorAll(context.Background())
	p, _ = m.Position("BTCUSDT")
	assert.Equal(t, 2, p.PyramidCount)
	assert.Equal(t, 6.188, p.Quantity)
	wantEntry = (wantEntry*5.331 + 105*0.857) / (5.331 + 0.857)
	assert.InDelta(t, wantEntry, p.EntryPrice, 1e-9)

	// дальше только трейлинг
	for _, px := range []float64{107, 107.5} {
		ex.setPrice("BTCUSDT", px)
		m.MonitorAll(context.Background())
	}
	p, ok := m.Position("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 2, p.PyramidCount)
	assert.Len(t, ex.ordersOf(models.OrderMarket, models.SideBuy), 3)

	// последний защитный ордер на весь объём
	stops := ex.ordersOf(models.OrderStopLossLimit, models.SideSell)
	assert.Equal(t, p.Quantity, stops[len(stops)-1].Quantity)

	var adds int
	for _, title := range n.titles() {
		if title == "🔺 Пирамидинг" {
			adds++
		}
	}
	assert.Equal(t, 2, adds)
}

func TestReconcileTakesPrecedence(t *testing.T) {
	m, ex, n := newTestManager(testOptions())
	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	ex.setPrice("BTCUSDT", 90)
	ex.fillStops()

	closed := m.MonitorAll(context.Background())
	require.Len(t, closed, 1)
	assert.True(t, closed[0].Reconcile)
	assert.Equal(t, models.CloseStopLoss, closed[0].Reason)
	assert.Equal(t, 97.0, closed[0].Exit)
	assert.InDelta(t, -10.8, closed[0].PnL, 1e-9)

	// ручной продажи не было
	assert.Empty(t, ex.ordersOf(models.OrderMarket, models.SideSell))
	assert.Zero(t, m.Count())

	st := m.Stats()
	assert.Equal(t, 1, st.Trades)
	assert.Equal(t, 1, st.Losses)
	assert.InDelta(t, -10.8, st.RealizedProfit, 1e-9)
	assert.Contains(t, n.titles(), "🔴 Позиция закрыта")

	// повторный проход ничего не закрывает
	assert.Empty(t, m.MonitorAll(context.Background()))
	assert.Equal(t, 1, m.Stats().Trades)
}

func TestReconcileTakeProfit(t *testing.T) {
	m, ex, _ := newTestManager(testOptions())
	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	ex.setPrice("BTCUSDT", 107)
	ex.fillStops()

	closed := m.MonitorAll(context.Background())
	require.Len(t, closed, 1)
	assert.Equal(t, models.CloseTakeProfit, closed[0].Reason)
	assert.Equal(t, 107.0, closed[0].Exit)
	assert.Equal(t, 1, m.Stats().Wins)
}

func TestManualStopLossClose(t *testing.T) {
	m, ex, _ := newTestManager(testOptions())
	pos, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	ex.setPrice("BTCUSDT", 96)
	closed := m.MonitorAll(context.Background())
	require.Len(t, closed, 1)
	assert.False(t, closed[0].Reconcile)
	assert.Equal(t, models.CloseStopLoss, closed[0].Reason)
	assert.Equal(t, 96.0, closed[0].Exit)

	assert.Contains(t, ex.cancels, pos.StopOrderID)
	sells := ex.ordersOf(models.OrderMarket, models.SideSell)
	require.Len(t, sells, 1)
	assert.Equal(t, 3.6, sells[0].Quantity)
}

func TestOpenOrdersFailureFallsBackToThresholds(t *testing.T) {
	m, ex, _ := newTestManager(testOptions())
	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	ex.failOrders = true
	ex.setPrice("BTCUSDT", 106.5)
	closed := m.MonitorAll(context.Background())
	require.Len(t, closed, 1)
	assert.Equal(t, models.CloseTakeProfit, closed[0].Reason)
	assert.False(t, closed[0].Reconcile)
}

func TestCloseFailureKeepsPosition(t *testing.T) {
	m, ex, n := newTestManager(testOptions())
	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	ex.failSell = true
	_, err = m.Close(context.Background(), "BTCUSDT", models.CloseStopLoss)
	require.Error(t, err)

	p, ok := m.Position("BTCUSDT")
	require.True(t, ok)
	assert.NotEmpty(t, p.StopOrderID)
	assert.Zero(t, m.Stats().Trades)
	assert.Contains(t, n.titles(), "❌ Ошибка закрытия")
}

func TestCloseAndResetStats(t *testing.T) {
	m, ex, _ := newTestManager(testOptions())
	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)

	ex.setPrice("BTCUSDT", 102)
	tr, err := m.Close(context.Background(), "BTCUSDT", models.CloseTakeProfit)
	require.NoError(t, err)
	assert.InDelta(t, 7.2, tr.PnL, 1e-9)

	_, err = m.Close(context.Background(), "BTCUSDT", models.CloseTakeProfit)
	assert.True(t, errors.Is(err, ErrNoPosition))

	prev := m.ResetStats()
	assert.Equal(t, 1, prev.Trades)
	assert.Equal(t, 1, prev.Wins)
	assert.Equal(t, 100.0, prev.WinRate())
	assert.Equal(t, models.DailyStats{}, m.Stats())
}

func TestBasicMode(t *testing.T) {
	o := testOptions()
	o.Mode = config.ModeBasic
	m, ex, _ := newTestManager(o)

	ai := models.AISuggestion{Action: models.ActionBuy, Confidence: 40, StopLoss: 95, TakeProfit: 110, PositionSizeUSD: 150}
	pos, err := m.Open(context.Background(), "BTCUSDT", ai, models.RegimeUnknown)
	require.NoError(t, err)
	assert.Equal(t, 1.5, pos.Quantity)
	assert.Equal(t, 95.0, pos.StopLoss)
	assert.Equal(t, 110.0, pos.TakeProfit)

	// без трейлинга и доливок
	ex.setPrice("BTCUSDT", 108)
	m.MonitorAll(context.Background())
	p, _ := m.Position("BTCUSDT")
	assert.Equal(t, 95.0, p.StopLoss)
	assert.Zero(t, p.PyramidCount)
}

func TestSizingTables(t *testing.T) {
	assert.Equal(t, 3.0, RiskPercent(80))
	assert.Equal(t, 2.5, RiskPercent(79.9))
	assert.Equal(t, 2.0, RiskPercent(60))
	assert.Equal(t, 1.5, RiskPercent(50))
	assert.Zero(t, RiskPercent(49.9))

	assert.Equal(t, 1.2, RegimeMultiplier(models.RegimeBull))
	assert.Equal(t, 0.5, RegimeMultiplier(models.RegimeBear))
	assert.Equal(t, 0.8, RegimeMultiplier(models.RegimeSideways))
	assert.Equal(t, 0.8, RegimeMultiplier(models.RegimeUnknown))

	assert.Equal(t, 200.0, BasicSizeUSD(10000, 0, 2))
	assert.Equal(t, 150.0, BasicSizeUSD(10000, 150, 2))
	assert.Equal(t, 200.0, BasicSizeUSD(10000, 500, 2))

	stop, take := BasicTargets(100, models.AISuggestion{StopLoss: 101, TakeProfit: 110}, 3)
	assert.InDelta(t, 97, stop, 1e-9)
	assert.InDelta(t, 106, take, 1e-9)
}

func TestPyramidAddUSD(t *testing.T) {
	p := models.Position{OriginalNotional: 400}
	assert.Equal(t, 200.0, PyramidAddUSD(p))
	p.PyramidCount = 1
	assert.Equal(t, 100.0, PyramidAddUSD(p))
	p.PyramidCount = 2
	assert.Zero(t, PyramidAddUSD(p))

	assert.Equal(t, 102.0, WeightedEntry(100, 1, 106, 0.5))
	assert.Equal(t, 100.0, WeightedEntry(100, 0, 0, 0))
}

func TestTrailCandidate(t *testing.T) {
	p := models.Position{EntryPrice: 100, StopLoss: 98}

	c, ok := TrailCandidate(p, 103, 2, 2)
	require.True(t, ok)
	assert.InDelta(t, 100.94, c, 1e-9)

	_, ok = TrailCandidate(p, 101.5, 2, 2)
	assert.False(t, ok, "profit must exceed activation")

	p.StopLoss = 101
	_, ok = TrailCandidate(p, 103, 2, 2)
	assert.False(t, ok, "candidate below current stop")
}

func onStep(v, step float64) bool {
	d := decimal.NewFromFloat(v).Div(decimal.NewFromFloat(step))
	return d.Equal(d.Floor())
}

func TestPyramidQuantityStaysOnStep(t *testing.T) {
	for _, start := range []float64{100, 103.7, 98.3, 250, 61.2} {
		m, ex, _ := newTestManager(testOptions())
		ex.setPrice("BTCUSDT", start)
		_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
		require.NoError(t, err, "start %v", start)

		for _, gain := range []float64{1.04, 1.05} {
			ex.setPrice("BTCUSDT", start*gain)
			m.MonitorAll(context.Background())
		}

		p, ok := m.Position("BTCUSDT")
		require.True(t, ok, "start %v", start)
		require.Equal(t, 2, p.PyramidCount, "start %v", start)
		assert.True(t, onStep(p.Quantity, btcRules.StepSize), "start %v qty %v", start, p.Quantity)

		stops := ex.ordersOf(models.OrderStopLossLimit, models.SideSell)
		last := stops[len(stops)-1]
		assert.Equal(t, p.Quantity, last.Quantity, "start %v", start)
		assert.True(t, onStep(last.Quantity, btcRules.StepSize), "start %v wire %s", start, strconv.FormatFloat(last.Quantity, 'f', -1, 64))

		// закрытие продаёт ровно то, что держим
		ex.setPrice("BTCUSDT", start*0.9)
		closed := m.MonitorAll(context.Background())
		require.Len(t, closed, 1, "start %v", start)
		sells := ex.ordersOf(models.OrderMarket, models.SideSell)
		require.Len(t, sells, 1)
		assert.Equal(t, p.Quantity, sells[0].Quantity, "start %v", start)
	}
}

func TestAddQuantity(t *testing.T) {
	assert.Equal(t, 6.188, AddQuantity(AddQuantity(3.6, 1.731), 0.857))
	assert.Equal(t, 0.3, AddQuantity(0.1, 0.2))
}

func TestOpenAndCloseLogTypedFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.InfoLogger
	logger.InfoLogger = zap.New(core)
	t.Cleanup(func() { logger.InfoLogger = prev })

	m, _, _ := newTestManager(testOptions())
	_, err := m.Open(context.Background(), "BTCUSDT", buySignal(85), models.RegimeBull)
	require.NoError(t, err)
	_, err = m.Close(context.Background(), "BTCUSDT", models.CloseTakeProfit)
	require.NoError(t, err)

	opened := logs.FilterMessage("[POS] position opened").All()
	require.Len(t, opened, 1)
	assert.Equal(t, "BTCUSDT", opened[0].ContextMap()["symbol"])
	assert.Equal(t, 3.6, opened[0].ContextMap()["qty"])
	assert.NotEmpty(t, opened[0].ContextMap()["stop_order"])

	closed := logs.FilterMessage("[POS] position closed").All()
	require.Len(t, closed, 1)
	assert.Equal(t, string(models.CloseTakeProfit), closed[0].ContextMap()["reason"])
}
