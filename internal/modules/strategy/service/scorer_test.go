package service

import (
	"testing"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mtf(rec models.Recommendation, score int) models.AlignmentResult {
	return models.AlignmentResult{Recommendation: rec, Score: score}
}

func buy(conf float64) models.AISuggestion {
	return models.AISuggestion{Action: models.ActionBuy, Confidence: conf}
}

func sentiment(label models.SentimentLabel) models.SentimentReading {
	return models.SentimentReading{Label: label}
}

func TestScoreVetoes(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name   string
		mtf    models.AlignmentResult
		ai     models.AISuggestion
		regime models.Regime
		reason string
	}{
		{"bear regime", mtf(models.RecommendationStrongBuy, 6), buy(95), models.RegimeBear, "veto: global regime BEAR"},
		{"mtf sell", mtf(models.RecommendationSell, 2), buy(95), models.RegimeBull, "veto: mtf SELL (2/6)"},
		{"mtf strong sell", mtf(models.RecommendationStrongSell, 0), buy(95), models.RegimeUnknown, "veto: mtf STRONG_SELL (0/6)"},
		{"low confidence", mtf(models.RecommendationStrongBuy, 6), buy(54), models.RegimeBull, "veto: ai confidence 54% below 55%"},
		// режим проверяется первым
		{"bear wins over sell", mtf(models.RecommendationSell, 2), buy(10), models.RegimeBear, "veto: global regime BEAR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(p, tt.mtf, tt.ai, sentiment(models.SentimentExtremeFear), tt.regime)
			assert.False(t, res.ShouldTrade)
			assert.Zero(t, res.Score)
			assert.Equal(t, []string{tt.reason}, res.Reasons)
		})
	}
}

func TestScoreWeights(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name   string
		mtf    models.AlignmentResult
		ai     models.AISuggestion
		sent   models.SentimentLabel
		regime models.Regime
		score  int
		trade  bool
	}{
		{"max", mtf(models.RecommendationStrongBuy, 6), buy(85), models.SentimentExtremeFear, models.RegimeBull, 11, true},
		{"buy mid conf greed", mtf(models.RecommendationBuy, 3), buy(70), models.SentimentGreed, models.RegimeSideways, 5, true},
		{"hold low conf", mtf(models.RecommendationHold, 2), buy(60), models.SentimentNeutral, models.RegimeSideways, 3, false},
		{"ai sell", mtf(models.RecommendationBuy, 4), models.AISuggestion{Action: models.ActionSell, Confidence: 90}, models.SentimentFear, models.RegimeBull, 4, false},
		{"ai hold", mtf(models.RecommendationStrongBuy, 5), models.AISuggestion{Action: models.ActionHold, Confidence: 70}, models.SentimentExtremeGreed, models.RegimeUnknown, 3, false},
		{"unknown regime no bonus", mtf(models.RecommendationBuy, 3), buy(80), models.SentimentExtremeGreed, models.RegimeUnknown, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(p, tt.mtf, tt.ai, sentiment(tt.sent), tt.regime)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.trade, res.ShouldTrade)
		})
	}
}

func TestScoreReasonsAreOrdered(t *testing.T) {
	res := Score(DefaultParams(), mtf(models.RecommendationStrongBuy, 5), buy(82), sentiment(models.SentimentFear), models.RegimeBull)

	require.Len(t, res.Reasons, 5)
	assert.Equal(t, "mtf STRONG_BUY (5/6): +4", res.Reasons[0])
	assert.Equal(t, "ai BUY 82%: +3", res.Reasons[1])
	assert.Equal(t, "sentiment FEAR (0): +2", res.Reasons[2])
	assert.Equal(t, "regime BULL aligned with ai BUY: +1", res.Reasons[3])
	assert.Equal(t, "total 10 meets threshold 5", res.Reasons[4])
}

func TestScoreIsDeterministic(t *testing.T) {
	m := mtf(models.RecommendationBuy, 3)
	ai := buy(66)
	s := sentiment(models.SentimentNeutral)

	first := Score(DefaultParams(), m, ai, s, models.RegimeSideways)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Score(DefaultParams(), m, ai, s, models.RegimeSideways))
	}
}

func TestNewScorerParams(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy.Threshold = 7
	cfg.Strategy.ConfidenceFloor = 0

	s := NewScorer(&cfg)
	assert.Equal(t, Params{Threshold: 7, ConfidenceFloor: 55}, s.Params())

	res := s.Score(mtf(models.RecommendationBuy, 3), buy(70), sentiment(models.SentimentGreed), models.RegimeSideways)
	assert.Equal(t, 5, res.Score)
	assert.False(t, res.ShouldTrade)
}

func TestFilterByRegime(t *testing.T) {
	tests := []struct {
		name     string
		ai       models.AISuggestion
		regime   models.Regime
		filtered bool
	}{
		{"bear low", buy(79), models.RegimeBear, true},
		{"bear high", buy(80), models.RegimeBear, false},
		{"sideways low", buy(69), models.RegimeSideways, true},
		{"sideways high", buy(70), models.RegimeSideways, false},
		{"bull", buy(10), models.RegimeBull, false},
		{"unknown", buy(10), models.RegimeUnknown, false},
		{"not buy", models.AISuggestion{Action: models.ActionSell, Confidence: 10}, models.RegimeBear, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, filtered := FilterByRegime(tt.ai, tt.regime)
			assert.Equal(t, tt.filtered, filtered)
			if filtered {
				assert.Equal(t, models.ActionHold, out.Action)
				assert.Equal(t, tt.ai.Confidence, out.Confidence)
			} else {
				assert.Equal(t, tt.ai, out)
			}
		})
	}
}
