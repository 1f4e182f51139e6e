package service

import (
	"fmt"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"
)

// Params — фиксированный набор параметров скоринга.
type Params struct {
	Threshold       int
	ConfidenceFloor float64
}

func DefaultParams() Params {
	return Params{Threshold: 5, ConfidenceFloor: 55}
}

var mtfWeights = map[models.Recommendation]int{
	models.RecommendationStrongBuy:  4,
	models.RecommendationBuy:        3,
	models.RecommendationHold:       1,
	models.RecommendationSell:       0,
	models.RecommendationStrongSell: 0,
}

// контрарно: страх рынка даёт плюс
var sentimentWeights = map[models.SentimentLabel]int{
	models.SentimentExtremeFear:  3,
	models.SentimentFear:         2,
	models.SentimentNeutral:      1,
	models.SentimentGreed:        0,
	models.SentimentExtremeGreed: -1,
}

type Scorer struct {
	params Params
}

func NewScorer(cfg *config.Config) *Scorer {
	p := DefaultParams()
	if cfg.Strategy.Threshold > 0 {
		p.Threshold = cfg.Strategy.Threshold
	}
	if cfg.Strategy.ConfidenceFloor > 0 {
		p.ConfidenceFloor = cfg.Strategy.ConfidenceFloor
	}
	return &Scorer{params: p}
}

func (s *Scorer) Params() Params { return s.params }

func (s *Scorer) Score(mtf models.AlignmentResult, ai models.AISuggestion, sent models.SentimentReading, regime models.Regime) models.ScoreResult {
	return Score(s.params, mtf, ai, sent, regime)
}

// Score — чистая функция: сначала вето, затем сумма весов. RegimeUnknown не влияет.
func Score(p Params, mtf models.AlignmentResult, ai models.AISuggestion, sent models.SentimentReading, regime models.Regime) models.ScoreResult {
	if reason, vetoed := veto(p, mtf, ai, regime); vetoed {
		return models.ScoreResult{ShouldTrade: false, Score: 0, Reasons: []string{reason}}
	}

	score := 0
	reasons := make([]string, 0, 5)
	add := func(points int, format string, args ...any) {
		score += points
		reasons = append(reasons, fmt.Sprintf("%s: %+d", fmt.Sprintf(format, args...), points))
	}

	add(mtfWeights[mtf.Recommendation], "mtf %s (%d/6)", mtf.Recommendation, mtf.Score)
	add(aiPoints(ai), "ai %s %.0f%%", ai.Action, ai.Confidence)
	add(sentimentWeights[sent.Label], "sentiment %s (%d)", sent.Label, sent.Value)
	if regime == models.RegimeBull && ai.Action == models.ActionBuy {
		add(1, "regime BULL aligned with ai BUY")
	}

	should := score >= p.Threshold
	verdict := "below"
	if should {
		verdict = "meets"
	}
	reasons = append(reasons, fmt.Sprintf("total %d %s threshold %d", score, verdict, p.Threshold))

	return models.ScoreResult{ShouldTrade: should, Score: score, Reasons: reasons}
}

func veto(p Params, mtf models.AlignmentResult, ai models.AISuggestion, regime models.Regime) (string, bool) {
	switch {
	case regime == models.RegimeBear:
		return "veto: global regime BEAR", true
	case mtf.Recommendation == models.RecommendationStrongSell || mtf.Recommendation == models.RecommendationSell:
		return fmt.Sprintf("veto: mtf %s (%d/6)", mtf.Recommendation, mtf.Score), true
	case ai.Confidence < p.ConfidenceFloor:
		return fmt.Sprintf("veto: ai confidence %.0f%% below %.0f%%", ai.Confidence, p.ConfidenceFloor), true
	}
	return "", false
}

func aiPoints(ai models.AISuggestion) int {
	switch ai.Action {
	case models.ActionBuy:
		switch {
		case ai.Confidence >= 80:
			return 3
		case ai.Confidence >= 65:
			return 2
		default:
			return 1
		}
	case models.ActionSell:
		return -1
	default:
		return 0
	}
}
