package service

import (
	"strings"

	"github.com/Regasking/trade-bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

var ErrInvalidSuggestion = errors.New("invalid ai suggestion")

type rawSuggestion struct {
	Action          *string  `json:"action"`
	Confidence      *float64 `json:"confidence"`
	EntryPrice      *float64 `json:"entry_price"`
	StopLoss        *float64 `json:"stop_loss"`
	TakeProfit      *float64 `json:"take_profit"`
	PositionSizeUSD *float64 `json:"position_size_usd"`
	Reasoning       string   `json:"reasoning"`
}

// stripFences убирает markdown-обёртку ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseSuggestion — разбор и проверка схемы. Любое нарушение -> ErrInvalidSuggestion.
func ParseSuggestion(content string) (models.AISuggestion, error) {
	var raw rawSuggestion
	if err := sonic.UnmarshalString(stripFences(content), &raw); err != nil {
		return models.AISuggestion{}, errors.Wrapf(ErrInvalidSuggestion, "decode: %v", err)
	}
	return validate(raw)
}

// Revalidate прогоняет уже разобранный ответ (например, из кэша) через те же проверки.
func Revalidate(s models.AISuggestion) (models.AISuggestion, error) {
	action := string(s.Action)
	return validate(rawSuggestion{
		Action:          &action,
		Confidence:      &s.Confidence,
		EntryPrice:      &s.EntryPrice,
		StopLoss:        &s.StopLoss,
		TakeProfit:      &s.TakeProfit,
		PositionSizeUSD: &s.PositionSizeUSD,
		Reasoning:       s.Reasoning,
	})
}

func validate(raw rawSuggestion) (models.AISuggestion, error) {
	if raw.Action == nil {
		return models.AISuggestion{}, errors.Wrap(ErrInvalidSuggestion, "action missing")
	}
	action := models.Action(strings.ToUpper(strings.TrimSpace(*raw.Action)))
	switch action {
	case models.ActionBuy, models.ActionSell, models.ActionHold:
	default:
		return models.AISuggestion{}, errors.Wrapf(ErrInvalidSuggestion, "action %q", *raw.Action)
	}

	if raw.Confidence == nil || *raw.Confidence < 0 || *raw.Confidence > 100 {
		return models.AISuggestion{}, errors.Wrap(ErrInvalidSuggestion, "confidence must be in [0,100]")
	}

	s := models.AISuggestion{
		Action:     action,
		Confidence: *raw.Confidence,
		Reasoning:  raw.Reasoning,
	}

	prices := []struct {
		name string
		v    *float64
		dst  *float64
	}{
		{"entry_price", raw.EntryPrice, &s.EntryPrice},
		{"stop_loss", raw.StopLoss, &s.StopLoss},
		{"take_profit", raw.TakeProfit, &s.TakeProfit},
	}
	for _, p := range prices {
		if p.v == nil {
			if action == models.ActionHold {
				continue
			}
			return models.AISuggestion{}, errors.Wrapf(ErrInvalidSuggestion, "%s missing", p.name)
		}
		if *p.v <= 0 && !(action == models.ActionHold && *p.v == 0) {
			return models.AISuggestion{}, errors.Wrapf(ErrInvalidSuggestion, "%s must be > 0, got %v", p.name, *p.v)
		}
		*p.dst = *p.v
	}

	if raw.PositionSizeUSD != nil {
		if *raw.PositionSizeUSD < 0 {
			return models.AISuggestion{}, errors.Wrapf(ErrInvalidSuggestion, "position_size_usd must be >= 0, got %v", *raw.PositionSizeUSD)
		}
		s.PositionSizeUSD = *raw.PositionSizeUSD
	}
	return s, nil
}
