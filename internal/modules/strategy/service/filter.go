package service

import (
	"fmt"

	"github.com/Regasking/trade-bot/internal/models"
)

// FilterByRegime понижает BUY до HOLD: в BEAR при уверенности <80, в SIDEWAYS при <70.
func FilterByRegime(ai models.AISuggestion, regime models.Regime) (models.AISuggestion, bool) {
	if ai.Action != models.ActionBuy {
		return ai, false
	}

	var floor float64
	switch regime {
	case models.RegimeBear:
		floor = 80
	case models.RegimeSideways:
		floor = 70
	default:
		return ai, false
	}
	if ai.Confidence >= floor {
		return ai, false
	}

	out := ai
	out.Action = models.ActionHold
	out.Reasoning = fmt.Sprintf("BUY ignored: %s market and confidence %.0f%% < %.0f%%", regime, ai.Confidence, floor)
	return out, true
}
