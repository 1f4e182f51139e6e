package service

import (
	"strings"

	"github.com/Regasking/trade-bot/internal/modules/config"
)

// Watchlist — торгуемые символы в порядке из конфига, без дублей.
type Watchlist struct{ symbols []string }

func NewWatchlist(cfg *config.Config) *Watchlist {
	seen := make(map[string]struct{}, len(cfg.Trading.Symbols))
	out := make([]string, 0, len(cfg.Trading.Symbols))
	for _, s := range cfg.Trading.Symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return &Watchlist{symbols: out}
}

func (w *Watchlist) Symbols() []string {
	out := make([]string, len(w.symbols))
	copy(out, w.symbols)
	return out
}
