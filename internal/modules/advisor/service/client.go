package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTP        *http.Client
}

// Advisor — OpenAI-совместимый chat completion (Mistral). Ответ модели считается недоверенным.
type Advisor struct {
	http  *http.Client
	opts  Options
	cache Cache
}

func NewAdvisor(cfg *config.Config, cache Cache) *Advisor {
	return New(Options{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		HTTP:        &http.Client{Timeout: cfg.AI.Timeout},
	}, cache)
}

func New(o Options, cache Cache) *Advisor {
	if o.HTTP == nil {
		o.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &Advisor{http: o.HTTP, opts: o, cache: cache}
}

// Suggest никогда не возвращает ошибку: любой сбой превращается в HOLD.
func (a *Advisor) Suggest(ctx context.Context, snap models.IndicatorSnapshot) models.AISuggestion {
	key := CacheKey(snap)
	if s, ok := a.cache.Get(ctx, key); ok {
		logger.Info("[AI] %s cache hit: %s %.0f%%", snap.Symbol, s.Action, s.Confidence)
		return s
	}

	content, err := a.complete(ctx, []Message{{Role: "user", Content: BuildPrompt(snap)}})
	if err != nil {
		logger.Warn("[AI] %s request failed: %v", snap.Symbol, err)
		return models.HoldSuggestion("ai unavailable: " + err.Error())
	}

	s, err := ParseSuggestion(content)
	if err != nil {
		logger.Warn("[AI] %s invalid response: %v", snap.Symbol, err)
		return models.HoldSuggestion("invalid ai response: " + err.Error())
	}

	a.cache.Set(ctx, key, s)
	logger.Info("[AI] %s %s confidence=%.0f%%", snap.Symbol, s.Action, s.Confidence)
	return s
}

func (a *Advisor) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := sonic.Marshal(chatRequest{
		Model:       a.opts.Model,
		Messages:    messages,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.opts.APIKey)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return "", errors.Errorf("ai http %d: %s", resp.StatusCode, string(raw))
	}

	var out chatResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}
