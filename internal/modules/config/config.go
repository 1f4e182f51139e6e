package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"
)

type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeAdvanced Mode = "advanced"
)

// Config ...
type Config struct {
	Binance struct {
		APIKey      string        `yaml:"api_key"`
		APISecret   string        `yaml:"api_secret"`
		Testnet     bool          `yaml:"testnet"`
		BaseURL     string        `yaml:"base_url"`
		TestnetURL  string        `yaml:"testnet_url"`
		StreamURL   string        `yaml:"stream_url"`
		TestnetWS   string        `yaml:"testnet_stream_url"`
		RecvWindow  int           `yaml:"recv_window"`
		PriceMaxAge time.Duration `yaml:"price_max_age"`
	} `yaml:"binance"`

	AI struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		Temperature float64       `yaml:"temperature"`
		MaxTokens   int           `yaml:"max_tokens"`
		Timeout     time.Duration `yaml:"timeout"`
		CacheTTL    time.Duration `yaml:"cache_ttl"`
	} `yaml:"ai"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"discord"`

	Sentiment struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"sentiment"`

	Trading struct {
		Symbols         []string      `yaml:"symbols"`
		QuoteAsset      string        `yaml:"quote_asset"`
		MaxPositions    int           `yaml:"max_positions"`
		MaxRiskPercent  float64       `yaml:"max_risk_percent"`
		StopLossPercent float64       `yaml:"stop_loss_percent"`
		CheckInterval   time.Duration `yaml:"check_interval"`
		SymbolDelay     time.Duration `yaml:"symbol_delay"`
		ErrorBackoff    time.Duration `yaml:"error_backoff"`
		ReportHour      int           `yaml:"report_hour"`
		Mode            Mode          `yaml:"mode"`
		MinPositionUSD  float64       `yaml:"min_position_usd"`
	} `yaml:"trading"`

	Strategy struct {
		Threshold       int     `yaml:"threshold"`
		ConfidenceFloor float64 `yaml:"confidence_floor"`
		MarketFilter    bool    `yaml:"market_filter"`
	} `yaml:"strategy"`

	Trailing struct {
		ActivationPercent float64 `yaml:"activation_percent"`
		TrailPercent      float64 `yaml:"trail_percent"`
	} `yaml:"trailing"`

	Pyramid struct {
		ActivationPercent float64 `yaml:"activation_percent"`
		MaxAdds           int     `yaml:"max_adds"`
	} `yaml:"pyramid"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	Health struct {
		Addr string `yaml:"addr"`
	} `yaml:"health"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default — значения как у исходного бота.
func Default() Config {
	var c Config

	c.Binance.Testnet = true
	c.Binance.BaseURL = "https://api.binance.com"
	c.Binance.TestnetURL = "https://testnet.binance.vision"
	c.Binance.StreamURL = "wss://stream.binance.com:9443"
	c.Binance.TestnetWS = "wss://stream.testnet.binance.vision"
	c.Binance.RecvWindow = 5000
	c.Binance.PriceMaxAge = 10 * time.Second

	c.AI.BaseURL = "https://api.mistral.ai/v1"
	c.AI.Model = "mistral-small"
	c.AI.Temperature = 0.1
	c.AI.MaxTokens = 1000
	c.AI.Timeout = 30 * time.Second
	c.AI.CacheTTL = time.Hour

	c.Sentiment.URL = "https://api.alternative.me/fng/"
	c.Sentiment.Timeout = 10 * time.Second

	c.Trading.Symbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	c.Trading.QuoteAsset = "USDT"
	c.Trading.MaxPositions = 2
	c.Trading.MaxRiskPercent = 2
	c.Trading.StopLossPercent = 3
	c.Trading.CheckInterval = 4 * time.Hour
	c.Trading.SymbolDelay = 2 * time.Second
	c.Trading.ErrorBackoff = time.Minute
	c.Trading.ReportHour = 7
	c.Trading.Mode = ModeAdvanced
	c.Trading.MinPositionUSD = 10

	c.Strategy.Threshold = 5
	c.Strategy.ConfidenceFloor = 55

	c.Trailing.ActivationPercent = 2
	c.Trailing.TrailPercent = 2

	c.Pyramid.ActivationPercent = 3
	c.Pyramid.MaxAdds = 2

	c.Tracing.Port = 6831
	c.Health.Addr = ":8080"
	c.Log.Level = "info"
	return c
}

func NewConfig() (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = defaultConfigFile
	}

	config := Default()
	if err := loadFile(filepath.Join(configDir, configFileName), &config); err != nil {
		return nil, err
	}

	applyEnv(newEnv(), &config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func loadFile(path string, config *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "open config file %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return errors.Wrapf(err, "decode config file %s", path)
	}
	return nil
}

// envBindings — ключ конфига -> переменная окружения исходного бота.
var envBindings = map[string]string{
	"binance.api_key":           "BINANCE_API_KEY",
	"binance.api_secret":        "BINANCE_API_SECRET",
	"binance.testnet":           "BINANCE_TESTNET",
	"ai.api_key":                "MISTRAL_API_KEY",
	"ai.model":                  "MISTRAL_MODEL",
	"telegram.token":            "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":          "TELEGRAM_CHAT_ID",
	"discord.webhook_url":       "DISCORD_WEBHOOK_URL",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"trading.max_positions":     "MAX_POSITIONS",
	"trading.max_risk_percent":  "MAX_RISK_PERCENT",
	"trading.stop_loss_percent": "STOP_LOSS_PERCENT",
	"trading.check_interval_h":  "CHECK_INTERVAL_HOURS",
	"trading.mode":              "TRADING_MODE",
	"trading.symbols":           "SYMBOLS",
	"tracing.host":              "JAEGER_HOST",
	"health.addr":               "HEALTH_ADDR",
	"log.level":                 "LOG_LEVEL",
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

func applyEnv(v *viper.Viper, c *Config) {
	setString(v, "binance.api_key", &c.Binance.APIKey)
	setString(v, "binance.api_secret", &c.Binance.APISecret)
	setBool(v, "binance.testnet", &c.Binance.Testnet)
	setString(v, "ai.api_key", &c.AI.APIKey)
	setString(v, "ai.model", &c.AI.Model)
	setString(v, "telegram.token", &c.Telegram.Token)
	if v.GetString("telegram.chat_id") != "" {
		c.Telegram.ChatID = v.GetInt64("telegram.chat_id")
	}
	setString(v, "discord.webhook_url", &c.Discord.WebhookURL)
	setString(v, "redis.addr", &c.Redis.Addr)
	setString(v, "redis.password", &c.Redis.Password)
	setInt(v, "trading.max_positions", &c.Trading.MaxPositions)
	setFloat(v, "trading.max_risk_percent", &c.Trading.MaxRiskPercent)
	setFloat(v, "trading.stop_loss_percent", &c.Trading.StopLossPercent)
	if v.GetString("trading.check_interval_h") != "" {
		c.Trading.CheckInterval = time.Duration(v.GetInt("trading.check_interval_h")) * time.Hour
	}
	var mode string
	setString(v, "trading.mode", &mode)
	if mode != "" {
		c.Trading.Mode = Mode(strings.ToLower(mode))
	}
	if s := v.GetString("trading.symbols"); s != "" {
		c.Trading.Symbols = splitSymbols(s)
	}
	setString(v, "tracing.host", &c.Tracing.Host)
	setString(v, "health.addr", &c.Health.Addr)
	setString(v, "log.level", &c.Log.Level)
}

func setString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.GetString(key) != "" {
		*dst = v.GetBool(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.GetString(key) != "" {
		*dst = v.GetInt(key)
	}
}

func setFloat(v *viper.Viper, key string, dst *float64) {
	if v.GetString(key) != "" {
		*dst = v.GetFloat64(key)
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch {
	case len(c.Trading.Symbols) == 0:
		return errors.New("config: trading.symbols is empty")
	case c.Trading.MaxPositions < 1:
		return errors.Errorf("config: trading.max_positions must be >= 1, got %d", c.Trading.MaxPositions)
	case c.Trading.CheckInterval <= 0:
		return errors.Errorf("config: trading.check_interval must be positive, got %s", c.Trading.CheckInterval)
	case c.Trailing.TrailPercent <= 0 || c.Trailing.TrailPercent >= 100:
		return errors.Errorf("config: trailing.trail_percent must be in (0,100), got %v", c.Trailing.TrailPercent)
	case c.Trading.ReportHour < 0 || c.Trading.ReportHour > 23:
		return errors.Errorf("config: trading.report_hour must be in [0,23], got %d", c.Trading.ReportHour)
	case c.Trading.Mode != ModeBasic && c.Trading.Mode != ModeAdvanced:
		return errors.Errorf("config: unknown trading.mode %q", c.Trading.Mode)
	}
	return nil
}

// BaseURL — REST эндпоинт с учётом testnet.
func (c *Config) BaseURL() string {
	if c.Binance.Testnet {
		return c.Binance.TestnetURL
	}
	return c.Binance.BaseURL
}

func (c *Config) StreamURL() string {
	if c.Binance.Testnet {
		return c.Binance.TestnetWS
	}
	return c.Binance.StreamURL
}
