package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	GateIO struct {
		BaseURL        string        `yaml:"base_url" default:"https://api.gateio.ws/api/v4"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://api.gateio.ws/ws/v4/"`
		Timeout        time.Duration `yaml:"timeout" default:"10s"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"25s"`
		RequestsPerSec float64       `yaml:"requests_per_sec" default:"8"`
		Burst          float64       `yaml:"burst" default:"16"`
	} `yaml:"gateio"`
	Scanner struct {
		QuoteSuffix         string        `yaml:"quote_suffix" default:"_USDT"`
		ScanInterval        time.Duration `yaml:"scan_interval" default:"2m"`
		CycleDeadline       time.Duration `yaml:"cycle_deadline" default:"90s"`
		Workers             int           `yaml:"workers" default:"8"`
		WindowCapacity      int           `yaml:"window_capacity" default:"100"`
		CandleInterval      string        `yaml:"candle_interval" default:"5m"`
		CandleLimit         int           `yaml:"candle_limit" default:"30"`
		MinVolumeUSD        float64       `yaml:"min_volume_usd" default:"250"`
		MaxSymbolsPerCycle  int           `yaml:"max_symbols_per_cycle" default:"0"`
		ListingsInterval    time.Duration `yaml:"listings_interval" default:"10m"`
		KnownPairsFile      string        `yaml:"known_pairs_file" default:"known_pairs.json"`
		RecentSignalsBuffer int           `yaml:"recent_signals_buffer" default:"200"`
		StreamSymbols       []string      `yaml:"stream_symbols"`
	} `yaml:"scanner"`
	Indicators struct {
		RSIPeriod        int `yaml:"rsi_period" default:"14"`
		MomentumPeriod   int `yaml:"momentum_period" default:"10"`
		VolumeBaseline   int `yaml:"volume_baseline" default:"10"`
		BreakoutLookback int `yaml:"breakout_lookback" default:"20"`
	} `yaml:"indicators"`
	Scoring struct {
		RSIOversold   float64    `yaml:"rsi_oversold" default:"25"`
		RSIOverbought float64    `yaml:"rsi_overbought" default:"80"`
		Volume        [3]float64 `yaml:"volume"`   // ratio tiers, high to low
		Change        [3]float64 `yaml:"change"`   // 24h % tiers
		Breakout      [3]float64 `yaml:"breakout"` // % tiers
		Momentum      [3]float64 `yaml:"momentum"` // % tiers
	} `yaml:"scoring"`
	Policy struct {
		MinConfidence    int           `yaml:"min_confidence" default:"45"`
		Cooldown         time.Duration `yaml:"cooldown" default:"15m"`
		MaxHourlySignals int           `yaml:"max_hourly_signals" default:"6"`
	} `yaml:"policy"`
	Cache struct {
		TickerTTL time.Duration `yaml:"ticker_ttl" default:"30s"`
		CandleTTL time.Duration `yaml:"candle_ttl" default:"2m"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Notify struct {
		Telegram struct {
			Token  string `yaml:"token"`
			ChatID int64  `yaml:"chat_id"`
		} `yaml:"telegram"`
		Email struct {
			SMTPHost string   `yaml:"smtp_host"`
			SMTPPort int      `yaml:"smtp_port" default:"587"`
			Username string   `yaml:"username"`
			Password string   `yaml:"password"`
			From     string   `yaml:"from"`
			To       []string `yaml:"to"`
		} `yaml:"email"`
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"pulsewatch.signals"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"kafka"`
	} `yaml:"notify"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyScoringDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Notify.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notify.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Notify.Email.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Notify.Kafka.Brokers = strings.Split(v, ",")
		c.Notify.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		if host, port, ok := strings.Cut(v, ":"); ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Cache.Redis.Host = host
				c.Cache.Redis.Port = p
				c.Cache.Redis.Enabled = true
			}
		}
	}

	return c, nil
}

// applyScoringDefaults fills tier arrays the defaults tag cannot express.
func (c *Config) applyScoringDefaults() {
	if c.Scoring.Volume == [3]float64{} {
		c.Scoring.Volume = [3]float64{2.0, 1.5, 1.2}
	}
	if c.Scoring.Change == [3]float64{} {
		c.Scoring.Change = [3]float64{4.0, 2.5, 1.5}
	}
	if c.Scoring.Breakout == [3]float64{} {
		c.Scoring.Breakout = [3]float64{1.5, 1.0, 0.7}
	}
	if c.Scoring.Momentum == [3]float64{} {
		c.Scoring.Momentum = [3]float64{3.5, 2.0, 1.2}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.GateIO.BaseURL == "" {
		return fmt.Errorf("gateio.base_url is required")
	}
	if c.Scanner.WindowCapacity < 2 {
		return fmt.Errorf("scanner.window_capacity must be at least 2")
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("scanner.workers must be at least 1")
	}
	if c.Indicators.RSIPeriod < 2 {
		return fmt.Errorf("indicators.rsi_period must be at least 2")
	}
	if c.Policy.MinConfidence < 0 || c.Policy.MinConfidence > 100 {
		return fmt.Errorf("policy.min_confidence must be in [0,100]")
	}
	if c.Policy.MaxHourlySignals < 1 {
		return fmt.Errorf("policy.max_hourly_signals must be at least 1")
	}
	if c.Scoring.RSIOversold >= c.Scoring.RSIOverbought {
		return fmt.Errorf("scoring.rsi_oversold must be below rsi_overbought")
	}
	for _, tiers := range [][3]float64{c.Scoring.Volume, c.Scoring.Change, c.Scoring.Breakout, c.Scoring.Momentum} {
		if !(tiers[0] > tiers[1] && tiers[1] > tiers[2]) {
			return fmt.Errorf("scoring tiers must be strictly decreasing, got %v", tiers)
		}
	}
	return nil
}
