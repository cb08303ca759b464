package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// Config es la configuración completa del bot.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Betting  BettingConfig  `yaml:"betting"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Feed     FeedConfig     `yaml:"feed"`
	Sheet    SheetConfig    `yaml:"sheet"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

// BotConfig controla el ciclo de polling.
type BotConfig struct {
	IntervalSeconds          int  `yaml:"interval_seconds"`           // cadencia por defecto
	IntensiveIntervalSeconds int  `yaml:"intensive_interval_seconds"` // partidos cerca de la ventana
	FastIntervalSeconds      int  `yaml:"fast_interval_seconds"`      // calificados en el minuto 75
	FastEnabled              bool `yaml:"fast_enabled"`
	KeepAliveMinutes         int  `yaml:"keep_alive_minutes"`
	TestMode                 bool `yaml:"test_mode"` // colaboradores simulados, sin dinero real
}

// BettingConfig controla la calificación y la colocación de apuestas.
type BettingConfig struct {
	WindowStart         int      `yaml:"window_start"`
	WindowEnd           int      `yaml:"window_end"`
	TargetOver          float64  `yaml:"target_over"` // línea de goles, p.ej. 2.5
	VARCheckEnabled     bool     `yaml:"var_check_enabled"`
	EarlyDiscardEnabled bool     `yaml:"early_discard_enabled"`
	StrictDiscardAt60   bool     `yaml:"strict_discard_at_60"`
	DiscardDelaySeconds int      `yaml:"discard_delay_seconds"`
	ZeroZeroExceptions  []string `yaml:"zero_zero_exceptions"`

	DefaultMinOdds float64 `yaml:"default_min_odds"`
	MaxSpreadTicks int     `yaml:"max_spread_ticks"`
	TicksOffset    int     `yaml:"ticks_offset"`
	Ladder         string  `yaml:"ladder"` // CLASSIC | FINEST
}

// ExchangeConfig contiene los endpoints y credenciales del exchange.
type ExchangeConfig struct {
	BettingBase  string `yaml:"betting_base"`
	AccountBase  string `yaml:"account_base"`
	IdentityBase string `yaml:"identity_base"`
	AppKey       string `yaml:"-"` // BETFAIR_APP_KEY
	Username     string `yaml:"-"` // BETFAIR_USERNAME
	Password     string `yaml:"-"` // BETFAIR_PASSWORD
}

// FeedConfig contiene el endpoint, credenciales y presupuesto del feed en vivo.
type FeedConfig struct {
	BaseURL        string `yaml:"base_url"`
	RequestsPerDay int    `yaml:"requests_per_day"`
	APIKey         string `yaml:"-"` // LIVESCORE_API_KEY
	APISecret      string `yaml:"-"` // LIVESCORE_API_SECRET
}

// SheetConfig localiza la hoja de objetivos.
type SheetConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig controla dónde se persisten los registros.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// TelegramConfig controla el notificador de Telegram.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	ChatID   int64  `yaml:"chat_id"`
	BotToken string `yaml:"-"` // TELEGRAM_BOT_TOKEN
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno aportan los secretos y sobreescriben el YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval devuelve la cadencia de polling por defecto.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bot.IntervalSeconds) * time.Second
}

// KeepAliveInterval devuelve la cadencia de refresco de sesión.
func (c *Config) KeepAliveInterval() time.Duration {
	return time.Duration(c.Bot.KeepAliveMinutes) * time.Minute
}

// DiscardDelay devuelve el periodo de gracia antes de descartar un partido.
func (c *Config) DiscardDelay() time.Duration {
	return time.Duration(c.Betting.DiscardDelaySeconds) * time.Second
}

// applyEnvOverrides inyecta secretos y sobreescribe valores con variables de
// entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BETFAIR_APP_KEY"); v != "" {
		cfg.Exchange.AppKey = v
	}
	if v := os.Getenv("BETFAIR_USERNAME"); v != "" {
		cfg.Exchange.Username = v
	}
	if v := os.Getenv("BETFAIR_PASSWORD"); v != "" {
		cfg.Exchange.Password = v
	}
	if v := os.Getenv("LIVESCORE_API_KEY"); v != "" {
		cfg.Feed.APIKey = v
	}
	if v := os.Getenv("LIVESCORE_API_SECRET"); v != "" {
		cfg.Feed.APISecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Bot.IntervalSeconds <= 0 {
		cfg.Bot.IntervalSeconds = 60
	}
	if cfg.Bot.IntensiveIntervalSeconds <= 0 {
		cfg.Bot.IntensiveIntervalSeconds = 10
	}
	if cfg.Bot.FastIntervalSeconds <= 0 {
		cfg.Bot.FastIntervalSeconds = 1
	}
	if cfg.Bot.KeepAliveMinutes <= 0 {
		cfg.Bot.KeepAliveMinutes = 15
	}
	if cfg.Betting.WindowStart <= 0 {
		cfg.Betting.WindowStart = 60
	}
	if cfg.Betting.WindowEnd <= 0 {
		cfg.Betting.WindowEnd = 74
	}
	if cfg.Betting.TargetOver <= 0 {
		cfg.Betting.TargetOver = 2.5
	}
	if cfg.Betting.DiscardDelaySeconds <= 0 {
		cfg.Betting.DiscardDelaySeconds = int(domain.DefaultDiscardDelay / time.Second)
	}
	if cfg.Betting.DefaultMinOdds <= 0 {
		cfg.Betting.DefaultMinOdds = 1.5
	}
	if cfg.Betting.MaxSpreadTicks <= 0 {
		cfg.Betting.MaxSpreadTicks = 4
	}
	if cfg.Betting.TicksOffset <= 0 {
		cfg.Betting.TicksOffset = 2
	}
	if cfg.Betting.Ladder == "" {
		cfg.Betting.Ladder = "CLASSIC"
	}
	if cfg.Feed.RequestsPerDay <= 0 {
		cfg.Feed.RequestsPerDay = 1500
	}
	if cfg.Sheet.Path == "" {
		cfg.Sheet.Path = "targets.xlsx"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "laybot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate comprueba las credenciales mínimas. En test_mode los colaboradores
// son simulados, así que no se exigen. Se llama aparte de Load para que los
// flags puedan ajustar el modo antes.
func (c *Config) Validate() error {
	if c.Bot.TestMode {
		return nil
	}
	if c.Exchange.AppKey == "" {
		return fmt.Errorf("missing BETFAIR_APP_KEY")
	}
	if c.Exchange.Username == "" || c.Exchange.Password == "" {
		return fmt.Errorf("missing BETFAIR_USERNAME or BETFAIR_PASSWORD")
	}
	if c.Feed.APIKey == "" || c.Feed.APISecret == "" {
		return fmt.Errorf("missing LIVESCORE_API_KEY or LIVESCORE_API_SECRET")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram enabled but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing")
	}
	return nil
}
