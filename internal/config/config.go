package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken       string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath         string        `envconfig:"DB_PATH" default:"./data/foodtracker.db"`
	OrgTZ          string        `envconfig:"ORG_TZ" default:"Asia/Kolkata"` // single organizational timezone
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`      // debug|info|warn|error
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`     // healthz
	BaseURL        string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	QRDir          string        `envconfig:"QR_DIR" default:"./data/qr"`
	AdminChatIDs   []int64       `envconfig:"ADMIN_CHAT_IDS"`
	PropagateEvery time.Duration `envconfig:"PROPAGATE_EVERY" default:"15m"` // weekly preference sweep interval
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsAdmin reports whether a chat is in the configured admin list.
func (c Config) IsAdmin(chatID int64) bool {
	for _, id := range c.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
