package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 服务端全部可调参数，从环境变量装配。
// 本地开发可以放一个 .env，缺省值即规范里的参考上限。
type Config struct {
	TCPAddr  string `envconfig:"CHAT_TCP_ADDR" default:":9000"`
	WSAddr   string `envconfig:"CHAT_WS_ADDR" default:":8000"`
	WSPath   string `envconfig:"CHAT_WS_PATH" default:"/chat"`
	HTTPAddr string `envconfig:"CHAT_HTTP_ADDR" default:":8081"`

	// Rooms 固定房间目录，逗号分隔，首项为默认房间
	Rooms []string `envconfig:"CHAT_ROOMS" default:"General,Python,Linux & Open Source,Off-Topic,Help"`

	OutBuffer       int           `envconfig:"CHAT_OUT_BUFFER" default:"256"`
	MaxMessageBytes int           `envconfig:"CHAT_MAX_MESSAGE_BYTES" default:"1024"`
	MaxSessions     int64         `envconfig:"CHAT_MAX_SESSIONS" default:"100"`
	RateLimitCount  int           `envconfig:"CHAT_RATE_LIMIT_COUNT" default:"5"`
	RateLimitWindow time.Duration `envconfig:"CHAT_RATE_LIMIT_WINDOW" default:"10s"`

	LogLevel string `envconfig:"CHAT_LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
