package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"starchase/game"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "STARCHASE_"

// Config 服务端可外部化的全部参数
type Config struct {
	Addr        string
	WebDir      string
	LogFile     string
	LogLevel    string
	DefaultRoom string

	MaxRooms          int           // 同时存在的房间上限，默认房间总能创建
	MaxPlayers        int           // 房间容量，不能超过调色板大小
	TickRate          int           // 每秒 Tick 数
	ResetPeriod       time.Duration // 排行榜清零周期
	SendQueue         int           // 每个连接的发送队列长度
	MaxMessagesPerSec int           // 每个连接的入站消息限速
}

// DefaultConfig 默认值：10 人、60Hz、10 分钟清零
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		WebDir:            "web",
		LogFile:           "app.log",
		LogLevel:          "info",
		DefaultRoom:       "arena",
		MaxRooms:          64,
		MaxPlayers:        10,
		TickRate:          60,
		ResetPeriod:       10 * time.Minute,
		SendQueue:         64,
		MaxMessagesPerSec: 300,
	}
}

// TickInterval 由 TickRate 换算的 Tick 周期（60Hz ≈ 16.67ms）
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c Config) Validate() error {
	switch {
	case c.MaxPlayers < 1 || c.MaxPlayers > len(game.Palette):
		return fmt.Errorf("%w: maxPlayers must be 1..%d, got %d", ErrInvalidConfig, len(game.Palette), c.MaxPlayers)
	case c.TickRate < 1 || c.TickRate > 240:
		return fmt.Errorf("%w: tickRate must be 1..240, got %d", ErrInvalidConfig, c.TickRate)
	case c.ResetPeriod <= 0:
		return fmt.Errorf("%w: resetPeriod must be positive", ErrInvalidConfig)
	case c.SendQueue < 1:
		return fmt.Errorf("%w: sendQueue must be positive", ErrInvalidConfig)
	case c.MaxMessagesPerSec < 1:
		return fmt.Errorf("%w: maxMessagesPerSec must be positive", ErrInvalidConfig)
	case c.MaxRooms < 1:
		return fmt.Errorf("%w: maxRooms must be positive", ErrInvalidConfig)
	case c.DefaultRoom == "":
		return fmt.Errorf("%w: room name is empty", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig 读取可选的 .env 文件，再用 STARCHASE_* 环境变量覆盖默认值
func LoadConfig(envFile string) (Config, error) {
	cfg := DefaultConfig()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &cfg.Addr)
	str("WEB_DIR", &cfg.WebDir)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("ROOM", &cfg.DefaultRoom)

	ints := []struct {
		key string
		dst *int
	}{
		{"MAX_ROOMS", &cfg.MaxRooms},
		{"MAX_PLAYERS", &cfg.MaxPlayers},
		{"TICK_RATE", &cfg.TickRate},
		{"SEND_QUEUE", &cfg.SendQueue},
		{"MAX_MSGS_PER_SEC", &cfg.MaxMessagesPerSec},
	}
	for _, it := range ints {
		v, ok := os.LookupEnv(envPrefix + it.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s%s=%q", ErrInvalidConfig, envPrefix, it.key, v)
		}
		*it.dst = n
	}

	if v, ok := os.LookupEnv(envPrefix + "RESET_PERIOD"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %sRESET_PERIOD=%q", ErrInvalidConfig, envPrefix, v)
		}
		cfg.ResetPeriod = d
	}
	return cfg, nil
}
