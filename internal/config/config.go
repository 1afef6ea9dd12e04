package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
	Words  []WordPair   `yaml:"words"` // 可选：覆盖内置词库
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MaxPlayers      int `yaml:"max_players"`       // 房间最大人数
	DefaultSpyCount int `yaml:"default_spy_count"` // 默认卧底数量
	VoteDuration    int `yaml:"vote_duration"`     // 投票倒计时（秒）
	RevealDelay     int `yaml:"reveal_delay"`      // 淘汰揭示停留时间（秒）
	DrawDelay       int `yaml:"draw_delay"`        // 平局提示停留时间（秒）
	RoomIdleTimeout int `yaml:"room_idle_timeout"` // 大厅空闲房间超时（分钟）
}

// WordPair 词语对（平民词 / 卧底词）
type WordPair struct {
	Villager string `yaml:"villager"`
	Spy      string `yaml:"spy"`
}

// VoteDurationTime 返回投票倒计时时长
func (c *GameConfig) VoteDurationTime() time.Duration {
	return time.Duration(c.VoteDuration) * time.Second
}

// RevealDelayTime 返回揭示停留时长
func (c *GameConfig) RevealDelayTime() time.Duration {
	return time.Duration(c.RevealDelay) * time.Second
}

// DrawDelayTime 返回平局停留时长
func (c *GameConfig) DrawDelayTime() time.Duration {
	return time.Duration(c.DrawDelay) * time.Second
}

// RoomIdleTimeoutTime 返回空闲房间超时时长
func (c *GameConfig) RoomIdleTimeoutTime() time.Duration {
	return time.Duration(c.RoomIdleTimeout) * time.Minute
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 1793
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.MaxPlayers == 0 {
		cfg.Game.MaxPlayers = 8
	}
	if cfg.Game.DefaultSpyCount == 0 {
		cfg.Game.DefaultSpyCount = 1
	}
	if cfg.Game.VoteDuration == 0 {
		cfg.Game.VoteDuration = 15
	}
	if cfg.Game.RevealDelay == 0 {
		cfg.Game.RevealDelay = 5
	}
	if cfg.Game.DrawDelay == 0 {
		cfg.Game.DrawDelay = 3
	}
	if cfg.Game.RoomIdleTimeout == 0 {
		cfg.Game.RoomIdleTimeout = 120
	}

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 1793,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			MaxPlayers:      8,
			DefaultSpyCount: 1,
			VoteDuration:    15,
			RevealDelay:     5,
			DrawDelay:       3,
			RoomIdleTimeout: 120,
		},
	}
}
