package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Debug    bool           `mapstructure:"debug"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	// HeartbeatSeconds bounds how long a connection may stay silent
	// before its reads time out. Zero disables the deadline.
	HeartbeatSeconds int `mapstructure:"heartbeat_seconds"`
}

// GameConfig is the tuning surface of the dispatch engine. Every value has
// a hard-coded fallback so the server runs without a config file.
type GameConfig struct {
	BroadcastIntervalMS int `mapstructure:"broadcast_interval_ms"`
	RoomCapacity        int `mapstructure:"room_capacity"`
	MinRoomID           int `mapstructure:"min_room_id"`
	MaxRoomID           int `mapstructure:"max_room_id"`
	RoundSeconds        int `mapstructure:"round_seconds"`
}

type DatabaseConfig struct {
	// Driver selects the Store implementation: "gorm" or "pq".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("server.heartbeat_seconds", 60)
	viper.SetDefault("game.broadcast_interval_ms", 40)
	viper.SetDefault("game.room_capacity", 8)
	viper.SetDefault("game.min_room_id", 1)
	viper.SetDefault("game.max_room_id", 100)
	viper.SetDefault("game.round_seconds", 90)
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.user", "postgres")
	viper.SetDefault("database.postgres.dbname", "drawguess")
	viper.SetDefault("debug", false)
}

// LoadConfig reads config.yaml from path. A missing file is not an error;
// the defaults above apply. Invalid values fall back as well so a bad
// config never takes the server down.
func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	sanitize(config)
	return config, nil
}

// sanitize rejects out-of-range values in favor of the defaults.
func sanitize(c *Config) {
	if c.Game.BroadcastIntervalMS <= 0 {
		c.Game.BroadcastIntervalMS = 40
	}
	if c.Game.RoomCapacity <= 0 {
		c.Game.RoomCapacity = 8
	}
	if c.Game.MinRoomID <= 0 {
		c.Game.MinRoomID = 1
	}
	if c.Game.MaxRoomID < c.Game.MinRoomID {
		c.Game.MaxRoomID = c.Game.MinRoomID + 99
	}
	if c.Game.RoundSeconds <= 0 {
		c.Game.RoundSeconds = 90
	}
	if c.Database.Driver != "pq" {
		c.Database.Driver = "gorm"
	}
	if c.Server.HeartbeatSeconds < 0 {
		c.Server.HeartbeatSeconds = 0
	}
}
