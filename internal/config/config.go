package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type GateConfig struct {
	Port      string
	Baud      int
	DwellTime time.Duration
}

type TerminalConfig struct {
	Port         string
	Baud         int
	ReadyTimeout time.Duration
	DoneTimeout  time.Duration
}

type LaneConfig struct {
	MinDistanceCm float64
	MaxDistanceCm float64
}

type PlateConfig struct {
	RegionPrefix       string
	ConsensusThreshold int
}

type TariffConfig struct {
	HourlyRate int64
}

type ExitConfig struct {
	GraceWindow time.Duration
}

type VisionConfig struct {
	ServiceURL    string
	InternalToken string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Gate        GateConfig
	Terminal    TerminalConfig
	Lane        LaneConfig
	Plate       PlateConfig
	Tariff      TariffConfig
	Exit        ExitConfig
	Vision      VisionConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Gate: GateConfig{
			Port:      v.GetString("GATE_PORT"),
			Baud:      v.GetInt("GATE_BAUD"),
			DwellTime: v.GetDuration("GATE_DWELL"),
		},
		Terminal: TerminalConfig{
			Port:         v.GetString("TERMINAL_PORT"),
			Baud:         v.GetInt("TERMINAL_BAUD"),
			ReadyTimeout: v.GetDuration("TERMINAL_READY_TIMEOUT"),
			DoneTimeout:  v.GetDuration("TERMINAL_DONE_TIMEOUT"),
		},
		Lane: LaneConfig{
			MinDistanceCm: v.GetFloat64("LANE_MIN_DISTANCE_CM"),
			MaxDistanceCm: v.GetFloat64("LANE_MAX_DISTANCE_CM"),
		},
		Plate: PlateConfig{
			RegionPrefix:       v.GetString("PLATE_REGION_PREFIX"),
			ConsensusThreshold: v.GetInt("PLATE_CONSENSUS_THRESHOLD"),
		},
		Tariff: TariffConfig{
			HourlyRate: v.GetInt64("HOURLY_RATE"),
		},
		Exit: ExitConfig{
			GraceWindow: v.GetDuration("EXIT_GRACE_WINDOW"),
		},
		Vision: VisionConfig{
			ServiceURL:    v.GetString("VISION_SERVICE_URL"),
			InternalToken: v.GetString("VISION_INTERNAL_TOKEN"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Gate.Baud == 0 {
		cfg.Gate.Baud = 9600
	}
	if cfg.Gate.DwellTime == 0 {
		cfg.Gate.DwellTime = 15 * time.Second
	}
	if cfg.Terminal.Baud == 0 {
		cfg.Terminal.Baud = 9600
	}
	if cfg.Terminal.ReadyTimeout == 0 {
		cfg.Terminal.ReadyTimeout = 5 * time.Second
	}
	if cfg.Terminal.DoneTimeout == 0 {
		cfg.Terminal.DoneTimeout = 10 * time.Second
	}
	if cfg.Lane.MaxDistanceCm == 0 {
		cfg.Lane.MaxDistanceCm = 50
	}
	if cfg.Plate.RegionPrefix == "" {
		cfg.Plate.RegionPrefix = "RA"
	}
	if cfg.Plate.ConsensusThreshold == 0 {
		cfg.Plate.ConsensusThreshold = 3
	}
	if cfg.Tariff.HourlyRate == 0 {
		cfg.Tariff.HourlyRate = 500
	}
	if cfg.Exit.GraceWindow == 0 {
		cfg.Exit.GraceWindow = 5 * time.Minute
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Lane.MinDistanceCm > cfg.Lane.MaxDistanceCm {
		return fmt.Errorf("LANE_MIN_DISTANCE_CM must not exceed LANE_MAX_DISTANCE_CM")
	}
	return nil
}
