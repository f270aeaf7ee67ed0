package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/flxlabs/flotilla/flotillad"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const pathEnv = ".env"

type envConfig struct {
	LogLevel    string        `env:"FLOTILLA_LOG_LEVEL"    envDefault:"info"`
	InstanceID  string        `env:"FLOTILLA_INSTANCE_ID"`
	HTTPAddress string        `env:"FLOTILLA_HTTP_ADDRESS" envDefault:":7070"`
	MQTTQoS     uint8         `env:"FLOTILLA_MQTT_QOS"     envDefault:"2"`
	MQTTTimeout time.Duration `env:"FLOTILLA_MQTT_TIMEOUT" envDefault:"30s"`
	ConfigPath  string        `env:"FLOTILLA_CONFIG_PATH"  envDefault:"flotilla.toml"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration: %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	if err := flotillad.StartCoordinator(ctx, cancel, flotillad.Config{
		LogLevel:    cfg.LogLevel,
		InstanceID:  cfg.InstanceID,
		HTTPAddress: cfg.HTTPAddress,
		MQTTQoS:     cfg.MQTTQoS,
		MQTTTimeout: cfg.MQTTTimeout,
		ConfigPath:  cfg.ConfigPath,
	}); err != nil {
		log.Fatal(err.Error())
	}
}
