package flotilla

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Config describes one federated training run: the endpoint pool, the
// aggregation mode and the hyperparameters shared by every round.
type Config struct {
	Federation FederationConfig `toml:"federation"`
	Broker     BrokerConfig     `toml:"broker"`
}

type FederationConfig struct {
	ID            string        `toml:"id"`
	Endpoints     []string      `toml:"endpoints"`
	Rounds        int           `toml:"rounds"`
	Epochs        int           `toml:"epochs"`
	SampleBudget  int           `toml:"sample_budget"`
	Mode          string        `toml:"mode"`
	RoundInterval time.Duration `toml:"round_interval"`
	TrainTimeout  time.Duration `toml:"train_timeout"`
	Quorum        int           `toml:"quorum"`
	ModelPath     string        `toml:"model_path"` // JSON file holding the initial global model
}

type BrokerConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
