package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/flxlabs/flotilla"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

const filePermission = 0o644

var configFile = "flotilla.toml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate run config",
	Long:  `Interactively build a federated run configuration file.`,
	Run: func(cmd *cobra.Command, _ []string) {
		var (
			federationID string
			endpoints    string
			rounds       string
			epochs       string
			sampleBudget string
			mode         string
			quorum       string
			interval     string
			timeout      string
			modelPath    string
			brokerURL    string
		)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Federation ID").
					Value(&federationID).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("federation ID cannot be empty")
						}

						return nil
					}),
				huh.NewInput().
					Title("Endpoint IDs (comma separated)").
					Value(&endpoints).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("at least one endpoint is required")
						}

						return nil
					}),
				huh.NewSelect[string]().
					Title("Aggregation mode").
					Options(
						huh.NewOption("average", "average"),
						huh.NewOption("weighted_average", "weighted_average"),
					).
					Value(&mode),
			),
			huh.NewGroup(
				huh.NewInput().Title("Rounds").Value(&rounds).Validate(validatePositiveInt),
				huh.NewInput().Title("Epochs per round").Value(&epochs).Validate(validatePositiveInt),
				huh.NewInput().Title("Sample budget per endpoint").Value(&sampleBudget).Validate(validatePositiveInt),
				huh.NewInput().Title("Quorum (0 waits for all endpoints)").Value(&quorum),
				huh.NewInput().Title("Round interval (e.g. 5s, 0 to disable)").Value(&interval),
				huh.NewInput().Title("Training timeout (e.g. 2m, 0 waits forever)").Value(&timeout),
			),
			huh.NewGroup(
				huh.NewInput().Title("Initial model path").Value(&modelPath),
				huh.NewInput().Title("MQTT broker URL").Value(&brokerURL),
			),
		)

		if err := form.Run(); err != nil {
			logErrorCmd(*cmd, err)

			return
		}

		cfg := flotilla.Config{
			Federation: flotilla.FederationConfig{
				ID:           federationID,
				Endpoints:    splitTrim(endpoints),
				Rounds:       atoiOrZero(rounds),
				Epochs:       atoiOrZero(epochs),
				SampleBudget: atoiOrZero(sampleBudget),
				Mode:         mode,
				Quorum:       atoiOrZero(quorum),
				ModelPath:    modelPath,
			},
			Broker: flotilla.BrokerConfig{
				URL: brokerURL,
			},
		}
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Federation.RoundInterval = d
		}
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Federation.TrainTimeout = d
		}

		data, err := toml.Marshal(cfg)
		if err != nil {
			logErrorCmd(*cmd, err)

			return
		}

		if err := os.WriteFile(configFile, data, filePermission); err != nil {
			logErrorCmd(*cmd, err)

			return
		}
		logSuccessCmd(*cmd, "Successfully created "+configFile)
	},
}

func NewConfigCmd() *cobra.Command {
	configCmd.Flags().StringVarP(&configFile, "output", "o", configFile, "Output file")

	return configCmd
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}

	return nil
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))

	return n
}
