package flotillad

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var (
	defLogLevel    = "info"
	defHTTPAddress = ":7070"
	defConfigPath  = "flotilla.toml"
)

var coordinatorCmd = []cobra.Command{
	{
		Use:   "start",
		Short: "Start coordinator",
		Long:  `Start the federated training coordinator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := Config{
				LogLevel:    defLogLevel,
				HTTPAddress: defHTTPAddress,
				MQTTQoS:     2,
				MQTTTimeout: 30 * time.Second,
				ConfigPath:  defConfigPath,
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartCoordinator(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start coordinator: %s", err.Error())
			}
			cancel()
		},
	},
}

func NewCoordinatorCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "coordinator [start]",
		Short: "Coordinator management",
		Long:  `Run the federated training coordinator.`,
	}

	for i := range coordinatorCmd {
		cmd.AddCommand(&coordinatorCmd[i])
	}

	cmd.PersistentFlags().StringVarP(
		&defConfigPath,
		"config",
		"f",
		defConfigPath,
		"Run config file",
	)

	cmd.PersistentFlags().StringVarP(
		&defHTTPAddress,
		"http-address",
		"a",
		defHTTPAddress,
		"HTTP listen address",
	)

	cmd.PersistentFlags().StringVarP(
		&defLogLevel,
		"log-level",
		"l",
		defLogLevel,
		"Log level",
	)

	return &cmd
}
