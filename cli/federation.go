package cli

import (
	"strconv"

	"github.com/flxlabs/flotilla/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	DefTLSVerification = false
	DefCoordinatorURL  = "http://localhost:7070"
)

var fsdk sdk.SDK

func SetSDK(s sdk.SDK) {
	fsdk = s
}

var roundsCmd = []cobra.Command{
	{
		Use:   "status",
		Short: "Run status",
		Long:  `View progress of the current or most recent federated run.`,
		Run: func(cmd *cobra.Command, _ []string) {
			s, err := fsdk.Status()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	},
}

var modelsCmd = []cobra.Command{
	{
		Use:   "list",
		Short: "List models",
		Long:  `List committed global model versions.`,
		Run: func(cmd *cobra.Command, _ []string) {
			versions, err := fsdk.ListModels()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, versions)
		},
	},
	{
		Use:   "view <version>",
		Short: "View model",
		Long:  `View a committed global model by version.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			version, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			m, err := fsdk.GetModel(version)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, m)
		},
	},
}

func NewRoundsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "rounds [status]",
		Short: "Federated rounds",
		Long:  `Inspect federated training rounds.`,
	}

	for i := range roundsCmd {
		cmd.AddCommand(&roundsCmd[i])
	}

	return &cmd
}

func NewModelsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "models [list|view]",
		Short: "Global models",
		Long:  `List and view committed global models.`,
	}

	for i := range modelsCmd {
		cmd.AddCommand(&modelsCmd[i])
	}

	cmd.PersistentFlags().StringVarP(
		&DefCoordinatorURL,
		"coordinator-url",
		"c",
		DefCoordinatorURL,
		"Coordinator URL",
	)

	cmd.PersistentFlags().BoolVarP(
		&DefTLSVerification,
		"tls-verification",
		"v",
		DefTLSVerification,
		"TLS Verification",
	)

	return &cmd
}
