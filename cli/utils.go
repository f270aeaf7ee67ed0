package cli

import (
	"encoding/json"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

// RawOutput switches off colorized JSON, for piping into other tools.
var RawOutput bool

func logJSONCmd(cmd cobra.Command, iList ...interface{}) {
	for _, i := range iList {
		m, err := json.Marshal(i)
		if err != nil {
			logErrorCmd(cmd, err)

			return
		}

		pj, err := prettyjson.Format(m)
		if err != nil {
			logErrorCmd(cmd, err)

			return
		}

		out := color.New()
		if RawOutput {
			out.DisableColor()
		}
		out.Fprintln(cmd.OutOrStdout(), string(pj))
	}
}

func logErrorCmd(cmd cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "\nerror: ")

	color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), err.Error())
}

func logSuccessCmd(cmd cobra.Command, msg string) {
	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), msg)
}

func logOKCmd(cmd cobra.Command) {
	logSuccessCmd(cmd, "\nok")
}

func logUsageCmd(cmd cobra.Command, u string) {
	color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "\nusage: "+u)
}
