package main

import (
	"strconv"

	"github.com/Meijaisharma/PathshalaPro/pkg/cli"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve <id>...",
		Short: "Show the backend message IDs for public content IDs",
		Long: `Resolve applies the configured identifier mapping to one or more public
content IDs, the numbers used in /api/video/{id} and /api/pdf/{id}.

Examples:
  pathshala resolve 42
  pathshala resolve 120 121 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := cli.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			res, err := newResolver(cfg)
			if err != nil {
				return cli.NewConfigError("resolver", "invalid mapping", err)
			}

			table := &cli.Table{Headers: []string{"client_id", "message_id"}}
			for _, raw := range args {
				clientID, messageID, err := res.ParseAndResolve(raw)
				if err != nil {
					return cli.NewCommandError("resolve", err)
				}
				table.AddRow(strconv.FormatInt(clientID, 10), strconv.FormatInt(messageID, 10))
			}
			return cli.NewFormatter(outFormat).FormatTo(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")
	return cmd
}
