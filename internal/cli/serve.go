package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "Override api.port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON API over the configured store. Clients authenticate with
bearer tokens from /api/auth/login; the CLI session is not used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			app.Config.API.Port, _ = cmd.Flags().GetInt("port")
		}
		return app.Serve(cmd.Context())
	},
}
