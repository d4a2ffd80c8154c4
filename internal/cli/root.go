package cli

import (
	"github.com/rongwang/tripdate-server/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the trip server.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "tripdate",
		Short:         "Trip date poll server",
		SilenceErrors: true,
		Long:          "Hosts create trips with candidate dates, guests vote Yes, Maybe or No, and the best dates are recommended.",
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load configuration from this .env file instead of ./.env")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig reads configuration, honouring --env-file when given.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.EnvFile != "" {
		return config.LoadConfigFile(o.EnvFile)
	}
	return config.LoadConfig(), nil
}
