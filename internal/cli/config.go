package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides: RULEBOARD_FORMAT,
// RULEBOARD_VERBOSE, RULEBOARD_DB.
const envPrefix = "RULEBOARD"

// loadConfig layers settings into opts. Precedence, highest first: explicit
// flags, environment, config file, flag defaults.
func loadConfig(v *viper.Viper, opts *RootOptions, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("db", "")

	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read %s: %w", opts.Config, err)
		}
	}

	flags := cmd.Root().PersistentFlags()
	for _, name := range []string{"format", "verbose"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}

	opts.Format = v.GetString("format")
	opts.Verbose = v.GetBool("verbose")
	opts.Database = v.GetString("db")
	return nil
}
