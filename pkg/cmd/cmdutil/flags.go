package cmdutil

import "github.com/spf13/pflag"

// PersistentFlags defines the flags shared by every command
func PersistentFlags(flags *pflag.FlagSet) {
	flags.Bool("debug", false, "debug flag")
	flags.String("config", "", "config file, zeus.yaml is used when present")
	flags.String("dotenv", ".env.local", "the dotenv file to load")
	flags.String("analytics-url", "", "base url of the analytics service, overrides the config")
}
