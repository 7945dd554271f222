package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/abel123/zeus/pkg/cmd/cmdutil"
	"github.com/abel123/zeus/pkg/config"
)

const defaultConfigFile = "zeus.yaml"

// userConfig is loaded before any sub-command runs.
var userConfig *config.Config

var RootCmd = &cobra.Command{
	Use:   "zeus",
	Short: "zeus keeps zen annotations drawn on trading charts",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotenv(viper.GetString("dotenv")); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		userConfig = cfg
		setupLogging(cfg.Logging)
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	cmdutil.PersistentFlags(RootCmd.PersistentFlags())
}

func loadDotenv(dotenvFile string) error {
	if dotenvFile == "" {
		return nil
	}

	if _, err := os.Stat(dotenvFile); err != nil {
		return nil
	}

	if err := godotenv.Load(dotenvFile); err != nil {
		return errors.Wrapf(err, "error loading dotenv file %s", dotenvFile)
	}

	return nil
}

func loadConfig() (*config.Config, error) {
	configFile := viper.GetString("config")
	if configFile == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			configFile = defaultConfigFile
		}
	}

	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
		log.Debugf("config loaded from %s", configFile)
	}

	if baseURL := viper.GetString("analytics-url"); baseURL != "" {
		cfg.Analytics.BaseURL = baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func setupLogging(c config.LoggingConfig) {
	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})

	logger := log.StandardLogger()
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	switch viper.GetString("env") {
	case "production", "prod":
		if c.File == "" {
			return
		}

		writer := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
		}

		logger.AddHook(
			lfshook.NewHook(
				lfshook.WriterMap{
					log.DebugLevel: writer,
					log.InfoLevel:  writer,
					log.WarnLevel:  writer,
					log.ErrorLevel: writer,
					log.FatalLevel: writer,
				},
				&log.JSONFormatter{},
			),
		)
	}
}

func Execute() {
	viper.SetEnvPrefix("zeus")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, ZEUS_DEBUG, ZEUS_ANALYTICS_URL, ZEUS_ENV...
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
