package cmd

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	logwriter "github.com/sirupsen/logrus/hooks/writer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nunit-reporter/nunit-reporter/pkg"
	"github.com/nunit-reporter/nunit-reporter/pkg/actions"
	"github.com/nunit-reporter/nunit-reporter/pkg/cmd/parse"
	"github.com/nunit-reporter/nunit-reporter/pkg/cmd/publish"
	"github.com/nunit-reporter/nunit-reporter/pkg/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nunit-reporter",
	Short: "Publish NUnit test results as a GitHub check run",
	Long: `nunit-reporter reads an NUnit XML result file and publishes it as a check run
on the current commit, annotating the source line of every failing test.

Inputs are read from flags, from the INPUT_* variables set by the Actions runner
and from the GITHUB_* workflow context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Validate logging level
		loglevel := viper.GetString(pkg.KeyLogLevel)
		logrusLevel, err := log.ParseLevel(loglevel)
		if err != nil {
			return err
		}
		log.SetLevel(logrusLevel)

		// Additional log options
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})

		log.SetOutput(io.Discard)
		log.AddHook(&logwriter.Hook{ // Send logs with level higher than warning to stderr
			Writer: os.Stderr,
			LogLevels: []log.Level{
				log.PanicLevel,
				log.FatalLevel,
				log.ErrorLevel,
				log.WarnLevel,
			},
		})
		log.AddHook(&logwriter.Hook{
			Writer: os.Stdout,
			LogLevels: []log.Level{
				log.InfoLevel,
				log.DebugLevel,
				log.TraceLevel,
			},
		})

		return pkg.ReadConfigFile(viper.GetViper())
	},
	RunE: publish.RunE,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		if actions.Running() {
			actions.SetFailed(os.Stdout, err)
		}
		os.Exit(1)
	}
}

func initBindFlag(flag string) {
	err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag))
	if err != nil {
		log.Warnf("Unable to bind flag %s\n", flag)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String(pkg.KeyLogLevel, "info", "logging level")
	rootCmd.PersistentFlags().String(pkg.KeyConfig, "", "YAML config file (default "+pkg.DefaultConfigFile()+")")
	rootCmd.PersistentFlags().String(pkg.KeyWorkspace, "", "checkout directory failure paths are made relative to")
	initBindFlag(pkg.KeyLogLevel)
	initBindFlag(pkg.KeyConfig)
	initBindFlag(pkg.KeyWorkspace)

	publish.AddFlags(rootCmd.PersistentFlags())

	// Link in child commands
	rootCmd.AddCommand(publish.NewCmdPublish())
	rootCmd.AddCommand(parse.NewCmdParse())
	rootCmd.AddCommand(version.NewCmdVersion())
}

// initConfig reads in ENV variables if set.
func initConfig() {
	pkg.BindEnv(viper.GetViper())
}
