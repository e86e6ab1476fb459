package commands

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// config holds the flags of every command, overridable with DOOMGYM_*
// environment variables
var config = viper.New()

const (
	logLevelKey  = "log-level"
	logFormatKey = "log-format"

	episodesKey = "episodes"
	horizonKey  = "horizon"
	runsKey     = "runs"
	saveKey     = "save"
	timeoutKey  = "timeout"
	levelKey    = "level"

	scenarioDirKey    = "scenario-dir"
	engineKey         = "engine"
	engineBinaryKey   = "engine-binary"
	engineAddrKey     = "engine-addr"
	engineDirKey      = "engine-dir"
	engineTimeoutKey  = "engine-timeout"
	engineEpisodeKey  = "engine-episode-tics"
	redisAddrKey      = "redis-addr"
	redisKeyKey       = "redis-key"
	redisMaxLenKey    = "redis-max-len"
	framesKey         = "frames"
	consecutiveErrKey = "abort-after-errors"
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "doomgym",
		Short:         "Run agents against doom scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return configureLog(config)
		},
	}

	config.SetEnvPrefix("DOOMGYM")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	flags := rootCommand.PersistentFlags()
	flags.String(logLevelKey, logrus.InfoLevel.String(), fmt.Sprintf("Minimum logging level, one of %v", expectedLogLevels))
	flags.String(logFormatKey, string(textFormat), fmt.Sprintf("Log format, one of %v", expectedLogFormats))
	flags.IntP(levelKey, "l", 0, "Scenario level")
	flags.IntP(episodesKey, "e", 100, "Number of episodes to run")
	flags.Int(horizonKey, 1000, "Maximum number of steps of each episode")
	flags.Int(runsKey, 1, "Number of experiment runs")
	flags.StringP(saveKey, "s", "results", "Save the result data in the specified folder, nothing is saved when empty")
	flags.Duration(timeoutKey, 0, "Timeout of each episode, none when zero")
	flags.Int(consecutiveErrKey, 10, "Abort an experiment after this many failed episodes in a row")
	flags.String(scenarioDirKey, "scenarios", "Directory of the scenario configuration files")
	flags.String(engineKey, processEngine, fmt.Sprintf("Engine session, one of %v", engineKinds))
	flags.String(engineBinaryKey, "vizdoom-bridge", "Path of the engine bridge binary")
	flags.String(engineAddrKey, "127.0.0.1:7777", "Address of the first engine bridge, later ones use the next ports")
	flags.String(engineDirKey, "", "Working directory of the engine bridges, one subfolder each")
	flags.Duration(engineTimeoutKey, 0, "Timeout of the engine bridge requests")
	flags.Int(engineEpisodeKey, 0, "Episode length in tics of the memory engine")
	flags.String(redisAddrKey, "", "Also record episode summaries to this redis server")
	flags.String(redisKeyKey, "", "Redis list the summaries are pushed to")
	flags.Int64(redisMaxLenKey, 0, "Keep only this many summaries in the redis list")
	flags.SortFlags = false

	// adding the subcommands here
	rootCommand.AddCommand(ScenariosCommand())
	rootCommand.AddCommand(KeysCommand())
	rootCommand.AddCommand(RunCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}
