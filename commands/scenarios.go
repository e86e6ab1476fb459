package commands

import (
	"fmt"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/zeu5/doomgym/doom"
)

func ScenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario catalog",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			lines := []string{"Level | Name | Config | Actions"}
			for _, s := range doom.Scenarios {
				lines = append(lines, fmt.Sprintf("%d | %s | %s | %d", s.Level, s.Name, s.Config, s.Actions))
			}
			fmt.Fprintln(cmd.OutOrStdout(), columnize.SimpleFormat(lines))
		},
	}
}

func KeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show the keys mapped to actions for manual play",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			mapping := doom.KeysToAction()
			lines := []string{"Keys | Action"}
			for _, combo := range doom.SortedCombos() {
				lines = append(lines, fmt.Sprintf("%s | %d", combo, mapping[combo]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), columnize.SimpleFormat(lines))
		},
	}
}
