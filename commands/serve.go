package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zeu5/doomgym/doom"
	"github.com/zeu5/doomgym/server"
)

const addrKey = "addr"

func ServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve environments over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newGame, err := gameFactory()
			if err != nil {
				return err
			}
			var viewer doom.ViewerFactory
			if frames := config.GetString(framesKey); frames != "" {
				viewer = doom.FrameDumperFactory(afero.NewOsFs(), frames)
			}
			s := server.New(server.Config{
				Addr:        config.GetString(addrKey),
				ScenarioDir: config.GetString(scenarioDirKey),
				NewGame:     newGame,
				Viewer:      viewer,
			})

			ctx, stop := interruptContext()
			defer stop()
			return s.Run(ctx)
		},
	}
	cmd.Flags().String(addrKey, ":5000", "Address to listen on")
	cmd.Flags().String(framesKey, "", "Folder frames rendered on request go to, dropped when empty")
	return cmd
}
