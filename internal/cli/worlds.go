package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// worldsCommand creates the worlds command for listing world files.
func (c *CLI) worldsCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "worlds [dir]",
		Short: "List world files in a directory",
		Long: `List world files in a directory.

Each entry shows the world ID, display name, and room/zone counts. With
--pick an interactive picker opens and the chosen file path is printed,
which composes with other commands:

  mapforge render $(mapforge worlds --pick ./worlds)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if pick {
				path, err := pickWorld(cmd.Context(), dir)
				if err != nil {
					return err
				}
				if path != "" {
					fmt.Println(path)
				}
				return nil
			}

			entries, err := loadWorldEntries(dir)
			if err != nil {
				return fmt.Errorf("scan %s: %w", dir, err)
			}
			if len(entries) == 0 {
				printInfo("No world files in %s", dir)
				return nil
			}

			for _, e := range entries {
				if e.Err != nil {
					printWarning("%s: %v", e.ID, e.Err)
					continue
				}
				name := e.Name
				if name == "" {
					name = e.ID
				}
				printKeyValue(e.ID, fmt.Sprintf("%s (%d rooms, %d zones)", name, e.Rooms, e.Zones))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "pick a world interactively and print its path")

	return cmd
}
