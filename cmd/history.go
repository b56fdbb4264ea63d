package cmd

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repstress/internal/storage"
	"repstress/internal/tui/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := storage.Open(viper.GetString("results-dir"))
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(limit)
		if err != nil {
			return err
		}

		if plain || len(records) == 0 {
			history.RenderPlain(os.Stdout, records)
			return nil
		}
		_, err = tea.NewProgram(history.NewModel(records), tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	historyCmd.Flags().Bool("plain", false, "Print the history instead of opening the interactive table")
	historyCmd.Flags().Int("limit", 50, "Maximum number of runs to show (0 for all)")
}
