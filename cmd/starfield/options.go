package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/starfield/config"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the tunables accepted in the settings file with their defaults",
	Run: func(cmd *cobra.Command, args []string) {
		writeOptions(os.Stdout, config.DefaultSettings())
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

func writeOptions(w io.Writer, s *config.Settings) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Default", "Description"})
	for _, o := range s.Options() {
		t.AppendRow(table.Row{o.Key, o.Value(), o.Help})
	}
	t.Render()
}
