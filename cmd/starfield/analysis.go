package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/beatsync"
	"github.com/lixenwraith/starfield/config"
	"github.com/lixenwraith/starfield/spotify"
)

// analysisTimeout bounds the one-shot fetch, the live scheduler retries instead
const analysisTimeout = 30 * time.Second

var analysisCmd = &cobra.Command{
	Use:   "analysis <track-id>",
	Short: "Print the sections of a track and the field tuning each one produces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := loadApp(cmd)
		if app.Token == "" {
			return fmt.Errorf("no Spotify token, set SPOTIFY_TOKEN or pass --token")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
		defer cancel()

		client := spotify.NewClient(app.APIURL, spotify.NewToken(app.Token), zap.NewNop())
		a, err := client.FetchAnalysis(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch analysis: %w", err)
		}

		settings := config.DefaultSettings()
		writeAnalysis(os.Stdout, a, &settings.Sync)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analysisCmd)
}

// writeAnalysis renders the section table followed by the event counts that survive filtering
func writeAnalysis(w io.Writer, a *beatsync.Analysis, cfg *config.Sync) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Start", "Tempo", "Key", "Loudness", "Warp", "World", "Push", "Spawn r", "Rotation"})

	for _, sec := range a.Sections {
		m := beatsync.SectionMood(sec, cfg)
		warp := text.FgHiBlack.Sprint("no")
		if m.Warp {
			warp = text.FgYellow.Sprint("yes")
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%.1fs", sec.Start),
			fmt.Sprintf("%.1f", sec.Tempo),
			sec.Key,
			fmt.Sprintf("%.1f dB", sec.Loudness),
			warp,
			fmt.Sprintf("%.3f", m.WorldSpeed),
			fmt.Sprintf("%.2f", m.PushSpeed),
			fmt.Sprintf("%.0f", m.SpawnRadius),
			fmt.Sprintf("%.3f", m.RotationSpeed),
		})
	}
	t.Render()

	beats := beatsync.FilterBeats(a.Beats, cfg.BeatMinConfidence)
	tatums := beatsync.FilterTatums(a.Tatums, cfg.TatumMinConfidence)
	fmt.Fprintf(w, "\nbeats %d/%d  tatums %d/%d  segments %d\n",
		len(beats), len(a.Beats), len(tatums), len(a.Tatums), len(a.Segments))
}
