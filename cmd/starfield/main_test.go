package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lixenwraith/starfield/beatsync"
	"github.com/lixenwraith/starfield/config"
)

func TestWriteOptionsListsEveryKey(t *testing.T) {
	s := config.DefaultSettings()
	var buf bytes.Buffer
	writeOptions(&buf, s)

	out := buf.String()
	for _, key := range s.Keys() {
		if !strings.Contains(out, key) {
			t.Errorf("options table missing %q", key)
		}
	}
}

func TestWriteAnalysis(t *testing.T) {
	cfg := config.DefaultSync()
	a := &beatsync.Analysis{
		Beats:    []beatsync.Beat{{Confidence: 0.1}, {Confidence: 0.9}},
		Tatums:   []beatsync.Tatum{{Confidence: 0.5}},
		Sections: []beatsync.Section{{Start: 0, Tempo: 120, Loudness: -5, Key: 2}},
	}
	var buf bytes.Buffer
	writeAnalysis(&buf, a, &cfg)

	out := buf.String()
	for _, want := range []string{"120.0", "-5.0 dB", "450", "beats 1/2", "tatums 1/1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadAppFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SPOTIFY_TOKEN", "from-env")
	t.Setenv("REDIS_ADDR", "env:6379")

	cmd := rootCmd
	if err := cmd.ParseFlags([]string{"--token", "from-flag", "--click"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	t.Cleanup(func() {
		cmd.Flags().Set("token", "")
		cmd.Flags().Set("click", "false")
		cmd.Flags().Lookup("token").Changed = false
		cmd.Flags().Lookup("click").Changed = false
	})

	app := loadApp(cmd)
	if app.Token != "from-flag" {
		t.Errorf("Token = %q, want flag value", app.Token)
	}
	if !app.Click {
		t.Error("Click not set from flag")
	}
	if app.RedisAddr != "env:6379" {
		t.Errorf("RedisAddr = %q, want environment value", app.RedisAddr)
	}
}
