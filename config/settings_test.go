package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/starfield/core"
)

func TestSetOption(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(*Settings) bool
	}{
		{"float", "edge_size", "250", func(s *Settings) bool { return s.Simulation.EdgeSize == 250 }},
		{"int from float", "max_particles", "120.0", func(s *Settings) bool { return s.Simulation.MaxParticles == 120 }},
		{"bool", "warp", "false", func(s *Settings) bool { return !s.Simulation.Warp }},
		{"bool numeric", "draw_debug", "1", func(s *Settings) bool { return s.Simulation.DrawDebug }},
		{"milliseconds", "poll_interval_ms", "900", func(s *Settings) bool { return s.Sync.PollInterval == 900*time.Millisecond }},
		{"duration string", "backward_seek_tolerance_ms", "1.5s", func(s *Settings) bool {
			return s.Sync.BackwardSeekTolerance == 1500*time.Millisecond
		}},
		{"negative loudness", "loudness_baseline", "-5", func(s *Settings) bool { return s.Sync.LoudnessBaseline == -5 }},
		{"spawn algorithm", "spawn_algorithm", "0", func(s *Settings) bool { return s.Simulation.SpawnAlgorithm == SpawnUniform }},
		{"case and spaces", " Beat_Strength ", "8", func(s *Settings) bool { return s.Sync.BeatStrength == 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			if err := s.SetOption(tt.key, tt.value); err != nil {
				t.Fatalf("SetOption(%q, %q) error: %v", tt.key, tt.value, err)
			}
			if !tt.check(s) {
				t.Errorf("SetOption(%q, %q) did not apply", tt.key, tt.value)
			}
		})
	}
}

func TestSetOptionRejects(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "gravity", "1", ErrUnknownOption},
		{"garbage float", "edge_size", "wide", ErrInvalidValue},
		{"negative float", "edge_size", "-1", ErrInvalidValue},
		{"negative int", "max_particles", "-3", ErrInvalidValue},
		{"bad bool", "warp", "maybe", ErrInvalidValue},
		{"bad duration", "poll_interval_ms", "soon", ErrInvalidValue},
		{"spawn algorithm out of range", "spawn_algorithm", "2", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			before := *s

			err := s.SetOption(tt.key, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetOption(%q, %q) = %v, want %v", tt.key, tt.value, err, tt.wantErr)
			}
			if *s != before {
				t.Errorf("settings mutated on rejected option")
			}
		})
	}
}

func TestKeysSortedAndGettable(t *testing.T) {
	s := DefaultSettings()
	keys := s.Keys()
	if len(keys) == 0 {
		t.Fatal("no keys")
	}
	for i, k := range keys {
		if i > 0 && keys[i-1] >= k {
			t.Errorf("keys not sorted or duplicated at %d: %q >= %q", i, keys[i-1], k)
		}
		v, err := s.Get(k)
		if err != nil {
			t.Errorf("Get(%q) error: %v", k, err)
		}
		// Every value must survive a round trip through SetOption
		if err := s.SetOption(k, v); err != nil {
			t.Errorf("SetOption(%q, Get()=%q) error: %v", k, v, err)
		}
	}
	if *s != *DefaultSettings() {
		t.Error("round trip changed settings")
	}
}

func TestApply(t *testing.T) {
	s := DefaultSettings()
	errs := s.Apply(map[string]string{
		"edge_size":     "100",
		"bogus":         "1",
		"beat_strength": "x",
	})

	if len(errs) != 2 {
		t.Fatalf("Apply errors = %v, want 2", errs)
	}
	if s.Simulation.EdgeSize != 100 {
		t.Errorf("EdgeSize = %v, want 100", s.Simulation.EdgeSize)
	}
	if s.Sync.BeatStrength != DefaultSync().BeatStrength {
		t.Errorf("rejected beat_strength was applied")
	}
}

func TestLoadApp(t *testing.T) {
	t.Setenv("SPOTIFY_TOKEN", "tok")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ANALYSIS_CACHE_TTL", "2h")
	t.Setenv("STARFIELD_LOG_LEVEL", "debug")

	app, _ := LoadApp(filepath.Join(t.TempDir(), "missing.env"))

	if app.Token != "tok" {
		t.Errorf("Token = %q", app.Token)
	}
	if app.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want default", app.APIURL)
	}
	if app.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", app.RedisDB)
	}
	if app.CacheTTL != 2*time.Hour {
		t.Errorf("CacheTTL = %v, want 2h", app.CacheTTL)
	}
	if app.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", app.LogLevel)
	}
}

func TestReadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starfield.env")
	content := "# tuning\nedge_size=300\nwarp=false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	batch, err := ReadSettings(path)
	if err != nil {
		t.Fatalf("ReadSettings error: %v", err)
	}
	if batch["edge_size"] != "300" || batch["warp"] != "false" {
		t.Errorf("batch = %v", batch)
	}

	if _, err := ReadSettings(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatcherDeliversBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "starfield.env")
	if err := os.WriteFile(path, []byte("edge_size=300\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, zap.NewNop())
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("edge_size=200\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case batch := <-w.Batches():
			if batch["edge_size"] == "200" {
				return
			}
		case <-timeout:
			t.Fatal("no batch delivered after write")
		}
	}
}

func TestWatcherPanicReachesCrashHandler(t *testing.T) {
	caught := make(chan any, 1)
	core.SetCrashHandler(func(r any) { caught <- r })
	t.Cleanup(func() { core.SetCrashHandler(nil) })

	// No fsnotify watcher behind it, the loop panics on its first receive
	w := &Watcher{
		batches: make(chan map[string]string, 1),
		done:    make(chan struct{}),
		log:     zap.NewNop(),
	}
	w.start()

	select {
	case r := <-caught:
		if r == nil {
			t.Error("crash handler received nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher panic did not reach the crash handler")
	}
	<-w.done
}
