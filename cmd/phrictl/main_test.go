package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/phrictl/internal/config"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"move.y=0.2", " speed.max = 1e-1 "})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["move.y"] != 0.2 || got["speed.max"] != 0.1 {
		t.Errorf("unexpected assignments: %v", got)
	}

	for _, bad := range []string{"move.y", "=1", "move.y=fast"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"speed.max=0.05, 0.1,", "run.dt=0.01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "speed.max" || names[1] != "run.dt" {
		t.Errorf("unexpected names: %v", names)
	}
	if len(ranges[0]) != 2 || ranges[0][1] != 0.1 || len(ranges[1]) != 1 {
		t.Errorf("unexpected ranges: %v", ranges)
	}

	cases := [][]string{
		nil,
		{"speed.max"},
		{"speed.max="},
		{"speed.max=1", "speed.max=2"},
		{"speed.max=a"},
	}
	for _, c := range cases {
		if _, _, err := parseGrid(c); err == nil {
			t.Errorf("expected error for %v", c)
		}
	}
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	setupFlags(cmd)
	configFile, preset, scenarioFile = "", "", ""
	return cmd
}

func TestLoadConfigPreset(t *testing.T) {
	cmd := newCommand()
	if err := cmd.Flags().Parse([]string{"--preset", "gantry/estop", "--time", "0.5"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "estop" || cfg.Run.Duration != 0.5 || cfg.Run.Dt != config.DefaultDt {
		t.Errorf("unexpected config: name %s, duration %g, dt %g", cfg.Name, cfg.Run.Duration, cfg.Run.Dt)
	}

	cmd = newCommand()
	if err := cmd.Flags().Parse([]string{"--preset", "push"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Robot.Kinematics != "planar_arm" {
		t.Errorf("expected planar_arm, got %s", cfg.Robot.Kinematics)
	}

	cmd = newCommand()
	if err := cmd.Flags().Parse([]string{"--preset", "nope"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestLoadConfigScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "push.yaml")
	data := []byte("name: push\nevents:\n  - at: 0.5\n    until: 1\n    param: env.fy\n    value: 10\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newCommand()
	if err := cmd.Flags().Parse([]string{"--preset", "estop", "--scenario", path}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Scenario) != 2 {
		t.Fatalf("expected 2 events, got %d", len(cfg.Scenario))
	}
	if ev := cfg.Scenario[1]; ev.Param != "env.fy" || ev.At != 0.5 || ev.Until != 1 || ev.Value != 10 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config invalid: %v", err)
	}
}

func TestLoadConfigExclusive(t *testing.T) {
	cmd := newCommand()
	if err := cmd.Flags().Parse([]string{"--preset", "estop", "--config", "x.yaml"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd); err == nil {
		t.Error("expected exclusive flags error")
	}
}

func TestAllPresets(t *testing.T) {
	names := allPresets()
	if len(names) != 6 {
		t.Fatalf("expected 6 presets, got %v", names)
	}
	for _, name := range names {
		if lookupPreset(name) == nil {
			t.Errorf("preset %s not found", name)
		}
	}
}
