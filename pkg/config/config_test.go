package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if config.Simulation.TimeStep != 0.016 {
		t.Errorf("Expected TimeStep 0.016, got %f", config.Simulation.TimeStep)
	}
	if config.Guidance.Damping != 4 {
		t.Errorf("Expected Damping 4, got %f", config.Guidance.Damping)
	}
	if math.Abs(config.Guidance.ArrivalRadius*config.Guidance.ArrivalRadius-20) > 1e-9 {
		t.Errorf("Expected ArrivalRadius sqrt(20), got %f", config.Guidance.ArrivalRadius)
	}
	if config.Telemetry.Backend != "memory" {
		t.Errorf("Expected Backend 'memory', got '%s'", config.Telemetry.Backend)
	}

	if len(config.Agents) != 3 {
		t.Fatalf("Expected 3 agents, got %d", len(config.Agents))
	}
	leader := config.Agents[0]
	if leader.Name != "leader" {
		t.Errorf("Expected first agent 'leader', got '%s'", leader.Name)
	}
	if len(leader.Route) != 4 {
		t.Errorf("Expected 4 waypoints, got %d", len(leader.Route))
	}
	if config.Agents[1].TargetAgent != "leader" {
		t.Errorf("Expected interceptor to target 'leader', got '%s'", config.Agents[1].TargetAgent)
	}
}

func TestLoadConfig_Success(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "scenario.json")

	data := `{
  "simulation": {"timeStep": 0.02, "maxTicks": 100},
  "guidance": {"damping": 3},
  "agents": [
    {"name": "alpha", "position": [1, 2, 3], "drag": 0.1,
     "thrust": {"min": [-2, -2, -2], "max": [2, 2, 2], "rot": [1, 1, 1]},
     "route": [{"point": [0, 0, -10]}, {"agent": "beta"}],
     "intercept": true, "facing": "target"},
    {"name": "beta", "targetPoint": [5, 5, 5], "camera": "main"}
  ]
}`
	if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Simulation.TimeStep != 0.02 {
		t.Errorf("Expected TimeStep 0.02, got %f", config.Simulation.TimeStep)
	}
	if config.Simulation.MaxTicks != 100 {
		t.Errorf("Expected MaxTicks 100, got %d", config.Simulation.MaxTicks)
	}
	if config.Guidance.Damping != 3 {
		t.Errorf("Expected Damping 3, got %f", config.Guidance.Damping)
	}
	// Missing keys fall back to defaults.
	if config.Telemetry.Interval != 10 {
		t.Errorf("Expected default Interval 10, got %d", config.Telemetry.Interval)
	}

	if len(config.Agents) != 2 {
		t.Fatalf("Expected 2 agents, got %d", len(config.Agents))
	}
	alpha := config.Agents[0]
	if alpha.Position != [3]float64{1, 2, 3} {
		t.Errorf("Expected position [1 2 3], got %v", alpha.Position)
	}
	if alpha.Thrust == nil || alpha.Thrust.Max != [3]float64{2, 2, 2} {
		t.Errorf("Expected thrust max [2 2 2], got %+v", alpha.Thrust)
	}
	if len(alpha.Route) != 2 || alpha.Route[0].Point == nil || alpha.Route[1].Agent != "beta" {
		t.Errorf("Unexpected route %+v", alpha.Route)
	}
	if !alpha.Intercept || alpha.Facing != "target" {
		t.Errorf("Expected intercept/target, got %v/%s", alpha.Intercept, alpha.Facing)
	}
	beta := config.Agents[1]
	if beta.TargetPoint == nil || *beta.TargetPoint != [3]float64{5, 5, 5} {
		t.Errorf("Expected target point [5 5 5], got %v", beta.TargetPoint)
	}
	if beta.Camera != "main" {
		t.Errorf("Expected camera 'main', got '%s'", beta.Camera)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig("/path/that/does/not/exist/config.json")

	if err == nil {
		t.Error("Expected error when loading non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when file not found, got non-nil")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected read error, got '%s'", err.Error())
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid_config.json")

	invalidJSON := `{"simulation": {"timeStep": 0.02}, invalid json}`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0o644); err != nil {
		t.Fatalf("Failed to write invalid JSON file: %v", err)
	}

	config, err := LoadConfig(configPath)

	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
	if config != nil {
		t.Error("Expected nil config when JSON is invalid, got non-nil")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "scenario.yaml")

	data := `simulation:
  timeStep: 0.01
agents:
  - name: solo
    position: [0, 0, 5]
`
	if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Simulation.TimeStep != 0.01 {
		t.Errorf("Expected TimeStep 0.01, got %f", config.Simulation.TimeStep)
	}
	if len(config.Agents) != 1 || config.Agents[0].Position != [3]float64{0, 0, 5} {
		t.Errorf("Unexpected agents %+v", config.Agents)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	testConfig := DefaultConfig()
	testConfig.Simulation.MaxTicks = 123
	testConfig.Agents[2].Drag = 0.25

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "save_test_config.json")

	if err := SaveConfig(testConfig, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loadedConfig.Simulation.MaxTicks != 123 {
		t.Errorf("Expected MaxTicks 123, got %d", loadedConfig.Simulation.MaxTicks)
	}
	if len(loadedConfig.Agents) != len(testConfig.Agents) {
		t.Fatalf("Expected %d agents, got %d", len(testConfig.Agents), len(loadedConfig.Agents))
	}
	if loadedConfig.Agents[2].Drag != 0.25 {
		t.Errorf("Expected drag 0.25, got %f", loadedConfig.Agents[2].Drag)
	}
	if *loadedConfig.Agents[0].Route[1].Point != [3]float64{30, 0, -30} {
		t.Errorf("Expected second waypoint [30 0 -30], got %v", *loadedConfig.Agents[0].Route[1].Point)
	}
}

func TestSaveConfig_InvalidPath(t *testing.T) {
	err := SaveConfig(DefaultConfig(), filepath.Join(t.TempDir(), "missing", "dir", "config.json"))

	if err == nil {
		t.Error("Expected error when saving to invalid path, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to write config file") {
		t.Errorf("Expected write error, got '%s'", err.Error())
	}
}
