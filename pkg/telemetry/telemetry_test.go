package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-flightcore/pkg/config"
	"github.com/opd-ai/go-flightcore/pkg/physics"
	"github.com/opd-ai/go-flightcore/pkg/thrust"
	"github.com/opd-ai/go-flightcore/pkg/tracking"
	"github.com/opd-ai/go-flightcore/pkg/validation"
)

func testSample(tick, id uint64) Sample {
	pose := physics.NewPose(physics.World(float64(tick), 0, 0))
	k := physics.Kinematics{Velocity: physics.Local(0, 0, -2), Acceleration: physics.Local(0, 0, -5)}
	var tr tracking.Tracker
	tr.SetTarget(physics.World(float64(tick), 0, 4))
	return NewSample(tick, id, "agent", pose, k, thrust.DefaultCharacteristics(), tr)
}

func TestNewSample(t *testing.T) {
	s := testSample(3, 7)

	assert.Equal(t, uint64(3), s.Tick)
	assert.Equal(t, uint64(7), s.AgentID)
	assert.Equal(t, physics.World(3, 0, 0), s.Position())
	assert.Equal(t, physics.Local(0, 0, -2), s.Velocity())
	assert.Equal(t, 1.0, s.RotW)
	assert.InDelta(t, 5.0, s.Acceleration, 1e-12)
	assert.InDelta(t, 1.0, s.Utilization, 1e-12)
	assert.InDelta(t, 4.0, s.TargetDistance, 1e-12)
}

func TestNewSample_NoTarget(t *testing.T) {
	s := NewSample(0, 1, "idle", physics.NewPose(physics.WorldVec{}), physics.Kinematics{},
		thrust.DefaultCharacteristics(), tracking.Tracker{})
	assert.Equal(t, -1.0, s.TargetDistance)
	assert.Zero(t, s.Utilization)
}

func TestMemoryRecorder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRecorder()

	require.NoError(t, m.Record(ctx, []Sample{testSample(1, 1), testSample(1, 2)}))
	require.NoError(t, m.Record(ctx, []Sample{testSample(2, 1)}))
	require.NoError(t, m.Flush(ctx))

	assert.Equal(t, 3, m.Len())
	agent := m.ForAgent(1)
	require.Len(t, agent, 2)
	assert.Equal(t, uint64(1), agent[0].Tick)
	assert.Equal(t, uint64(2), agent[1].Tick)

	require.NoError(t, m.Close())
	err := m.Record(ctx, []Sample{testSample(3, 1)})
	assert.True(t, errors.Is(err, ErrClosed))
	assert.Equal(t, 3, m.Len(), "closed recorder keeps its samples readable")
}

func TestGormRecorder_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDatabase("sqlite", "")
	require.NoError(t, err)

	rec, err := NewGormRecorder(db)
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.Ping(ctx))

	in := []Sample{testSample(2, 5), testSample(1, 5), testSample(1, 6)}
	require.NoError(t, rec.Record(ctx, in))
	require.NoError(t, rec.Record(ctx, nil))
	assert.Zero(t, in[0].ID, "caller's samples are not modified")

	got, err := rec.Query(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Tick)
	assert.Equal(t, uint64(2), got[1].Tick)
	assert.Equal(t, "agent", got[0].Agent)
	assert.InDelta(t, 4.0, got[1].TargetDistance, 1e-12)

	var count int64
	require.NoError(t, rec.DB().Model(&Sample{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	require.NoError(t, rec.Close())
	assert.True(t, errors.Is(rec.Record(ctx, in), ErrClosed))
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	_, err := OpenDatabase("mysql", "dsn")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestInfluxRecorder_Point(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewInfluxRecorder(InfluxOptions{
		URL:      "http://localhost:8086",
		Org:      "flightcore",
		Bucket:   "telemetry",
		Epoch:    epoch,
		TimeStep: 16 * time.Millisecond,
	})
	defer r.client.Close()

	assert.Equal(t, epoch.Add(160*time.Millisecond), r.Timestamp(10))

	p := r.Point(testSample(10, 42))
	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, epoch.Add(160*time.Millisecond), p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "agent", tags["agent"])
	assert.Equal(t, "42", tags["agent_id"])

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, 10.0, fields["pos_x"])
	assert.Equal(t, 4.0, fields["target_distance"])
}

func TestOpen(t *testing.T) {
	rec, err := Open(config.TelemetryConfig{Enabled: false}, 0.016, nil)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = Open(config.TelemetryConfig{Enabled: true, Backend: "memory"}, 0.016, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRecorder{}, rec)
	assert.NoError(t, Ping(context.Background(), rec))

	rec, err = Open(config.TelemetryConfig{Enabled: true, Backend: "sqlite"}, 0.016, nil)
	require.NoError(t, err)
	assert.IsType(t, &GormRecorder{}, rec)
	assert.NoError(t, Ping(context.Background(), rec))
	assert.NoError(t, rec.Close())

	_, err = Open(config.TelemetryConfig{Enabled: true, Backend: "kafka"}, 0.016, nil)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestOpen_AcceptsValidatedFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		expected Recorder
	}{
		{"empty backend", "", &MemoryRecorder{}},
		{"sqlite without dsn", "sqlite", &GormRecorder{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Telemetry.Enabled = true
			cfg.Telemetry.Backend = tt.backend
			cfg.Telemetry.DSN = ""

			_, err := validation.ValidateConfig(cfg)
			require.NoError(t, err)

			rec, err := Open(cfg.Telemetry, cfg.Simulation.TimeStep, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.expected, rec)
			assert.NoError(t, rec.Close())
		})
	}
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) Record(context.Context, []Sample) error {
	f.calls++
	return errors.New("disk full")
}
func (f *failingRecorder) Flush(context.Context) error { return nil }
func (f *failingRecorder) Close() error                { return nil }

func TestTelemetrySystem_Interval(t *testing.T) {
	m := NewMemoryRecorder()
	sys := &TelemetrySystem{Recorder: m, Interval: 3}

	basic := ecs.NewBasic()
	pose := physics.NewPose(physics.WorldVec{})
	var k physics.Kinematics
	c := thrust.DefaultCharacteristics()
	var tr tracking.Tracker
	sys.Add(&basic, "drone", &pose, &k, &c, &tr)

	for i := 0; i < 10; i++ {
		sys.Tick(0.016)
	}

	samples := m.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, []uint64{3, 6, 9}, []uint64{samples[0].Tick, samples[1].Tick, samples[2].Tick})
	assert.Equal(t, "drone", samples[0].Agent)

	sys.Remove(basic)
	for i := 0; i < 3; i++ {
		sys.Tick(0.016)
	}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, TelemetryPriority, sys.Priority())
}

func TestTelemetrySystem_FailuresAreNotFatal(t *testing.T) {
	f := &failingRecorder{}
	sys := &TelemetrySystem{Recorder: f, Clock: func() uint64 { return 99 }}

	basic := ecs.NewBasic()
	pose := physics.NewPose(physics.WorldVec{})
	var k physics.Kinematics
	c := thrust.DefaultCharacteristics()
	var tr tracking.Tracker
	sys.Add(&basic, "drone", &pose, &k, &c, &tr)

	sys.Tick(0.016)
	sys.Tick(0.016)

	assert.Equal(t, 2, f.calls)
	assert.Equal(t, uint64(2), sys.Failures())
}
