package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement every sample is written to.
const Measurement = "flight_sample"

// InfluxOptions configures an InfluxRecorder.
type InfluxOptions struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	// Epoch is the timestamp of tick zero.
	Epoch time.Time
	// TimeStep is the simulated duration of one tick.
	TimeStep time.Duration
}

// InfluxRecorder writes samples as points tagged by agent.
type InfluxRecorder struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
	opts   InfluxOptions
	closed bool
}

// NewInfluxRecorder creates a client. It does not contact the server; use
// Ping to check reachability.
func NewInfluxRecorder(opts InfluxOptions) *InfluxRecorder {
	client := influxdb2.NewClientWithOptions(
		opts.URL,
		opts.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)
	writer := client.WriteAPIBlocking(opts.Org, opts.Bucket)
	writer.EnableBatching()
	return &InfluxRecorder{client: client, writer: writer, opts: opts}
}

// Timestamp maps a tick onto wall time.
func (r *InfluxRecorder) Timestamp(tick uint64) time.Time {
	return r.opts.Epoch.Add(time.Duration(tick) * r.opts.TimeStep)
}

// Point converts a sample to a line-protocol point.
func (r *InfluxRecorder) Point(s Sample) *write.Point {
	return influxdb2.NewPoint(
		Measurement,
		map[string]string{
			"agent":    s.Agent,
			"agent_id": strconv.FormatUint(s.AgentID, 10),
		},
		map[string]interface{}{
			"tick":            s.Tick,
			"pos_x":           s.PosX,
			"pos_y":           s.PosY,
			"pos_z":           s.PosZ,
			"rot_w":           s.RotW,
			"rot_x":           s.RotX,
			"rot_y":           s.RotY,
			"rot_z":           s.RotZ,
			"vel_x":           s.VelX,
			"vel_y":           s.VelY,
			"vel_z":           s.VelZ,
			"ang_vel_x":       s.AngVelX,
			"ang_vel_y":       s.AngVelY,
			"ang_vel_z":       s.AngVelZ,
			"acceleration":    s.Acceleration,
			"utilization":     s.Utilization,
			"target_distance": s.TargetDistance,
		},
		r.Timestamp(s.Tick),
	)
}

// Record queues points; they are sent in batches and on Flush.
func (r *InfluxRecorder) Record(ctx context.Context, samples []Sample) error {
	if r.closed {
		return ErrClosed
	}
	points := make([]*write.Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, r.Point(s))
	}
	if err := r.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write points: %w", err)
	}
	return nil
}

// Flush sends any batched points.
func (r *InfluxRecorder) Flush(ctx context.Context) error {
	if err := r.writer.Flush(ctx); err != nil {
		return fmt.Errorf("flush points: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable.
func (r *InfluxRecorder) Ping(ctx context.Context) error {
	ok, err := r.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("influxdb at %s not ready", r.opts.URL)
	}
	return nil
}

// Close flushes pending points and releases the client.
func (r *InfluxRecorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := r.writer.Flush(ctx)
	r.client.Close()
	return err
}
