package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gogpu/rq"
	"github.com/gogpu/rq/backend"
	"github.com/gogpu/rq/backend/software"
	"github.com/gogpu/rq/backend/trace"
	"github.com/gogpu/rq/internal/parallel"
	"github.com/gogpu/rq/op"
)

type renderOptions struct {
	config  string
	output  string
	metrics string

	// Flag values; applied over the config file only when set.
	producers int
	ops       int
	width     int
	height    int
	executor  string
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	def := defaultDemoConfig()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render shapes from concurrent producers",
		Long: `Spawns producers on a worker pool. Each encodes shapes and text into the
shared queue, mixing fire-and-forget and synchronous flushes, and disposes
one handle. The software target is then snapshotted on the flusher and
written as a PNG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.config, "config", "", "YAML config file")
	f.StringVarP(&opts.output, "output", "o", "", "output PNG (default rqdemo-<run>.png)")
	f.StringVar(&opts.metrics, "metrics", "", "write queue metrics in Prometheus text format to this file")
	f.IntVar(&opts.producers, "producers", def.Producers, "number of producer goroutines")
	f.IntVar(&opts.ops, "ops", def.Ops, "shapes encoded per producer")
	f.IntVar(&opts.width, "width", def.Width, "target width")
	f.IntVar(&opts.height, "height", def.Height, "target height")
	f.StringVar(&opts.executor, "executor", def.Executor, "registered executor (software|trace)")
	return cmd
}

// resolve merges the config file and explicitly set flags.
func (o *renderOptions) resolve(cmd *cobra.Command) (demoConfig, error) {
	c := defaultDemoConfig()
	if o.config != "" {
		var err error
		if c, err = loadDemoConfig(o.config); err != nil {
			return c, err
		}
	}
	f := cmd.Flags()
	if f.Changed("producers") {
		c.Producers = o.producers
	}
	if f.Changed("ops") {
		c.Ops = o.ops
	}
	if f.Changed("width") {
		c.Width = o.width
	}
	if f.Changed("height") {
		c.Height = o.height
	}
	if f.Changed("executor") {
		c.Executor = o.executor
	}
	return c, c.validate()
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := root.newLogger(cmd, runID)
	rq.SetLogger(logger)
	defer rq.SetLogger(nil)

	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := rq.NewMetrics("rqdemo")
	if err := m.Register(reg); err != nil {
		return err
	}

	q, err := rq.New(exec, append(cfg.Queue.Options(), rq.WithMetrics(m))...)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	q.Lock()
	q.Encode(op.Clear{R: 24, G: 26, B: 33, A: 255})
	q.Unlock()

	pool := parallel.NewPool(cfg.Producers)
	jobs := make([]parallel.Job, cfg.Producers)
	for i := range jobs {
		jobs[i] = func(ctx context.Context, _ int) error {
			return produce(ctx, q, i, cfg)
		}
	}
	runErr := pool.Run(ctx, jobs)
	pool.Close()

	var img *image.RGBA
	if sw, ok := exec.(*software.Executor); ok && runErr == nil {
		q.Lock()
		runErr = q.FlushAndRun(ctx, func(context.Context) error {
			img = sw.Snapshot()
			return nil
		})
		q.Unlock()
	}
	if err := q.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return fmt.Errorf("render: %w", runErr)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d producers x %d ops on %s\n", runID, cfg.Producers, cfg.Ops, cfg.Executor)

	if t, ok := exec.(*trace.Executor); ok {
		fmt.Fprintf(out, "executed %d commands in %d batches\n", len(t.Commands()), len(t.Batches()))
	}
	if img != nil {
		path := opts.output
		if path == "" {
			path = fmt.Sprintf("rqdemo-%s.png", runID[:8])
		}
		if err := writePNG(path, img); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (%dx%d)\n", path, cfg.Width, cfg.Height)
	}
	if opts.metrics != "" {
		if err := prometheus.WriteToTextfile(opts.metrics, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func newExecutor(cfg demoConfig) (backend.Executor, error) {
	if cfg.Executor == software.Name {
		return software.New(cfg.Width, cfg.Height), nil
	}
	return backend.NewExecutor(cfg.Executor)
}

// produce encodes cfg.Ops shapes for producer id. Every fourth shape is
// flushed without waiting and every sixteenth synchronously; the producer
// finishes by disposing its handle.
func produce(ctx context.Context, q *rq.Queue, id int, cfg demoConfig) error {
	rng := rand.New(rand.NewPCG(uint64(id), uint64(cfg.Ops)))
	w, h := float32(cfg.Width), float32(cfg.Height)

	q.Lock()
	q.Encode(
		op.SetColor{R: 230, G: 230, B: 230, A: 255},
		op.DrawText{X: 12, Y: 24 + float32(id)*20, Size: 16, Text: fmt.Sprintf("producer %d", id)},
	)
	q.Unlock()

	for j := range cfg.Ops {
		c := op.SetColor{
			R: uint8(rng.IntN(256)),
			G: uint8(rng.IntN(256)),
			B: uint8(rng.IntN(256)),
			A: 160,
		}
		x, y := rng.Float32()*w, rng.Float32()*h
		var shape op.Command
		switch j % 3 {
		case 0:
			shape = op.FillRect{X: int32(x), Y: int32(y), W: int32(8 + rng.IntN(40)), H: int32(8 + rng.IntN(40))}
		case 1:
			shape = op.DrawLine{X1: x, Y1: y, X2: x + rng.Float32()*80 - 40, Y2: y + rng.Float32()*80 - 40, Width: 1 + rng.Float32()*3}
		default:
			shape = op.FillPolygon{Points: []op.Point{
				{X: x, Y: y},
				{X: x + 30, Y: y + 5},
				{X: x + 12, Y: y + 28},
			}}
		}

		q.Lock()
		q.Encode(c, shape)
		var err error
		switch {
		case j%16 == 15:
			err = q.Flush(ctx, true)
		case j%4 == 3:
			err = q.Flush(ctx, false)
		}
		q.Unlock()
		if err != nil {
			return fmt.Errorf("producer %d: %w", id, err)
		}
	}
	return q.Dispose(ctx, uint64(id)+1)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
