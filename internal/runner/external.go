package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vimg/internal/log"
	"github.com/zjrosen/vimg/internal/loop"
	"github.com/zjrosen/vimg/internal/pubsub"
	"github.com/zjrosen/vimg/internal/tracing"
	"github.com/zjrosen/vimg/internal/worker"
)

// PipeOutput is the stdout of a shell command ending in |.
type PipeOutput struct {
	JobID   string
	Command string
	Stdout  string
}

// PipeEvent is a PipeOutput delivered to subscribers.
type PipeEvent = pubsub.Event[PipeOutput]

// ExternalConfig configures an External runner.
type ExternalConfig struct {
	Shell  string       // defaults to $SHELL, then /bin/sh
	Pool   *worker.Pool // required
	Loop   *loop.Loop   // required
	Open   func(paths []string) error
	Tracer trace.Tracer
}

// External runs shell commands off the update loop.
type External struct {
	shell  string
	pool   *worker.Pool
	loop   *loop.Loop
	open   func(paths []string) error
	tracer trace.Tracer
	broker *pubsub.Broker[PipeOutput]
}

// NewExternal creates an external runner.
func NewExternal(cfg ExternalConfig) *External {
	shell := cfg.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracing.Noop().Tracer()
	}
	return &External{
		shell:  shell,
		pool:   cfg.Pool,
		loop:   cfg.Loop,
		open:   cfg.Open,
		tracer: cfg.Tracer,
		broker: pubsub.NewBroker[PipeOutput](),
	}
}

// Subscribe returns a channel of pipe output for the lifetime of ctx.
func (e *External) Subscribe(ctx context.Context) <-chan pubsub.Event[PipeOutput] {
	return e.broker.Subscribe(ctx)
}

// Close releases subscribers.
func (e *External) Close() { e.broker.Close() }

// Run starts text on the pool. One leading ! is stripped; a trailing | makes
// the output a list of paths to open.
func (e *External) Run(text string) error {
	cmd := strings.TrimSpace(strings.TrimPrefix(text, "!"))
	pipe := strings.HasSuffix(cmd, "|")
	if pipe {
		cmd = strings.TrimSpace(strings.TrimSuffix(cmd, "|"))
	}
	jobID := uuid.NewString()
	log.Debug(log.CatExternal, "Starting shell command", "job", jobID, "command", cmd, "pipe", pipe)

	return e.pool.Submit(func(ctx context.Context) {
		e.execute(ctx, jobID, cmd, pipe)
	})
}

func (e *External) execute(ctx context.Context, jobID, cmd string, pipe bool) {
	_, span := e.tracer.Start(ctx, tracing.SpanExternal, trace.WithAttributes(
		attribute.String(tracing.AttrJobID, jobID),
		attribute.String(tracing.AttrCommandText, cmd),
	))

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, e.shell, "-c", cmd) //nolint:gosec // G204: running user commands is the point
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	span.SetAttributes(attribute.Int(tracing.AttrExitCode, code))

	if err != nil {
		log.Error(log.CatExternal, "Error running shell command",
			"job", jobID,
			"command", cmd,
			"code", code,
			"stderr", firstLine(stderr.String()),
			"error", err)
		tracing.End(span, err, "external")
		return
	}
	tracing.End(span, nil, "")

	if !pipe {
		log.Debug(log.CatExternal, "Ran shell command", "job", jobID, "command", cmd)
		return
	}

	out := PipeOutput{JobID: jobID, Command: cmd, Stdout: stdout.String()}
	e.broker.Publish(pubsub.OutputEvent, out)
	e.loop.Post(func() { e.receive(out) })
}

// receive opens the existing paths printed by a piped command. Runs on the loop.
func (e *External) receive(out PipeOutput) {
	var paths []string
	for _, line := range strings.Split(out.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := os.Stat(line); err == nil {
			paths = append(paths, line)
		}
	}
	if len(paths) == 0 {
		log.Warn(log.CatExternal, out.Command+": No paths from pipe", "job", out.JobID)
		return
	}
	log.Debug(log.CatExternal, "Opening paths from pipe", "job", out.JobID, "count", len(paths))
	if e.open == nil {
		return
	}
	if err := e.open(paths); err != nil {
		log.ErrorErr(log.CatExternal, "Error opening paths from pipe", err, "job", out.JobID)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
