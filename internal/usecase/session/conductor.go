package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
	"github.com/johnquangdev/interview-coach/pkg/jobcontext"
)

// Sender writes commands to the client
type Sender interface {
	Send(ctx context.Context, cmd Command) error
}

// Analyzer runs the post-call pipeline
type Analyzer interface {
	Complete(ctx context.Context, sc entities.SessionContext, utterances []entities.Utterance, duration time.Duration) (*interview.Result, error)
}

// Options tune one conducted session
type Options struct {
	MaxDuration     time.Duration
	EndGrace        time.Duration // wait for trailing transcripts after end-session
	AnalysisTimeout time.Duration
	Assistant       AssistantConfig
}

// Conductor drives one live interview: it starts the voice session, collects
// final transcripts and runs the analysis exactly once when the call ends.
type Conductor struct {
	sc       entities.SessionContext
	bus      *Bus
	store    *Store
	sender   Sender
	analyzer Analyzer
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewConductor wires a session. The bus must not have been subscribed yet.
func NewConductor(sc entities.SessionContext, bus *Bus, sender Sender, analyzer Analyzer, opts Options, logger *zap.Logger) *Conductor {
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 15 * time.Minute
	}
	if opts.EndGrace <= 0 {
		opts.EndGrace = 5 * time.Second
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 3 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conductor{
		sc:       sc,
		bus:      bus,
		store:    NewStore(),
		sender:   sender,
		analyzer: analyzer,
		opts:     opts,
		logger:   logger.With(zap.String("interview_id", sc.InterviewID)),
		now:      time.Now,
	}
}

// Store exposes the session transcript
func (c *Conductor) Store() *Store {
	return c.store
}

type callClock struct {
	started   bool
	startedAt time.Time
}

// Run blocks until the call ends, the producer hangs up or ctx is cancelled.
// Cancellation tears the session down without analysis.
func (c *Conductor) Run(ctx context.Context) (*interview.Result, error) {
	events, unsubscribe, err := c.bus.Subscribe()
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.opts.MaxDuration)
	teardown := func() {
		timer.Stop()
		unsubscribe()
		c.store.Close()
	}

	assistant := c.opts.Assistant
	assistant.MaxDurationSeconds = int(c.opts.MaxDuration / time.Second)
	if err := c.sender.Send(ctx, Command{Type: CommandBeginSession, Assistant: &assistant}); err != nil {
		teardown()
		return nil, err
	}

	var (
		clock callClock
		grace <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			teardown()
			c.logger.Info("session torn down before analysis")
			return nil, ctx.Err()

		case <-timer.C:
			c.logger.Info("max session duration reached", zap.Duration("max_duration", c.opts.MaxDuration))
			c.send(ctx, Command{Type: CommandEndSession, Reason: "max-duration"})
			grace = time.After(c.opts.EndGrace)

		case <-grace:
			return c.finish(ctx, teardown, clock, "max-duration")

		case <-c.bus.HungUp():
			for drained := false; !drained; {
				select {
				case ev := <-events:
					if done, reason := c.handle(ctx, ev, &clock); done {
						return c.finish(ctx, teardown, clock, reason)
					}
				default:
					drained = true
				}
			}
			return c.finish(ctx, teardown, clock, "hangup")

		case ev := <-events:
			if done, reason := c.handle(ctx, ev, &clock); done {
				return c.finish(ctx, teardown, clock, reason)
			}
		}
	}
}

// handle applies one event and reports whether the call is over
func (c *Conductor) handle(ctx context.Context, ev Event, clock *callClock) (bool, string) {
	switch ev.Type {
	case EventCallStart:
		if !clock.started {
			clock.started = true
			clock.startedAt = c.now()
		}
		c.send(ctx, Command{Type: CommandState, State: StateActive})

	case EventCallEnd:
		return true, string(EventCallEnd)

	case EventSpeechStart:
		c.send(ctx, Command{Type: CommandState, State: StateSpeaking})

	case EventSpeechEnd:
		c.send(ctx, Command{Type: CommandState, State: StateListening})

	case EventTranscript:
		if !ev.IsFinalTranscript() {
			return false, ""
		}
		if err := c.store.Append(entities.NewUtterance(ev.Role, ev.Transcript, ev.Words)); err != nil {
			c.logger.Warn("dropped transcript fragment", zap.String("role", string(ev.Role)), zap.Error(err))
		}

	case EventError:
		state := ClassifyError(ev.Error)
		c.send(ctx, Command{Type: CommandState, State: state})
		if state == StateNoAudio {
			return false, ""
		}
		return true, string(state)

	default:
		c.logger.Debug("ignoring unknown event", zap.String("type", string(ev.Type)))
	}
	return false, ""
}

func (c *Conductor) finish(ctx context.Context, teardown func(), clock callClock, reason string) (*interview.Result, error) {
	teardown()

	if !clock.started && c.store.Len() == 0 {
		c.logger.Info("session ended before the call started", zap.String("reason", reason))
		c.send(ctx, Command{Type: CommandState, State: StateEnded, Reason: reason})
		return nil, nil
	}

	var duration time.Duration
	if clock.started {
		duration = c.now().Sub(clock.startedAt)
	}

	c.logger.Info("session ended",
		zap.String("reason", reason),
		zap.Int("utterances", c.store.Len()),
		zap.Duration("duration", duration),
	)
	c.send(ctx, Command{Type: CommandState, State: StateAnalyzing, Reason: reason})

	// The client may already be gone; analysis still runs to completion.
	runCtx, cancel := jobcontext.Begin(context.WithoutCancel(ctx), c.sc.InterviewID, jobcontext.KindLiveSession, c.opts.AnalysisTimeout)
	defer cancel()

	var result *interview.Result
	err := jobcontext.Run(runCtx, func(runCtx context.Context) error {
		var err error
		result, err = c.analyzer.Complete(runCtx, c.sc, c.store.Snapshot(), duration)
		return err
	})
	if err != nil {
		c.logger.Error("analysis failed", zap.Error(err))
		c.send(ctx, Command{Type: CommandState, State: StateEnded, Reason: "analysis-failed"})
		return nil, err
	}

	c.send(ctx, Command{Type: CommandAnalysis, Analysis: result})
	return result, nil
}

// send logs and drops write errors
func (c *Conductor) send(ctx context.Context, cmd Command) {
	if err := c.sender.Send(ctx, cmd); err != nil {
		c.logger.Debug("send to client failed", zap.String("command", string(cmd.Type)), zap.Error(err))
	}
}
