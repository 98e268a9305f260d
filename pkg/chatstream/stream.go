// Package chatstream turns a workflow's event stream into the ordered,
// well-formed UI frame sequence the chat client renders incrementally.
package chatstream

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// FrameWriter lets lifecycle callbacks append frames to the outbound
// stream, e.g. a suggested-questions annotation after completion.
type FrameWriter interface {
	Write(frame types.Frame)
}

// StreamCallbacks are optional hooks invoked at stream lifecycle points.
// Each is awaited before the next source event is consumed, so callbacks
// observe deltas in emission order.
type StreamCallbacks struct {
	// OnStart is called once before the first event is consumed.
	OnStart func(ctx context.Context, w FrameWriter) error

	// OnText is called for each text chunk, in order.
	OnText func(ctx context.Context, text string) error

	// OnComplete is called after the main content is done but before the
	// stream closes. This is the place to append trailing annotations.
	OnComplete func(ctx context.Context, w FrameWriter) error

	// OnFinal is called once with the full accumulated completion text.
	OnFinal func(ctx context.Context, completion string) error

	// OnPauseForHumanInput is called when a human input request is
	// observed. After it returns, the stream halts without further frames.
	OnPauseForHumanInput func(ctx context.Context, ev *types.HumanInputRequestEvent) error
}

// Options configures ToDataStream.
type Options struct {
	Callbacks StreamCallbacks

	// SourceErr, if set, is consulted once the source is exhausted. A
	// non-nil result becomes the stream's terminal error and suppresses
	// OnComplete/OnFinal.
	SourceErr func() error
}

// DataStream is the consumable side of a multiplexed stream.
type DataStream struct {
	frames chan types.Frame
	done   chan struct{}

	mu  sync.RWMutex
	err error
}

// Frames returns the ordered outbound frame sequence. The channel is
// closed when the stream terminates for any reason.
func (s *DataStream) Frames() <-chan types.Frame {
	return s.frames
}

// Err reports the stream's terminal error, if any. Valid after the frames
// channel is closed.
func (s *DataStream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Wait blocks until the stream terminates and returns its error.
func (s *DataStream) Wait() error {
	<-s.done
	return s.Err()
}

func (s *DataStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// ToDataStream drains events in arrival order and emits a frame sequence
// honoring the single-open-text-block invariant. Cancelling ctx stops the
// stream silently: no error frame, no OnFinal.
func ToDataStream(ctx context.Context, events <-chan types.WorkflowEvent, opts Options) *DataStream {
	s := &DataStream{
		frames: make(chan types.Frame),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.frames)

		err := s.run(ctx, events, opts)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.setErr(ClassifyStreamError(err))
		}
	}()

	return s
}

func (s *DataStream) run(ctx context.Context, events <-chan types.WorkflowEvent, opts Options) error {
	cb := opts.Callbacks
	w := &streamWriter{ctx: ctx, frames: s.frames}

	var (
		textID     string
		completion strings.Builder
	)

	openText := func() error {
		if textID != "" {
			return nil
		}
		textID = "text-" + uuid.NewString()
		return w.emit(types.TextStartFrame{ID: textID})
	}

	closeText := func() error {
		if textID == "" {
			return nil
		}
		frame := types.TextEndFrame{ID: textID}
		textID = ""
		return w.emit(frame)
	}

	if cb.OnStart != nil {
		if err := cb.OnStart(ctx, w); err != nil {
			return err
		}
	}

	paused := false

loop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				break loop
			}

			switch e := ev.(type) {
			case *types.AgentDeltaEvent:
				if e.Delta == "" {
					// Delta-less agent events carry status metadata only.
					if err := closeText(); err != nil {
						return err
					}
					if err := w.emit(annotateOpaque(e)); err != nil {
						return err
					}
					continue
				}

				if err := openText(); err != nil {
					return err
				}
				completion.WriteString(e.Delta)
				if err := w.emit(types.TextDeltaFrame{ID: textID, Delta: e.Delta}); err != nil {
					return err
				}
				if cb.OnText != nil {
					if err := cb.OnText(ctx, e.Delta); err != nil {
						return err
					}
				}

			case *types.ToolCallEvent:
				if err := closeText(); err != nil {
					return err
				}
				if err := w.emit(annotateToolCall(e)); err != nil {
					return err
				}

			case *types.ToolResultEvent:
				// Tool results interrupt in-progress prose: the result is
				// rendered as a card, not inline text.
				if err := closeText(); err != nil {
					return err
				}
				if err := w.emit(annotateToolResult(e)); err != nil {
					return err
				}

			case *types.HumanInputRequestEvent:
				if err := w.emit(annotateHumanInput(e)); err != nil {
					return err
				}
				if cb.OnPauseForHumanInput != nil {
					if err := cb.OnPauseForHumanInput(ctx, e); err != nil {
						return err
					}
					// Hard stop. The open text block, if any, is left for
					// the resume cycle to close.
					paused = true
					break loop
				}

			case *types.HumanInputResponseEvent:
				if err := closeText(); err != nil {
					return err
				}
				if err := w.emit(annotateOpaque(e)); err != nil {
					return err
				}

			case *types.StopEvent:
				break loop

			default:
				if err := closeText(); err != nil {
					return err
				}
				if err := w.emit(annotateOpaque(ev)); err != nil {
					return err
				}
			}
		}
	}

	if paused {
		return nil
	}

	if opts.SourceErr != nil {
		if err := opts.SourceErr(); err != nil {
			return err
		}
	}

	if err := closeText(); err != nil {
		return err
	}

	if cb.OnComplete != nil {
		if err := cb.OnComplete(ctx, w); err != nil {
			return err
		}
	}

	if cb.OnFinal != nil {
		if err := cb.OnFinal(ctx, completion.String()); err != nil {
			return err
		}
	}

	return nil
}

type streamWriter struct {
	ctx    context.Context
	frames chan<- types.Frame
}

func (w *streamWriter) emit(frame types.Frame) error {
	select {
	case w.frames <- frame:
		return nil
	case <-w.ctx.Done():
		return w.ctx.Err()
	}
}

// Write implements FrameWriter for callbacks. Writes after cancellation
// are dropped.
func (w *streamWriter) Write(frame types.Frame) {
	_ = w.emit(frame)
}
