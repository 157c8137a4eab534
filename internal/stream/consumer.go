// Package stream consumes the backend's analysis event stream and folds it
// into a progress/result state machine.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nvander/tidyflow/internal/common"
	"github.com/nvander/tidyflow/internal/model"
	"github.com/nvander/tidyflow/internal/service"
)

// eventPrefix is the framing marker the backend prepends to each event line.
const eventPrefix = "data: "

// maxFrameSize bounds a single frame; the completed event carries the whole
// file set in one line.
const maxFrameSize = 16 * 1024 * 1024

// State is the consumer's position in the analysis lifecycle.
type State string

// Consumer states. Done and Errored are terminal; no event is accepted
// afterward.
const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
	StateDone     State = "done"
	StateErrored  State = "errored"
)

// FailedError carries the reason from an explicit failure event, verbatim.
type FailedError struct {
	Reason string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("analysis failed: %s", e.Reason)
}

// Result is the outcome of a stream that ended with a completed event.
type Result struct {
	Run   *model.AnalysisRun
	Files []model.FileRecord
}

// Consumer decodes newline-delimited analysis events from a transport
// stream. A Consumer tracks one analysis run and is not reusable.
type Consumer struct {
	cache         service.ResultCache
	state         State
	lastProcessed int
	started       bool
}

// NewConsumer creates a consumer. A nil cache disables result persistence.
func NewConsumer(cache service.ResultCache) *Consumer {
	return &Consumer{
		cache: cache,
		state: StateIdle,
	}
}

// State returns the consumer's current state.
func (c *Consumer) State() State {
	return c.state
}

// Consume reads frames from r until a terminal event or transport close,
// invoking onEvent for each well-formed event in arrival order. Malformed
// frames are logged and skipped; they never abort the stream. A failure
// event or a transport close without a terminal event leaves the consumer
// Errored. The context is honored at every frame boundary.
//
// On a completed event the full file set is persisted to the result cache,
// last-write-wins per analyzed path.
func (c *Consumer) Consume(ctx context.Context, r io.Reader, path string, onEvent func(model.AnalysisEvent)) (*Result, error) {
	if c.state != StateIdle {
		return nil, fmt.Errorf("consumer already used (state %s)", c.state)
	}
	c.state = StateScanning

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			c.state = StateErrored
			return nil, err
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, eventPrefix) {
			slog.Debug("Ignoring unframed stream line", "line", line)
			continue
		}

		var event model.AnalysisEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, eventPrefix)), &event); err != nil {
			// One corrupt line must not abort a multi-minute scan.
			slog.Warn("Skipping malformed event frame", "error", err)
			continue
		}

		if !c.accept(event) {
			continue
		}

		if onEvent != nil {
			onEvent(event)
		}

		switch event.Kind {
		case model.EventCompleted:
			c.state = StateDone
			return c.complete(ctx, path, event.Files)
		case model.EventFailed:
			c.state = StateErrored
			return nil, &FailedError{Reason: event.Reason}
		}
	}

	c.state = StateErrored
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("analysis stream transport error: %w", err)
	}
	return nil, common.ErrStreamClosed
}

// accept applies the state machine's ordering rules to a decoded event.
// Events that violate them are treated like malformed frames: logged and
// dropped.
func (c *Consumer) accept(event model.AnalysisEvent) bool {
	switch event.Kind {
	case model.EventStarted:
		if c.started {
			slog.Warn("Skipping duplicate started event")
			return false
		}
		c.started = true
		return true
	case model.EventProgress:
		if !c.started {
			slog.Warn("Skipping progress event before started")
			return false
		}
		if event.Processed < c.lastProcessed {
			slog.Warn("Skipping regressing progress event",
				"processed", event.Processed,
				"last_processed", c.lastProcessed)
			return false
		}
		c.lastProcessed = event.Processed
		return true
	case model.EventCompleted, model.EventFailed:
		return true
	}

	slog.Warn("Skipping event of unknown kind", "kind", event.Kind)
	return false
}

// complete builds the run record and persists it to the result cache.
func (c *Consumer) complete(ctx context.Context, path string, files []model.FileRecord) (*Result, error) {
	var totalBytes int64
	for _, f := range files {
		totalBytes += f.SizeBytes
	}

	result := &Result{
		Run: &model.AnalysisRun{
			ID:          uuid.NewString(),
			Path:        path,
			TotalFiles:  len(files),
			TotalBytes:  totalBytes,
			CompletedAt: time.Now(),
		},
		Files: files,
	}

	if c.cache != nil {
		if err := c.cache.SaveAnalysis(ctx, result.Run, files); err != nil {
			return nil, fmt.Errorf("failed to cache analysis results: %w", err)
		}
	}

	slog.Info("Analysis completed",
		"run_id", result.Run.ID,
		"path", path,
		"files", len(files))

	return result, nil
}
