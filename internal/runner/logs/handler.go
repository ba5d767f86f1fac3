package logs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/plai-group/primitive-runner/internal/pkg/logger"
)

const (
	logBufferLimit   = 50
	logIntervalLimit = 5 * time.Second

	// maxLineSize bounds a single log line; longer lines are split.
	maxLineSize = 1024 * 1024
)

// Handler reads a process output pipe line by line and writes the lines to
// its sinks in batches.
type Handler struct {
	logType string
	logger  *zap.Logger
	pipe    io.Reader
	sinks   []io.Writer

	buffer []string

	bufferLimit int
	interval    time.Duration
}

func NewHandler(log *zap.Logger, logType string, pipe io.Reader, sinks ...io.Writer) *Handler {
	return &Handler{
		logType:     logType,
		logger:      log.Named(logger.ComponentNameLogs).With(zap.String("type", logType)),
		pipe:        pipe,
		sinks:       sinks,
		buffer:      []string{},
		bufferLimit: logBufferLimit,
		interval:    logIntervalLimit,
	}
}

// Start blocks until the pipe returns EOF or an error, flushing whatever is
// still buffered before it returns.
func (h *Handler) Start() {
	h.logger.Debug("starting log handler")
	h.reader()
	h.logger.Debug("stopping log handler")
}

func (h *Handler) reader() {

	defer h.flushLogs()

	// Lines longer than the buffer come back from ReadLine in chunks.
	buf := bufio.NewReaderSize(h.pipe, maxLineSize)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		line, _, err := buf.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Error("failed to read log pipe", zap.Error(err))
				_, _ = io.Copy(io.Discard, h.pipe)
			}
			return
		}

		h.buffer = append(h.buffer, string(line))

		select {
		case <-ticker.C:
			h.flushLogs()
		default:
			if len(h.buffer) >= h.bufferLimit {
				h.flushLogs()
			}
		}
	}
}

func (h *Handler) flushLogs() {

	if len(h.buffer) == 0 {
		return
	}

	batch := strings.Join(h.buffer, "\n") + "\n"
	numLines := len(h.buffer)

	h.buffer = h.buffer[:0]

	for _, sink := range h.sinks {
		if _, err := sink.Write([]byte(batch)); err != nil {
			h.logger.Error("failed to write log batch", zap.Error(err))
		}
	}

	h.logger.Debug("successfully wrote log batch", zap.Int("num_lines", numLines))
}

// CreateFile opens a log file for appending, creating it when needed.
func CreateFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
}
