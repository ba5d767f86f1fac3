package logs

import (
	"bufio"
	"context"
	"os"

	"github.com/hpcloud/tail"
)

// Stream follows a log file from its start, sending each line to the stream
// channel until the context is cancelled.
type Stream struct {
	path     string
	errorCh  chan<- error
	streamCh chan<- string
}

func NewStream(path string, streamCh chan<- string, errorCh chan<- error) *Stream {
	return &Stream{
		path:     path,
		errorCh:  errorCh,
		streamCh: streamCh,
	}
}

func (s *Stream) Run(ctx context.Context) {

	fileTail, err := tail.TailFile(s.path,
		tail.Config{
			Follow:    true,
			MustExist: true,
			Location: &tail.SeekInfo{
				Offset: 0,
				Whence: 0,
			},
			Logger: tail.DiscardingLogger,
		},
	)
	if err != nil {
		s.sendErr(ctx, err)
		return
	}

	defer func(fileTail *tail.Tail) { _ = fileTail.Stop() }(fileTail)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-fileTail.Lines:
			if !ok {
				if err := fileTail.Err(); err != nil {
					s.sendErr(ctx, err)
				}
				return
			}
			if line == nil {
				continue
			}
			if line.Err != nil {
				s.sendErr(ctx, line.Err)
				return
			}
			select {
			case s.streamCh <- line.Text:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Stream) sendErr(ctx context.Context, err error) {
	select {
	case s.errorCh <- err:
	case <-ctx.Done():
	}
}

// Get returns every line currently in the file.
func Get(file string) ([]string, error) {

	var lines []string

	fileHandle, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fileHandle.Close()

	scanner := bufio.NewScanner(fileHandle)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	return lines, scanner.Err()
}
