package logbuf

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger writes formatted lines to a sink and mirrors every line into a
// Buffer so the logs API can serve the recent history. The line format
// is `2006-01-02 15:04:05 - [tag] - LEVEL - msg`, which consumers of
// /api/logs parse, so keep it stable.
type Logger struct {
	out *log.Logger
	buf *Buffer
	tag string
}

// New creates a Logger backed by a fresh Buffer. When no sinks are
// given, lines go to stderr. Timestamps are rendered by the Logger
// itself, so the underlying log.Logger carries no flags.
func New(capacity int, sinks ...io.Writer) *Logger {
	var w io.Writer = os.Stderr
	if len(sinks) == 1 {
		w = sinks[0]
	} else if len(sinks) > 1 {
		w = io.MultiWriter(sinks...)
	}

	l := &Logger{
		out: log.New(w, "", 0),
		buf: NewBuffer(capacity),
		tag: "main",
	}
	l.Infof("Logger initialized")
	return l
}

// WithTag returns a Logger sharing the same sink and buffer but
// labelling its lines with tag (worker identity, usually).
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{out: l.out, buf: l.buf, tag: tag}
}

// Buffer exposes the shared line buffer for the logs API.
func (l *Logger) Buffer() *Buffer {
	return l.buf
}

func (l *Logger) Infof(format string, args ...any)  { l.emit("INFO", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.emit("WARNING", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.emit("ERROR", format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.emit("DEBUG", format, args...) }

func (l *Logger) emit(level, format string, args ...any) {
	line := fmt.Sprintf("%s - [%s] - %s - %s",
		time.Now().Format("2006-01-02 15:04:05"),
		l.tag,
		level,
		fmt.Sprintf(format, args...))
	l.out.Println(line)
	l.buf.Append(line)
}
