// append-only request logs with a timestamp prefix per line
package weblog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// one line per entry: "[dd/Mon/YYYY HH:MM:SS] message"
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b := make([]byte, 0, len(e.Message)+24)
	b = e.Time.AppendFormat(b, "[02/Jan/2006 15:04:05] ")
	b = append(b, e.Message...)
	b = append(b, '\n')
	return b, nil
}

// Log is one append-only log file.
type Log struct {
	file *os.File
	log  *logrus.Logger
}

// Open opens (or creates) the log file for appending.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)
	l.SetFormatter(lineFormatter{})
	l.SetLevel(logrus.InfoLevel)

	return &Log{file: f, log: l}, nil
}

// Printf appends one formatted, timestamped line.
func (l *Log) Printf(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *Log) Close() error {
	return l.file.Close()
}
