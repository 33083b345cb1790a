package cmd

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
)

// lineFormatter renders log lines as "[YYYY-MM-DD HH:MM:SS] [logger] [LEVEL]
// message" — the fixed log-line format. sweep's ParseSweepLine matches its
// patterns anywhere in a line, so it does not depend on this prefix.
type lineFormatter struct {
	Logger string
}

func (f lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] [%s] [%s] %s\n",
		entry.Time.Format("2006-01-02 15:04:05"),
		f.Logger,
		entry.Level.String(),
		entry.Message)
	return b.Bytes(), nil
}
