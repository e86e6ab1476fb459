package commands

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var log = logrus.WithField("component", "cmd")

type logFormat string

const (
	textFormat logFormat = "text"
	jsonFormat logFormat = "json"
)

var expectedLogFormats = []logFormat{textFormat, jsonFormat}

const logLevelOff = "off"

var expectedLogLevels = []string{
	logrus.TraceLevel.String(),
	logrus.DebugLevel.String(),
	logrus.InfoLevel.String(),
	logrus.WarnLevel.String(),
	logrus.ErrorLevel.String(),
	logLevelOff,
}

func configureLog(cfg *viper.Viper) error {
	switch format := logFormat(cfg.GetString(logFormatKey)); format {
	case jsonFormat:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case textFormat:
		logrus.SetFormatter(&prefixFormatter{PrefixFields: []string{"component", "scenario"}})
	default:
		return fmt.Errorf("invalid log format specified %q expecting one of %v", format, expectedLogFormats)
	}

	levelStr := cfg.GetString(logLevelKey)
	if levelStr == logLevelOff {
		logrus.SetLevel(logrus.PanicLevel)
		return nil
	}
	for _, expected := range expectedLogLevels {
		if expected == levelStr {
			level, err := logrus.ParseLevel(levelStr)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		}
	}
	return fmt.Errorf("invalid log level specified %q expecting one of %v", levelStr, expectedLogLevels)
}

// prefixFormatter writes the prefix fields in order before the message
// and the other fields sorted after it
type prefixFormatter struct {
	PrefixFields []string
}

func (f *prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	prefixFields, otherFields := f.splitFields(entry)

	b := &bytes.Buffer{}
	b.WriteString(entry.Time.Format(time.RFC3339))

	level := strings.ToUpper(entry.Level.String())
	prefix := make([]string, 0, len(prefixFields))
	for _, field := range prefixFields {
		prefix = append(prefix, fmt.Sprintf("%v", entry.Data[field]))
	}
	levelColor(entry.Level).Fprintf(b, " [%s] [%s] ", level[:4], strings.Join(prefix, ">"))

	b.WriteString(strings.TrimSpace(entry.Message))
	for _, field := range otherFields {
		fmt.Fprintf(b, " [%s:%v]", field, entry.Data[field])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *prefixFormatter) splitFields(entry *logrus.Entry) ([]string, []string) {
	prefixFields := []string{}
	otherFields := []string{}
	isPrefixField := map[string]bool{}
	for _, field := range f.PrefixFields {
		isPrefixField[field] = true
		if _, ok := entry.Data[field]; ok {
			prefixFields = append(prefixFields, field)
		}
	}
	for field := range entry.Data {
		if !isPrefixField[field] {
			otherFields = append(otherFields, field)
		}
	}
	sort.Strings(otherFields)
	return prefixFields, otherFields
}

func levelColor(level logrus.Level) *color.Color {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return color.New(color.FgWhite)
	case logrus.WarnLevel:
		return color.New(color.FgYellow)
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}
