/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for the SEMS tools. CustomFormatter renders one colored
line per entry with sorted fields; EventFormatter adds an event tag for inference, sweep,
rule-base and report entries and renders their fields compactly.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders entries as single colored lines
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var output strings.Builder

	// Add timestamp
	if f.Timestamp {
		timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
		if f.Colors {
			output.WriteString(fmt.Sprintf("\033[36m%s\033[0m ", timestamp)) // Cyan
		} else {
			output.WriteString(fmt.Sprintf("%s ", timestamp))
		}
	}

	// Add log level with color
	level := strings.ToUpper(entry.Level.String())
	if f.Colors {
		levelColor := f.getLevelColor(entry.Level)
		output.WriteString(fmt.Sprintf("\033[%dm%s\033[0m ", levelColor, level))
	} else {
		output.WriteString(fmt.Sprintf("%s ", level))
	}

	// Add caller information
	if f.Caller && entry.HasCaller() {
		caller := fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
		if f.Colors {
			output.WriteString(fmt.Sprintf("\033[33m[%s]\033[0m ", caller)) // Yellow
		} else {
			output.WriteString(fmt.Sprintf("[%s] ", caller))
		}
	}

	// Add message
	output.WriteString(entry.Message)

	// Add structured fields
	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String()), nil
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	case logrus.FatalLevel:
		return 35 // Magenta
	case logrus.PanicLevel:
		return 35 // Magenta
	default:
		return 37 // White
	}
}

// formatFields formats structured fields in key order
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	var parts []string

	for _, key := range sortedKeys(fields) {
		formattedValue := f.formatValue(fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, formattedValue)) // Blue key, Green value
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, formattedValue))
		}
	}

	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func (f *CustomFormatter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if len(v) > 50 {
			return fmt.Sprintf("%s...", v[:50])
		}
		return v
	case float64:
		return fmt.Sprintf("%.4g", v)
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// EventFormatter tags inference events and formats their fields compactly
type EventFormatter struct {
	CustomFormatter
}

// Format formats a log entry with its event tag
func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var output strings.Builder

	if f.Timestamp {
		timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
		if f.Colors {
			output.WriteString(fmt.Sprintf("\033[36m%s\033[0m ", timestamp))
		} else {
			output.WriteString(fmt.Sprintf("%s ", timestamp))
		}
	}

	level := strings.ToUpper(entry.Level.String())
	if f.Colors {
		output.WriteString(fmt.Sprintf("\033[%dm%s\033[0m ", f.getLevelColor(entry.Level), level))
	} else {
		output.WriteString(fmt.Sprintf("%s ", level))
	}

	if tag := EventTag(entry.Message); tag != "" {
		if f.Colors {
			output.WriteString(fmt.Sprintf("\033[35m[%s]\033[0m ", tag)) // Magenta
		} else {
			output.WriteString(fmt.Sprintf("[%s] ", tag))
		}
	}

	if f.Caller && entry.HasCaller() {
		caller := fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
		if f.Colors {
			output.WriteString(fmt.Sprintf("\033[33m[%s]\033[0m ", caller))
		} else {
			output.WriteString(fmt.Sprintf("[%s] ", caller))
		}
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatEventFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String()), nil
}

// EventTag returns the tag for a known event message, or ""
func EventTag(message string) string {
	switch {
	case strings.HasPrefix(message, "Inference computed"):
		return "COMPUTE"
	case strings.HasPrefix(message, "Input rejected"):
		return "INPUT"
	case strings.HasPrefix(message, "Surface sweep"):
		return "SWEEP"
	case strings.HasPrefix(message, "Rule base"):
		return "RULES"
	case strings.HasPrefix(message, "Report"):
		return "REPORT"
	default:
		return ""
	}
}

func (f *EventFormatter) formatEventFields(fields logrus.Fields) string {
	var parts []string

	for _, key := range sortedKeys(fields) {
		formattedValue := f.formatEventValue(key, fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, formattedValue))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, formattedValue))
		}
	}

	return strings.Join(parts, " ")
}

func (f *EventFormatter) formatEventValue(key string, value interface{}) string {
	switch {
	case strings.HasPrefix(key, "in."), strings.HasPrefix(key, "out."):
		if v, ok := value.(float64); ok {
			return fmt.Sprintf("%.2f", v)
		}
	case key == "duration":
		if d, ok := value.(time.Duration); ok {
			return d.Round(time.Microsecond).String()
		}
	}
	return f.formatValue(value)
}

func sortedKeys(fields logrus.Fields) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
