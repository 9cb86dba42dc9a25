package config

import (
	"fmt"
	"strings"
)

// Issue is one problem found in a config field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// ValidationError lists every issue found by Validate, one per line.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "invalid config"
	}
	var b strings.Builder
	for i, issue := range err.Issues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(issue.String())
	}
	return b.String()
}

// issues accumulates problems in the order they are found.
type issues []Issue

func (l *issues) add(field, message string) {
	*l = append(*l, Issue{Field: field, Message: message})
}

func (l *issues) addf(field, format string, args ...any) {
	l.add(field, fmt.Sprintf(format, args...))
}

func (l issues) err() error {
	if len(l) == 0 {
		return nil
	}
	return &ValidationError{Issues: l}
}
