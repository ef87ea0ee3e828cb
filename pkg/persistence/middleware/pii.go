package middleware

import (
	"context"
	"regexp"

	"github.com/perceptlab/staircase/pkg/ports"
)

// MaskedValue replaces values whose record key matches a PII pattern.
const MaskedValue = "***"

type piiMiddleware struct {
	next     ports.DataSink
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of record keys
// matching the patterns. Participant identifiers and free-text fields can be
// kept out of exported data this way.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.DataSink) ports.DataSink {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) AddData(ctx context.Context, key string, value any) error {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return m.next.AddData(ctx, key, MaskedValue)
		}
	}
	return m.next.AddData(ctx, key, value)
}
