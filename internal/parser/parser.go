// Package parser extracts decision candidates from raw completion text.
//
// Models answer in one of two dialects. The structured dialect is a JSON
// object, possibly wrapped in prose or a markdown fence. The line dialect
// is plain text with the direction on the first line and labeled fields
// below it. The structured dialect is tried first; the line dialect is
// the fallback and, for non-empty input, always produces a candidate.
package parser

import (
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/ChardPeter/chaddybot-bridge/internal/errors"
)

// Candidate holds raw extracted fields keyed by canonical field name.
// Values keep whatever type the dialect produced; normalization and
// coercion happen downstream.
type Candidate map[string]any

// Strategy extracts a candidate from raw completion text for one dialect.
type Strategy interface {
	Name() string
	Extract(raw string) (Candidate, error)
}

// Parser tries each dialect in order and returns the first candidate.
type Parser struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// New creates a parser with the standard dialect order.
func New(logger zerolog.Logger) *Parser {
	return &Parser{
		strategies: []Strategy{
			&StructuredStrategy{},
			NewLineStrategy(logger),
		},
		logger: logger,
	}
}

// Parse extracts a candidate from raw completion text. It returns the
// candidate and the name of the dialect that matched.
func (p *Parser) Parse(raw string) (Candidate, string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, "", apperrors.NewParseError("none", "empty completion text")
	}

	for _, s := range p.strategies {
		candidate, err := s.Extract(raw)
		if err != nil {
			p.logger.Debug().Str("dialect", s.Name()).Err(err).Msg("dialect did not match")
			continue
		}
		return candidate, s.Name(), nil
	}

	return nil, "", apperrors.NewParseError("all", "no dialect matched completion text")
}
