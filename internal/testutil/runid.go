package testutil

import (
	"io"
	"log/slog"
)

// DefaultRunID is used by FixedRunID when no id is given.
const DefaultRunID = "test-run-default"

// FixedRunID hands out the same run id on every call.
//
// engine.FixedGenerator panics once its ids run out; FixedRunID never
// does, which suits scenarios that evaluate the same program repeatedly.
type FixedRunID struct {
	id string
}

// NewFixedRunID returns a generator for id, or DefaultRunID if id is empty.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate implements engine.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
