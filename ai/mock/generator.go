package mock

import (
	"context"
	"fmt"
	"strings"
)

// Generator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type Generator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned-answer behavior.
	GenerateFunc func(ctx context.Context, question string, passages []string) (string, error)

	callCount    int
	lastQuestion string
	lastPassages []string
}

// NewGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a canned answer that echoes the question and the number
// of context passages, so tests can assert the generator was wired with the
// expected inputs.
func (m *Generator) Generate(ctx context.Context, question string, passages []string) (string, error) {
	m.callCount++
	m.lastQuestion = question
	m.lastPassages = passages

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, question, passages)
	}

	return fmt.Sprintf("mock answer to %q from %d passages", strings.TrimSpace(question), len(passages)), nil
}

// CallCount returns the number of times Generate was called.
func (m *Generator) CallCount() int {
	return m.callCount
}

// LastQuestion returns the question passed to the most recent Generate call.
func (m *Generator) LastQuestion() string {
	return m.lastQuestion
}

// LastPassages returns the passages passed to the most recent Generate call.
func (m *Generator) LastPassages() []string {
	return m.lastPassages
}

// Reset clears the call count, recorded inputs and custom functions.
func (m *Generator) Reset() {
	m.callCount = 0
	m.lastQuestion = ""
	m.lastPassages = nil
	m.GenerateFunc = nil
}
