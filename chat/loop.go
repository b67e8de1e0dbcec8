// Copyright 2026 Veridian Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/veridian/quaero/search"
)

// exitWords end the loop when typed on their own.
var exitWords = map[string]bool{
	"exit": true,
	"quit": true,
	"bye":  true,
}

// Loop is the interactive question-answering prompt. It reads questions line
// by line, answers them through the searcher and prints the answer with its
// source provenance. A failing question is reported and the loop keeps going.
type Loop struct {
	searcher *search.Searcher
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop creates an interactive loop over the given searcher, reading from
// in and writing to out.
func NewLoop(searcher *search.Searcher, in io.Reader, out io.Writer, opts ...Option) (*Loop, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	l := &Loop{
		searcher: searcher,
		in:       in,
		out:      out,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run reads questions until the input ends, an exit word is typed or the
// context is cancelled. Errors answering a single question are printed and
// the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	green := color.New(color.FgGreen).FprintlnFunc()
	cyan := color.New(color.FgCyan).FprintlnFunc()
	yellow := color.New(color.FgYellow).FprintlnFunc()
	red := color.New(color.FgRed).FprintlnFunc()

	green(l.out, "Quaero offline document assistant")
	cyan(l.out, "Type your question below. Type 'exit' to quit.")
	fmt.Fprintln(l.out)

	scanner := bufio.NewScanner(l.in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.out, "> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if exitWords[strings.ToLower(question)] {
			cyan(l.out, "Goodbye!")
			break
		}

		answer, err := l.searcher.Ask(ctx, question)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, search.ErrNoResults) {
				yellow(l.out, "No relevant documents found. Try rephrasing your question.")
				fmt.Fprintln(l.out)
				continue
			}
			l.logger.Error("error answering question", "err", err)
			red(l.out, fmt.Sprintf("An error occurred: %v", err))
			fmt.Fprintln(l.out)
			continue
		}

		if answer.LowConfidence {
			yellow(l.out, "Warning: the retrieved context may not be a strong match.")
		}

		best := answer.Support[0].Record
		cyan(l.out, fmt.Sprintf("Based on page %d of %s", best.Page, best.Source))
		fmt.Fprintln(l.out)
		fmt.Fprintln(l.out, answer.Text)
		fmt.Fprintln(l.out)
	}

	return scanner.Err()
}
