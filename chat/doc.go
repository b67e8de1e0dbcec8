// Package chat implements the interactive question-answering prompt.
//
// The Loop reads questions line by line, answers them through the search
// package and prints each answer together with the page and document it was
// grounded in. Low-confidence retrievals print a warning first. An error on
// one question never terminates the session.
package chat
