// Package pdf extracts plain text from PDF files page by page.
package pdf
