// Package report renders a discovered endpoint map as an aligned,
// operator-facing text table.
//
// The renderer is a pure function: it holds no state, performs no I/O, and
// produces byte-identical output for identical input, which makes it safe
// to call from any goroutine and trivially testable.
package report
