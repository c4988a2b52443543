// Package aggregate groups per-pair comparison results by functional
// domain and computes summary statistics for reporting.
//
// Aggregate is a pure function of its input: no I/O, no side effects.
// Score arithmetic uses shopspring/decimal so that displayed averages
// are exact at two decimal places instead of accumulating float error.
package aggregate
