// Package main provides the entry point for the cspcompare CLI.
//
// cspcompare generates service-by-service comparisons of two cloud
// providers: it discovers each provider's catalog, maps equivalent
// services, analyzes every matched pair technically and commercially,
// and renders the consolidated result as a dashboard, markdown, or JSON.
//
// Usage:
//
//	cspcompare compare <csp-a> <csp-b>
//	cspcompare cache clear
//
// See --help for all available options.
package main

// main is the entry point for cspcompare.
func main() {
	Execute()
}
