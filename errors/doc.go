// Package errors provides unified error handling for the sonix audio
// pipeline. It implements structured error types with machine-readable
// codes and recoverable detection, so that fallback tiers can decide
// whether a failure should degrade the pipeline or abort it.
package errors
