// Package provider defines the pluggable backend abstraction used across
// sonix: named factories, a typed registry, and selection strategies.
//
// Neural backends (VAD, diarization, transcription) register through a
// Registry and are picked at call time by a Selector. The PrioritySelector
// realizes the pipeline's fallback ordering: tiers are tried left to right
// and the first available one wins.
package provider
