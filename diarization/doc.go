// Package diarization defines the provider interface and common types for
// speaker diarization backends, plus the Adapter that degrades to binary
// speech/silence segmentation when no backend can serve a request.
//
// # Backends
//
//   - diarization/pyannote: Pyannote HTTP sidecar diarization
//
// # Fallback
//
// The Adapter never fails because a backend failed. A missing credential,
// an unreachable sidecar, a transport error or malformed output all
// degrade to the vad engine's timeline, whose labels become the speaker
// field. Decode errors on the input audio remain fatal.
package diarization
