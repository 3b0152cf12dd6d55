// Package command translates chat-style command lines into engine calls
// and renders textual replies.
//
// The router is transport-agnostic: callers hand it an identity and a raw
// line, and get back the reply text. Every engine rejection renders as a
// self-correcting message; no input is fatal.
//
// # What this package must NOT do
//
//   - Authenticate the transport; the caller vouches for the identity.
//   - Reach around the engine into its collaborators.
package command
