// Package cli provides the interactive Threadly command-line client.
//
// It wires configuration, the persisted session, API services, and an
// interactive REPL. Typical flow: restore the saved session (prompting for a
// fresh login when the credential has expired), then execute user commands
// against the backend while the entity cache keeps the displayed feed
// responsive.
//
// Key features:
//   - Register / Login / Logout with a durable session
//   - Browse the feed, trending posts, and per-post comment threads
//   - Create, edit, delete posts; like and vote
//   - Comment and vote on comments
//   - Profile and leaderboard views
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
