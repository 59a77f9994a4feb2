// Package cli provides the charkeeper command-line client.
//
// It wires configuration, local collection storage, optional S3 backups and
// telemetry, and exposes them through an interactive REPL and one-shot cobra
// subcommands.
//
// The REPL has two views:
//   - home: list, create, import, restore and delete collections
//   - editor (/editor/<uuid>): browse, search, sort and edit the characters
//     of the open collection, export or back it up
//
// The REPL is started by running the binary without a subcommand; see
// NewRootCommand and runREPL for details.
package cli
