// Package cli provides the interactive Melitton command-line client.
//
// It wires configuration, the local SQLite store, the REST client and the
// state synchronizer, then runs a REPL over stdin. Two goroutines run
// beside the REPL: the synchronizer's periodic reconciliation and an online
// status watcher that pings the server and triggers a reconciliation as
// soon as the server comes back.
//
// Commands cover boxes and their management logs, bait traps, the
// dashboard figures, settings, manual sync, export/import (to files or an
// S3 bucket) and a full local reset. Destructive commands ask for a typed
// confirmation.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
