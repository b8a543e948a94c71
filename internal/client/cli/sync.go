package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/client/backup"
)

var errNoS3 = errors.New("S3 backups are not configured (see -b and -u)")

// Sync runs one reconciliation. Each request is bounded by the HTTP
// client's timeout, so no extra deadline is set here.
func (a *App) Sync(ctx context.Context) error {
	rep, err := a.store.Reconcile(ctx)
	if err != nil {
		return err
	}
	switch {
	case rep.Empty():
		fmt.Fprintln(a.out, "Nothing to synchronize.")
	default:
		fmt.Fprintf(a.out, "Synchronized %d change(s), %d still pending, %d dropped.\n", rep.Pushed, rep.Failed, rep.Dropped)
	}
	return nil
}

// Export writes a backup to dest, a file path or s3://key. An empty dest
// picks the dated default file name.
func (a *App) Export(ctx context.Context, dest string) error {
	if dest == "" {
		dest = backup.FileName(a.now())
	}

	var buf bytes.Buffer
	if err := a.store.Export(&buf); err != nil {
		return err
	}
	snap := a.store.Snapshot()

	if key, ok := backup.S3Key(dest); ok {
		if a.backups == nil {
			return errNoS3
		}
		ctx, cancel := a.withTimeout(ctx)
		defer cancel()
		if err := a.backups.Upload(ctx, key, buf.Bytes()); err != nil {
			return err
		}
	} else if err := backup.WriteFile(dest, &buf); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Backup written to %s (%d boxes, %d baits).\n", dest, len(snap.Boxes), len(snap.Baits))
	return nil
}

// Import replaces all local data with the backup at src after confirmation.
func (a *App) Import(ctx context.Context, src string) error {
	var (
		data []byte
		err  error
	)
	if key, ok := backup.S3Key(src); ok {
		if a.backups == nil {
			return errNoS3
		}
		dctx, cancel := a.withTimeout(ctx)
		data, err = a.backups.Download(dctx, key)
		cancel()
	} else {
		data, err = backup.ReadFile(src)
	}
	if err != nil {
		return err
	}

	ok, err := a.prompter().confirm("Importing replaces all local boxes and baits.", "import")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	b, err := a.store.Import(ctx, bytes.NewReader(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d boxes and %d baits.\n", len(b.Boxes), len(b.Baits))
	return nil
}

// Reset erases local boxes, baits and settings after confirmation.
func (a *App) Reset(ctx context.Context) error {
	ok, err := a.prompter().confirm("This erases ALL local data and settings. Server data is kept.", "reset")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.store.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local data erased.")
	return nil
}
