package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"media-catalog/internal/audit"
	"media-catalog/internal/catalog"
	"media-catalog/internal/database"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/playlist"
	"media-catalog/internal/startup"
	"media-catalog/internal/workers"

	"golang.org/x/sync/errgroup"
)

const (
	// Default timeout for a whole command
	defaultTimeout = 2 * time.Minute
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	config, err := startup.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := database.Open(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open %s store: %v\n", config.StoreDriver, err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
	}()

	locator := filesystem.NewLocator(config.AssetDir, filesystem.DefaultRetryConfig())

	ok := true
	switch command {
	case "check":
		ok = checkAssets(ctx, os.Stdout, store, locator)
	case "playlists":
		ok = checkPlaylists(ctx, os.Stdout, store)
	case "export":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: export needs a playlist identifier")
			printUsage(os.Stdout)
			os.Exit(1)
		}
		ok = exportPlaylist(ctx, os.Stdout, os.Stderr, store, locator, os.Args[2])
	case "resolve":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: resolve needs a content id")
			printUsage(os.Stdout)
			os.Exit(1)
		}
		ok = resolve(ctx, os.Stdout, store, os.Args[2])
	case "status":
		ok = showStatus(ctx, os.Stdout, store)
	default:
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - only [a-zA-Z0-9_-] pass sanitizeCommand
		printUsage(os.Stdout)
		os.Exit(1)
	}

	if !ok {
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for display.
// Any character that is not alphanumeric, a hyphen, or an underscore becomes '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Catalog Consistency Check")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: catalogcheck <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  check         - Report content records whose asset file is missing")
	fmt.Fprintln(w, "  playlists     - Report playlist entries that point at unknown content")
	fmt.Fprintln(w, "  export <id>   - Write a playlist as a WPL file to stdout")
	fmt.Fprintln(w, "  resolve <id>  - Print the storage hash of a content record")
	fmt.Fprintln(w, "  status        - Check that the store is reachable")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  Same as the server: STORE_DRIVER, MONGO_HOST, MONGO_PORT, STORE_DATABASE,")
	fmt.Fprintln(w, "  SQLITE_PATH, ASSET_DIR, ENV_FILE")
}

// checkAssets walks every content record and reports those whose asset
// file cannot be found under the asset directory.
func checkAssets(ctx context.Context, w io.Writer, store catalog.Store, checker audit.AssetChecker) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	report, err := audit.Run(ctx, store, checker, audit.DefaultConfig())
	if err != nil {
		fmt.Fprintf(w, "Error: Asset check failed: %v\n", err)
		return false
	}

	for _, f := range report.Missing {
		fmt.Fprintf(w, "MISSING  %s  %s  %s\n", f.ContentID, f.ContentType, f.Hash)
	}

	fmt.Fprintf(w, "Checked %d content records, %d missing assets\n", report.Checked, len(report.Missing))
	return len(report.Missing) == 0
}

// exportPlaylist writes one playlist as WPL to out, pointing each entry at
// the path of its asset file. Entries that cannot be resolved are reported
// on errOut and left out.
func exportPlaylist(ctx context.Context, out, errOut io.Writer, store catalog.Store, locator *filesystem.Locator, identifier string) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pl, err := catalog.NewPlaylistAggregator(store).GetByIdentifier(ctx, identifier)
	if err != nil {
		if catalog.IsNotFound(err) {
			fmt.Fprintf(errOut, "Error: No playlist with identifier %q\n", identifier)
		} else {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return false
	}

	content := catalog.NewContentStore(store)
	doc, skipped := playlist.Build(pl, func(entry catalog.ContentEntry) (string, error) {
		hash, err := content.ResolveHash(ctx, entry.ContentID)
		if err != nil {
			return "", err
		}
		return locator.Path(hash)
	})

	for _, s := range skipped {
		fmt.Fprintf(errOut, "Warning: skipped %s (%s): %v\n", s.Entry.ContentID, s.Entry.DisplayName, s.Err)
	}

	if err := playlist.Encode(out, doc); err != nil {
		fmt.Fprintf(errOut, "Error: Failed to write playlist: %v\n", err)
		return false
	}
	return true
}

// checkPlaylists reports playlist entries whose content id has no record.
// Playlists are loaded concurrently; output keeps listing order.
func checkPlaylists(ctx context.Context, w io.Writer, store catalog.Store) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	playlists, err := store.ListPlaylists(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: Failed to list playlists: %v\n", err)
		return false
	}

	aggregator := catalog.NewPlaylistAggregator(store)
	content := catalog.NewContentStore(store)
	dangling := make([][]string, len(playlists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers.ForIO(8, "AUDIT_WORKERS"))
	for i, light := range playlists {
		g.Go(func() error {
			pl, err := aggregator.GetByIdentifier(gctx, light.Identifier)
			if err != nil {
				return fmt.Errorf("load playlist %s: %w", light.Identifier, err)
			}
			for _, entry := range pl.Content {
				if _, err := content.ResolveHash(gctx, entry.ContentID); err != nil {
					// an empty content_id can never resolve
					if !catalog.IsNotFound(err) && !errors.Is(err, catalog.ErrBadRequest) {
						return fmt.Errorf("resolve %s: %w", entry.ContentID, err)
					}
					dangling[i] = append(dangling[i], entry.ContentID)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}

	total := 0
	for i, ids := range dangling {
		for _, id := range ids {
			total++
			if id == "" {
				id = `""`
			}
			fmt.Fprintf(w, "DANGLING  %s  %s\n", playlists[i].Identifier, id)
		}
	}

	fmt.Fprintf(w, "Checked %d playlists, %d dangling entries\n", len(playlists), total)
	return total == 0
}

func resolve(ctx context.Context, w io.Writer, store catalog.Store, contentID string) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := catalog.NewContentStore(store).ResolveHash(ctx, contentID)
	if err != nil {
		if catalog.IsNotFound(err) {
			fmt.Fprintf(w, "Error: No content record with id %q\n", contentID)
		} else {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		return false
	}

	fmt.Fprintln(w, hash)
	return true
}

func showStatus(ctx context.Context, w io.Writer, store catalog.Store) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		fmt.Fprintf(w, "Status: Store unreachable (%v)\n", err)
		return false
	}
	fmt.Fprintln(w, "Status: Store reachable")
	return true
}
