package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/moodarc/internal/formatter"
	"github.com/desertthunder/moodarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent recorded generations, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	repo, closeRepo, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeRepo()

	entries, err := repo.List(ctx, limit)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No recorded generations yet.\n")
	}

	r.writePlain("Found %d recorded generations:\n\n", len(entries))
	for _, entry := range entries {
		r.writePlain("#%d %s\n", entry.Seq, entry.Name)
		r.writePlain("   Mode: %s\n", entry.Mode)
		r.writePlain("   Tracks: %d of %d added\n", entry.TracksAdded, entry.TracksRequested)
		if entry.URL != "" {
			r.writePlain("   URL: %s\n", entry.URL)
		}
		r.writePlain("   Created: %s\n\n", entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// HistoryShow prints one recorded generation by the number shown in list
// output.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	seq, err := parseSeqArg(cmd.StringArg("seq"))
	if err != nil {
		return err
	}

	repo, closeRepo, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeRepo()

	entry, err := repo.GetBySeq(ctx, seq)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entry, true)
	}

	text, err := formatter.ExportToText(entry)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Mood Arc #%d", entry.Seq))
	return r.writePlain("%s", text)
}

// HistoryExport writes recorded generations to disk. CSV covers the whole
// history (with a JSON sidecar); markdown, text, and json take one entry
// selected with --seq.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")
	seq := cmd.Int("seq")

	repo, closeRepo, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeRepo()

	if format == "csv" {
		entries, err := repo.List(ctx, 0)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return r.writePlain("No recorded generations to export.\n")
		}

		result, err := formatter.WriteCSVExport(entries, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ History exported to %s\n", result.HistoryFile)
		r.writePlain("  Full entries: %s\n", result.JSONFile)
		return nil
	}

	if seq <= 0 {
		return fmt.Errorf("%w: format %q needs --seq", shared.ErrMissingArgument, format)
	}
	entry, err := repo.GetBySeq(ctx, int64(seq))
	if err != nil {
		return err
	}

	switch format {
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(entry, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(entry, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)
	case "json":
		path, err := formatter.WriteJSONExport(entry, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, markdown, text, json)", shared.ErrInvalidFlag, format)
	}
}

// HistoryDelete removes one recorded generation by its list number.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	seq, err := parseSeqArg(cmd.StringArg("seq"))
	if err != nil {
		return err
	}

	repo, closeRepo, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeRepo()

	entry, err := repo.GetBySeq(ctx, seq)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, entry.ID); err != nil {
		return err
	}

	return r.writePlain("✓ Deleted #%d %s\n", entry.Seq, entry.Name)
}

// HistoryClear removes every recorded generation. It refuses to run without
// --yes so a stray invocation cannot wipe the history.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeRepo, err := r.historyRepo()
	if err != nil {
		return err
	}
	defer closeRepo()

	if !cmd.Bool("yes") {
		entries, err := repo.List(ctx, 0)
		if err != nil {
			return err
		}
		return r.writePlain("This would delete %d recorded generations. Re-run with --yes to confirm.\n", len(entries))
	}

	cleared, err := repo.Clear(ctx)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Cleared %d recorded generations\n", cleared)
}

// parseSeqArg converts the positional entry number, rejecting anything that
// is not a positive integer.
func parseSeqArg(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: an entry number is required", shared.ErrMissingArgument)
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("%w: %q is not an entry number", shared.ErrInvalidArgument, raw)
	}
	return seq, nil
}
