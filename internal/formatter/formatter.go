// package formatter provides functions to export generation history to various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/moodarc/internal/models"
	"github.com/desertthunder/moodarc/internal/shared"
)

// ExportToCSV converts history entries to CSV format with columns: Seq, Name, Mode, Mood, Goal, Stages, Requested, Added, URL, Created
func ExportToCSV(entries []*models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Seq", "Name", "Mode", "Mood", "Goal", "Stages", "Requested", "Added", "URL", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			strconv.FormatInt(entry.Seq, 10),
			entry.Name,
			entry.Mode,
			entry.MoodText,
			entry.GoalText,
			strconv.Itoa(entry.Stages),
			strconv.Itoa(entry.TracksRequested),
			strconv.Itoa(entry.TracksAdded),
			entry.URL,
			entry.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a history entry to Markdown format. Fallback
// track links, when present, render as their own section so the file reads
// as a to-do list for populating the playlist by hand.
func ExportToMarkdown(entry *models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", entry.Name))

	if entry.URL != "" {
		buf.WriteString(fmt.Sprintf("[Open in Spotify](%s)\n\n", entry.URL))
	}

	buf.WriteString(fmt.Sprintf("**Mode**: %s\n", entry.Mode))
	buf.WriteString(fmt.Sprintf("**Mood**: %s → %s\n", entry.MoodText, entry.GoalText))
	buf.WriteString(fmt.Sprintf("**Stages**: %d\n", entry.Stages))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d of %d added\n", entry.TracksAdded, entry.TracksRequested))
	buf.WriteString(fmt.Sprintf("**Created**: %s\n\n", entry.CreatedAt.Format("2006-01-02 15:04")))

	if entry.Note != "" {
		buf.WriteString(fmt.Sprintf("> %s\n\n", entry.Note))
	}

	if len(entry.Links) > 0 {
		buf.WriteString("## Tracks To Add Manually\n\n")
		for i, link := range entry.Links {
			label := link.Name
			if link.Artist != "" {
				label = fmt.Sprintf("%s - %s", link.Artist, link.Name)
			}
			if link.URL != "" {
				buf.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, label, link.URL))
			} else {
				buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, label))
			}
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a history entry to plain text format
func ExportToText(entry *models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", entry.Name))
	if entry.URL != "" {
		buf.WriteString(fmt.Sprintf("URL: %s\n", entry.URL))
	}
	buf.WriteString(fmt.Sprintf("Mode: %s\n", entry.Mode))
	buf.WriteString(fmt.Sprintf("Mood: %s → %s\n", entry.MoodText, entry.GoalText))
	buf.WriteString(fmt.Sprintf("Tracks: %d of %d added\n", entry.TracksAdded, entry.TracksRequested))
	if entry.Note != "" {
		buf.WriteString(fmt.Sprintf("Note: %s\n", entry.Note))
	}

	if len(entry.Links) > 0 {
		buf.WriteString("\nAdd manually:\n")
		for i, link := range entry.Links {
			label := link.Name
			if link.Artist != "" {
				label = fmt.Sprintf("%s - %s", link.Artist, link.Name)
			}
			if link.URL != "" {
				buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, label, link.URL))
			} else {
				buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, label))
			}
		}
	}

	return buf.Bytes(), nil
}

// ToEntryJSON generates an indented JSON representation of one history entry
func ToEntryJSON(entry *models.HistoryEntry) ([]byte, error) {
	return shared.MarshalJSON(entry, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	HistoryFile string
	JSONFile    string
}

// WriteCSVExport exports history entries to CSV with an accompanying JSON
// dump that preserves the fields CSV flattens away.
//
// Defaults to "mood_history" as the base filename & creates {base}.csv and {base}.json
func WriteCSVExport(entries []*models.HistoryEntry, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "mood_history"
	}

	csvData, err := ExportToCSV(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	historyFile := baseFilepath + ".csv"
	if err := os.WriteFile(historyFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	jsonData, err := shared.MarshalJSON(entries, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	jsonFile := baseFilepath + ".json"
	if err := os.WriteFile(jsonFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write JSON file: %w", err)
	}

	return &CSVExportResult{
		HistoryFile: historyFile,
		JSONFile:    jsonFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a history entry to Markdown format in a dedicated directory.
//
// Directory name defaults to mood-arc-{seq}. Creates {dir}/README.md.
func WriteMarkdownExport(entry *models.HistoryEntry, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = fmt.Sprintf("mood-arc-%d", entry.Seq)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{mdFile},
	}, nil
}

// WriteTextExport exports a history entry to plain text format.
//
// Defaults to mood-arc-{seq}.txt as the filename.
func WriteTextExport(entry *models.HistoryEntry, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("mood-arc-%d.txt", entry.Seq)
	}

	textData, err := ExportToText(entry)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport exports a history entry to indented JSON.
//
// Defaults to mood-arc-{seq}.json as the filename.
func WriteJSONExport(entry *models.HistoryEntry, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("mood-arc-%d.json", entry.Seq)
	}

	jsonData, err := ToEntryJSON(entry)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
