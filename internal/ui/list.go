package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodarc/internal/models"
)

var _ list.Item = historyItem{}

// historyItem wraps [models.HistoryEntry] to implement [list.Item].
type historyItem struct {
	entry *models.HistoryEntry
}

func (i historyItem) FilterValue() string { return i.entry.Name }
func (i historyItem) Title() string {
	return fmt.Sprintf("#%d %s", i.entry.Seq, i.entry.Name)
}
func (i historyItem) Description() string {
	desc := fmt.Sprintf("%s • %d/%d tracks", i.entry.Mode, i.entry.TracksAdded, i.entry.TracksRequested)
	if !i.entry.CreatedAt.IsZero() {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.CreatedAt.Format("2006-01-02"))
	}
	return desc
}
