package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/clipsync/internal/backup"
	"github.com/yiblet/clipsync/internal/clips"
	"github.com/yiblet/clipsync/internal/store"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	indexStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(4).Align(lipgloss.Right)
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	remoteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderItem formats one history line: index, favorite mark, preview,
// labels and origin.
func renderItem(index int, item *store.ClipItem) string {
	var b strings.Builder
	b.WriteString(indexStyle.Render(fmt.Sprintf("%d.", index)))
	b.WriteString(" ")

	if item.Favorite {
		b.WriteString(favoriteStyle.Render("*"))
	} else {
		b.WriteString(" ")
	}
	b.WriteString(" ")
	b.WriteString(clips.Preview(item.Text))

	for _, l := range item.Labels {
		b.WriteString(" ")
		b.WriteString(labelStyle.Render("#" + l.Name))
	}
	if item.Remote && item.Device != "" {
		b.WriteString(" ")
		b.WriteString(remoteStyle.Render("@" + item.Device))
	}
	return b.String()
}

func renderLabel(l store.Label) string {
	return fmt.Sprintf("%s %s", dimStyle.Render(fmt.Sprintf("%3d", l.ID)), labelStyle.Render(l.Name))
}

// renderBackup formats one backup line. The current backup of this
// device is marked.
func renderBackup(info backup.Info) string {
	mark := " "
	if info.Current {
		mark = favoriteStyle.Render("*")
	}

	device := info.Device.Nickname
	if device == "" {
		device = info.Device.Serial
	}
	if info.Mine {
		device += " (this device)"
	}

	return fmt.Sprintf("%s %s  %s  %s  %s",
		mark,
		info.ID,
		dimStyle.Render(info.ModifiedTime.Format("2006-01-02 15:04")),
		humanSize(info.Size),
		device,
	)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
