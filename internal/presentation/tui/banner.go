package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the logtree banner to w.
func PrintBanner(w io.Writer, profile termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{"  _             _                ", "#818cf8"},
		{" | | ___   __ _| |_ _ __ ___  ___ ", "#a78bfa"},
		{" | |/ _ \\ / _` | __| '__/ _ \\/ _ \\", "#c084fc"},
		{" | | (_) | (_| | |_| | |  __/  __/", "#e879f9"},
		{" |_|\\___/ \\__, |\\__|_|  \\___|\\___|", "#f472b6"},
		{"          |___/                   ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, profile.String(l.text).Foreground(profile.Color(l.color)))
	}
	fmt.Fprintln(w)
}
