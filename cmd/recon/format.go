package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vrtravel/reconcli/internal/models"
)

// writeSceneTable renders scenes in a tab-aligned table. The current
// scene, if any, is marked with an asterisk.
func writeSceneTable(out io.Writer, scenes []models.Scene, current *models.Scene) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tNAME\tSTATUS\tPROGRESS\tIMAGES")
	for _, s := range scenes {
		marker := " "
		if current != nil && current.ID == s.ID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			marker, s.ID, truncate(s.Name, 32), s.Status, formatProgress(&s), s.ImageCount)
	}
	w.Flush()
}

// writeSceneDetail renders one scene in a key/value layout.
func writeSceneDetail(out io.Writer, s *models.Scene) {
	fmt.Fprintf(out, "ID:          %s\n", s.ID)
	fmt.Fprintf(out, "Name:        %s\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", s.Description)
	}
	fmt.Fprintf(out, "Status:      %s\n", s.Status)
	fmt.Fprintf(out, "Progress:    %s\n", formatProgress(s))
	fmt.Fprintf(out, "Images:      %d\n", s.ImageCount)
	if names := s.Filenames(); len(names) > 0 {
		fmt.Fprintf(out, "  %s\n", strings.Join(names, "\n  "))
	}
	if s.ColmapPath != "" {
		fmt.Fprintf(out, "Poses:       %s\n", s.ColmapPath)
	}
	if s.PlyFilePath != "" {
		fmt.Fprintf(out, "Model:       %s\n", s.PlyFilePath)
	}
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "Updated:     %s\n", s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

// formatProgress renders progress with its message when present.
func formatProgress(s *models.Scene) string {
	if s.ProgressMessage == "" {
		return fmt.Sprintf("%d%%", s.Progress)
	}
	return fmt.Sprintf("%d%% (%s)", s.Progress, truncate(s.ProgressMessage, 40))
}

// truncate shortens a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
