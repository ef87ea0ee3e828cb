package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown before interactive runs.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Subtle cool gradient (teal to blue)
	lines := []struct {
		text  string
		color string
	}{
		{"      _        _                        ", "#2dd4bf"},
		{"  ___| |_ __ _(_)_ __ ___ __ _ ___  ___ ", "#34d399"},
		{" / __| __/ _` | | '__/ __/ _` / __|/ _ \\", "#38bdf8"},
		{" \\__ \\ || (_| | | | | (_| (_| \\__ \\  __/", "#60a5fa"},
		{" |___/\\__\\__,_|_|_|  \\___\\__,_|___/\\___|", "#818cf8"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Printf("  adaptive staircase engine %s\n\n", strings.TrimSpace(version))
}
