package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the startup banner with version and connection details.
func PrintBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 64
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		`   ____ ____  ___ ______     _______ ____ _____`,
		`  / ___|  _ \|_ _|  _ \ \   / / ____/ ___|_   _|`,
		` | |  _| |_) || || |_) \ \ / /|  _| \___ \ | |`,
		` | |_| |  _ < | ||  __/ \ V / | |___ ___) || |`,
		`  \____|_| \_\___|_|     \_/  |_____|____/ |_|`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Investment Marketplace%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	storage := config.Storage.Backend
	if storage == "surrealdb" {
		storage += " (" + config.Storage.Address + ")"
	} else {
		storage += " (" + config.Storage.Path + ")"
	}

	kvPad := 14
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"API", config.API.BaseURL},
		{"Storage", storage},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}
