package main

import (
	"os"

	"github.com/fatih/color"
)

var (
	green    = color.New(color.FgGreen).SprintFunc()
	red      = color.New(color.FgRed).SprintFunc()
	yellow   = color.New(color.FgYellow).SprintFunc()
	cyan     = color.New(color.FgCyan).SprintFunc()
	gray     = color.New(color.FgHiBlack).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
	boldRed  = color.New(color.FgRed, color.Bold).SprintFunc()
	boldGood = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// configureColors applies --no-color and the NO_COLOR / FORCE_COLOR
// conventions on top of fatih/color's terminal detection.
func configureColors(noColor bool) {
	switch {
	case noColor || os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0":
		color.NoColor = true
	case os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "":
		color.NoColor = false
	}
}
