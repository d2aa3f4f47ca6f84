package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// WelcomeInfo contains information to display in the welcome screen.
type WelcomeInfo struct {
	// Version is the typecomp version string
	Version string
	// Completor is the provider description, e.g. ReplTypeCompletor(...)
	Completor string
	// RuntimeVersion is the runtime the signatures describe
	RuntimeVersion string
}

// tips is the list of tips to display in the welcome screen.
// A "tip of the day" is selected based on the current date.
var tips = []string{
	"press Tab to complete methods, constants and variables",
	"press Tab twice to list every candidate",
	"assign a value with `n = 10` and n completes as an Integer",
	"use show_doc String#upcase to read a method's documentation",
	"use ls [1, 2] to list the methods of an expression",
	"use whatis to print the inferred type of an expression",
	"use irb_info to see which completor is active",
	"set completor: regexp in ~/.typecomp/config.yaml to use the regexp completor",
	"add your own signature files under ~/.typecomp/signatures",
	"set log_level: debug in ~/.typecomp/config.yaml for troubleshooting",
	"press Ctrl+D on an empty line to exit",
}

var logo = []string{
	" _                    ",
	"| |_ _  _ _ __  ___   ",
	"|  _| || | '_ \\/ -_)  ",
	" \\__|\\_, | .__/\\___|  ",
	"     |__/|_|          ",
}

// getTipOfTheDay returns a tip based on the current date.
// The same tip is shown for the entire day, changing at midnight.
func getTipOfTheDay() string {
	if len(tips) == 0 {
		return ""
	}
	return tips[time.Now().YearDay()%len(tips)]
}

// RenderWelcome renders the welcome screen to the given writer: the logo
// on the left and the session configuration on the right.
func RenderWelcome(w io.Writer, info WelcomeInfo, termWidth int) {
	titleStyle := lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	logoStyle := lipgloss.NewStyle().Foreground(ColorYellow)
	labelStyle := lipgloss.NewStyle().Foreground(ColorGray)
	valueStyle := lipgloss.NewStyle().Foreground(ColorYellow)
	dimStyle := lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	logoWidth := lipgloss.Width(strings.Join(logo, "\n"))
	minGap := 2
	maxInfoWidth := 48

	var infoLines []string
	infoLines = append(infoLines, titleStyle.Render("typecomp"), "")

	switch info.Version {
	case "":
	case "dev":
		infoLines = append(infoLines, labelStyle.Render("version:   ")+dimStyle.Render("development"))
	default:
		infoLines = append(infoLines, labelStyle.Render("version:   ")+valueStyle.Render(info.Version))
	}

	if info.Completor != "" {
		infoLines = append(infoLines, labelStyle.Render("completor: ")+valueStyle.Render(info.Completor))
	}
	if info.RuntimeVersion != "" {
		infoLines = append(infoLines, labelStyle.Render("runtime:   ")+valueStyle.Render(info.RuntimeVersion))
	} else {
		infoLines = append(infoLines, labelStyle.Render("runtime:   ")+dimStyle.Render("unknown"))
	}

	tip := getTipOfTheDay()
	infoWidth := min(termWidth-logoWidth-minGap, maxInfoWidth)

	if infoWidth < 20 {
		// Terminal too narrow, just show info without logo
		for _, line := range infoLines {
			fmt.Fprintln(w, line)
		}
		if tip != "" {
			fmt.Fprintln(w, dimStyle.Render("tip: "+tip))
		}
		fmt.Fprintln(w)
		return
	}

	left := logoStyle.Render(strings.Join(logo, "\n"))
	right := lipgloss.NewStyle().MaxWidth(infoWidth).Render(strings.Join(infoLines, "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", minGap), right)

	var output strings.Builder
	output.WriteString("\n")
	for _, line := range strings.Split(body, "\n") {
		output.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	output.WriteString("\n")
	if tip != "" {
		output.WriteString(dimStyle.Render("tip: "+tip) + "\n")
	}
	output.WriteString("\n")

	fmt.Fprint(w, output.String())
}
