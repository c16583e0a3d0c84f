package lint

import (
	"fmt"

	"github.com/solaudit/solaudit/pkg/ui"
)

func colorize(code, s string) string {
	if !ui.StdoutIsTerminal() || ui.IsNoColor() {
		return s
	}
	return code + s + ui.Reset
}

// PrintSummary writes the styled lint summary to stdout.
func PrintSummary(result *Result, verbose bool) {
	if ui.UnicodeTerminal() {
		fmt.Println(colorize(ui.Cyan, "════════════════════════════════════════════════════════════════"))
		fmt.Println(colorize(ui.Cyan, "                        LINT SUMMARY"))
		fmt.Println(colorize(ui.Cyan, "════════════════════════════════════════════════════════════════"))
	} else {
		fmt.Println(colorize(ui.Cyan, "================================================================"))
		fmt.Println(colorize(ui.Cyan, "                        LINT SUMMARY"))
		fmt.Println(colorize(ui.Cyan, "================================================================"))
	}
	fmt.Printf("   Classes linted:     %d\n", result.TotalClasses)
	fmt.Println()

	printGroup("Errors", result.Errors, true)
	printGroup("Duplicate ids", result.DuplicateIDs, true)
	printGroup("Missing fields", result.MissingFields, true)
	printGroup("Invalid severities", result.InvalidSeverities, true)
	printGroup("Unbalanced fences", result.UnclosedFences, true)
	printGroup("Render issues", result.RenderIssues, true)

	if verbose {
		printGroup("Warnings", result.Warnings, false)
	} else if len(result.Warnings) > 0 {
		fmt.Printf("   %s Warnings: %d (use -verbose to list)\n",
			colorize(ui.Yellow, ui.Icon("⚠", "!")), len(result.Warnings))
	}

	fmt.Println()
	if result.Valid {
		fmt.Printf("   %s Catalog is clean\n", colorize(ui.Green, ui.Icon("✓", "+")))
	} else {
		fmt.Printf("   %s Lint failed with %d error(s)\n", colorize(ui.Red, ui.Icon("✗", "x")), result.ErrorCount())
	}
}

func printGroup(label string, items []string, isError bool) {
	if len(items) == 0 {
		return
	}
	color, mark := ui.Red, ui.Icon("✗", "x")
	if !isError {
		color, mark = ui.Yellow, ui.Icon("⚠", "!")
	}
	fmt.Printf("   %s %s: %d\n", colorize(color, mark), label, len(items))
	for _, item := range items {
		fmt.Printf("      %s %s\n", colorize(color, ui.Icon("•", "-")), item)
	}
}
