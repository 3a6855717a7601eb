package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"edgescout/internal/pipeline"
	"edgescout/internal/report"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// printReport renders the run's markdown through glamour, falling back
// to the raw markdown when the terminal renderer cannot be built.
func printReport(s *pipeline.State) {
	md := report.Markdown(s)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

// runInteractive prompts for markets in a loop until the user quits or
// the context is cancelled.
func runInteractive(ctx context.Context, p *pipeline.Pipeline) error {
	fmt.Println(bannerStyle.Render("edgescout  •  Kalshi market research"))
	fmt.Println(hintStyle.Render(`
Enter a market to analyze:
  URL:         https://kalshi.com/markets/...
  Ticker:      KXBTC-24DEC31-100K
  Description: "Will BTC exceed $100K by end of 2024?"

Research only, not financial advice. Type 'quit' to exit.`))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			fmt.Println(hintStyle.Render("Please enter a market to analyze."))
			continue
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil
		}

		fmt.Println(hintStyle.Render("Starting research..."))
		state := p.Run(ctx, input)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if state.InputValidationError != "" {
			fmt.Println(errorStyle.Render("Validation error: ") + state.InputValidationError)
			continue
		}
		printReport(state)
	}
}
