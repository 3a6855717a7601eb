package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"edgescout/internal/pipeline"
)

// Applied strictly in order: backslash first, so the backslashes the
// later replacements introduce are not themselves escaped.
var latexEscapes = []struct{ old, new string }{
	{`\`, `\textbackslash{}`},
	{`&`, `\&`},
	{`%`, `\%`},
	{`$`, `\$`},
	{`#`, `\#`},
	{`_`, `\_`},
	{`{`, `\{`},
	{`}`, `\}`},
	{`~`, `\textasciitilde{}`},
	{`^`, `\textasciicircum{}`},
}

// EscapeLaTeX escapes every LaTeX special character in text.
func EscapeLaTeX(text string) string {
	for _, e := range latexEscapes {
		text = strings.ReplaceAll(text, e.old, e.new)
	}
	return text
}

// Stubbed in tests for a stable footer date.
var now = time.Now

// LaTeX renders the run as a standalone LaTeX article.
func LaTeX(s *pipeline.State) string {
	var b strings.Builder

	b.WriteString(latexPreamble)
	fmt.Fprintf(&b, "\\fancyfoot[C]{\\small Generated on %s}\n\n", now().Format("January 2, 2006"))
	b.WriteString(latexTitleFormats)

	b.WriteString("\\begin{document}\n\n")
	fmt.Fprintf(&b, `\begin{center}
    {\LARGE\bfseries\textcolor{kalshipurple}{Market Research Report}}

    \vspace{0.5cm}

    {\Large %s}

    \vspace{0.3cm}

    {\small Market Reference: \texttt{%s}}
\end{center}

\vspace{1cm}

`, EscapeLaTeX(orDefault(s.MarketTitle, "Unknown Market")), EscapeLaTeX(orDefault(s.MarketRef, "N/A")))

	fmt.Fprintf(&b, `\section{Market Overview}

\begin{tabular}{@{}ll@{}}
    \textbf{Resolution Criteria:} & \parbox[t]{10cm}{%s} \\[0.5em]
    \textbf{Expiration:} & %s \\
\end{tabular}

`, EscapeLaTeX(orDefault(s.ResolutionCriteria, "Not specified")), EscapeLaTeX(orDefault(s.ExpirationDate, "Not specified")))

	fmt.Fprintf(&b, `\section{Market Pricing vs Independent Estimate}

\begin{center}
\begin{tabular}{lcc}
    \toprule
    \textbf{Outcome} & \textbf{Market Price} & \textbf{Independent Estimate} \\
    \midrule
    \textcolor{bullgreen}{Yes} & %s\%% & %s\%% \\
    \textcolor{bearred}{No} & %s\%% & %s\%% \\
    \bottomrule
\end{tabular}
\end{center}

\vspace{0.5cm}

\textbf{Confidence Level:} %s

`,
		marketPct(s.MarketOdds, "yes"), estimatePct(s.EstimatedProbabilities, "yes"),
		marketPct(s.MarketOdds, "no"), estimatePct(s.EstimatedProbabilities, "no"),
		EscapeLaTeX(titleWords(orDefault(s.ConfidenceLevel, "Not specified"))))

	fmt.Fprintf(&b, "\\section{Edge Analysis}\n\n%s\n\n",
		EscapeLaTeX(orDefault(s.EdgeAnalysis, "No edge analysis available.")))

	fmt.Fprintf(&b, "\\section{Research Summary}\n\n%s\n\n\\subsection*{Sources}\n\\begin{itemize}\n%s\\end{itemize}\n\n",
		EscapeLaTeX(orDefault(s.ResearchSummary, "No research summary available.")),
		sourceItems(s.Sources))

	b.WriteString(`\section{Persona-Based Recommendations}

\begin{center}
\begin{tabular}{|p{3cm}|p{3cm}|p{8cm}|}
    \hline
    \textbf{Persona} & \textbf{Position} & \textbf{Rationale} \\
    \hline
`)
	for _, rec := range s.PersonaRecommendations {
		fmt.Fprintf(&b, "        %s & %s & %s \\\\\n        \\hline\n",
			EscapeLaTeX(titleWords(rec.Persona)),
			EscapeLaTeX(orDefault(rec.SuggestedPosition, "N/A")),
			EscapeLaTeX(truncate(rec.Rationale, 100)))
	}
	b.WriteString("\\end{tabular}\n\\end{center}\n\n")

	b.WriteString("\\section{Scenario Analysis}\n")
	for _, sc := range s.Scenarios {
		fmt.Fprintf(&b, "\n\\subsection*{%s}\n%s\n\n\\textbf{Probability Shift:} %s\n\n\\textbf{Key Triggers:}\n\\begin{itemize}\n",
			EscapeLaTeX(titleWords(sc.Type)),
			EscapeLaTeX(sc.Description),
			EscapeLaTeX(sc.ProbabilityShift))
		for _, trigger := range sc.KeyTriggers {
			fmt.Fprintf(&b, "    \\item %s\n", EscapeLaTeX(trigger))
		}
		b.WriteString("\\end{itemize}\n")
	}

	b.WriteString("\n\\section*{Disclaimer}\n\n")
	b.WriteString(latexDisclaimer)
	b.WriteString("\n\\end{document}\n")

	return b.String()
}

// SaveLaTeX renders the run as LaTeX and writes it to path.
func SaveLaTeX(s *pipeline.State, path string) error {
	return os.WriteFile(path, []byte(LaTeX(s)), 0o644)
}

const latexPreamble = `\documentclass[11pt,a4paper]{article}

\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{lmodern}
\usepackage{geometry}
\usepackage{graphicx}
\usepackage{booktabs}
\usepackage{array}
\usepackage{xcolor}
\usepackage{fancyhdr}
\usepackage{titlesec}
\usepackage{amsmath}
\usepackage{amssymb}

\geometry{margin=1in}

\definecolor{kalshipurple}{RGB}{102, 51, 153}
\definecolor{bullgreen}{RGB}{34, 139, 34}
\definecolor{bearred}{RGB}{178, 34, 34}

\pagestyle{fancy}
\fancyhf{}
\fancyhead[L]{\textcolor{kalshipurple}{Kalshi Research Report}}
\fancyhead[R]{\thepage}
`

const latexTitleFormats = `\titleformat{\section}{\Large\bfseries\color{kalshipurple}}{\thesection}{1em}{}
\titleformat{\subsection}{\large\bfseries}{\thesubsection}{1em}{}

`

const latexDisclaimer = `{\small\textit{This research report is for informational purposes only and does not constitute financial advice, investment advice, or a recommendation to buy or sell any securities or prediction market contracts. Prediction markets involve risk of loss. Past performance does not guarantee future results. Always do your own research and consider your own risk tolerance before participating in any market.}}
`

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sourceItems(sources []string) string {
	if len(sources) == 0 {
		return "    \\item No sources cited\n"
	}
	var b strings.Builder
	for _, src := range sources {
		fmt.Fprintf(&b, "    \\item %s\n", EscapeLaTeX(src))
	}
	return b.String()
}

func marketPct(odds []pipeline.MarketOdds, outcome string) string {
	for _, o := range odds {
		if strings.EqualFold(o.Outcome, outcome) {
			return fmt.Sprintf("%.1f", o.ImpliedProbability*100)
		}
	}
	return "N/A"
}

func estimatePct(estimates []pipeline.ProbabilityEstimate, outcome string) string {
	for _, e := range estimates {
		if strings.EqualFold(e.Outcome, outcome) {
			return fmt.Sprintf("%.1f", e.EstimatedProbability*100)
		}
	}
	return "N/A"
}

// titleWords turns an identifier like "risk_averse" into "Risk Averse".
func titleWords(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
