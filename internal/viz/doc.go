// Package viz renders run summaries for the terminal.
//
//   - [RenderSummary]: a bordered panel with run settings and metrics
//   - [SparklineChart]: a one-line trend of a series
//   - [VariableTable]: declared variables grouped by role
//
// Styles are plain lipgloss values and degrade to unstyled text when the
// output is not a terminal.
package viz
