// Package cli runs the meal analysis without interaction and prints the
// outcome.
//
// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayReport], [DisplayQuiet], [DisplayHealth].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatItemStatus].
//
//   - Write* functions emit machine-readable output.
//     Examples: [WriteJSON].
package cli
