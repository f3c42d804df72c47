// Package render turns strategy state and timelines into terminal text.
//
// Nothing here mutates a step or strategy. Styling is optional so the same
// output can go to a pipe or a golden file.
package render
