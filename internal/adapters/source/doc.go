// Package source provides entry readers for import files and a file watcher
// that wakes a following import when its input grows.
//
// JSON-lines files carry one object per line. CSV files carry a header row
// naming the fields of every following row; values are kept as strings.
package source
