// Package summary reports scan statistics and skipped entries
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bethropolis/ccrawler/internal/walker"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Debug(format string, args ...any)
}

// DisplayResults logs run statistics at debug level.
func DisplayResults(logger Logger, runID string, matches, skipped int, duration time.Duration) {
	logger.Debug("Run %s matched %d files (%d skipped) in %v.", runID, matches, skipped, duration.Round(time.Millisecond))
}

// DisplaySkippedItems lists skipped entries, sorted by path, to output.
func DisplaySkippedItems(output io.Writer, skippedItems []walker.SkippedItem) {
	fmt.Fprintf(output, "--- Skipped Items (%d) ---\n", len(skippedItems))
	if len(skippedItems) == 0 {
		fmt.Fprintln(output, "No items were skipped.")
		return
	}

	items := append([]walker.SkippedItem(nil), skippedItems...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
	for _, item := range items {
		typeStr := "FILE"
		if item.IsDir {
			typeStr = "DIR " // Add space for alignment
		}
		fmt.Fprintf(output, "Skipped %s: %s [%s]\n", typeStr, item.Path, item.Reason)
	}
}
