// Package report renders the terminal summary of a crawl run.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/amosWeiskopf/newsharvest/internal/models"
)

// Render formats a crawl summary in the requested format.
func Render(summary *models.CrawlSummary, format string) (string, error) {
	switch format {
	case "json":
		return renderJSON(summary)
	case "text":
		return renderText(summary), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func renderJSON(summary *models.CrawlSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	return string(data), nil
}

func renderText(summary *models.CrawlSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source:      %s\n", summary.Source)
	fmt.Fprintf(&b, "Start id:    %d\n", summary.StartID)
	fmt.Fprintf(&b, "End cursor:  %d\n", summary.EndCursor)
	fmt.Fprintf(&b, "Batches:     %d\n", summary.Batches)
	fmt.Fprintf(&b, "Saved:       %d\n", summary.Saved)
	fmt.Fprintf(&b, "Skipped:     %d\n", summary.Skipped)
	fmt.Fprintf(&b, "Failed:      %d\n", summary.Failed)
	fmt.Fprintf(&b, "Stop reason: %s\n", summary.StopReason)
	fmt.Fprintf(&b, "Elapsed:     %s\n", summary.Elapsed.Round(time.Millisecond))
	return b.String()
}
