package report

import (
	"fmt"
	"strings"

	"github.com/hal75-user/PC-System-Tool/pkg/validate"
)

// RenderFindings lists validation findings one per line with their state
// marker and comparison key. Confirmed findings show [confirmed], open
// confirmable ones [open], structural errors [error].
func RenderFindings(findings []validate.Finding) string {
	if len(findings) == 0 {
		return "No findings.\n"
	}

	var b strings.Builder
	for _, f := range findings {
		marker := "error"
		if f.Confirmable {
			marker = "open"
			if f.Confirmed {
				marker = "confirmed"
			}
		}
		fmt.Fprintf(&b, "[%-9s] %-24s %s\n", marker, f.Kind, f.Message)
		fmt.Fprintf(&b, "            key: %s\n", f.Key)
	}
	return b.String()
}
