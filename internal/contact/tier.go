package contact

import (
	"strings"

	"github.com/Lydell2627/portfolio-sub000/internal/types"
)

// SelectedPackagePrefix starts the line that records the chosen tier in the
// message body.
const SelectedPackagePrefix = "Selected package: "

// SelectedPackageLine formats the message line for tier.
func SelectedPackageLine(tier types.PricingTier) string {
	return SelectedPackagePrefix + tier.Name + " (" + tier.PriceRange + ")"
}

// WithSelectedPackage returns message with exactly one selected package
// line for tier. An existing line is replaced in place and any further ones
// are dropped; otherwise the line is appended after a blank line.
func WithSelectedPackage(message string, tier types.PricingTier) string {
	line := SelectedPackageLine(tier)

	lines := strings.Split(message, "\n")
	out := make([]string, 0, len(lines)+2)
	replaced := false
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), SelectedPackagePrefix) {
			if !replaced {
				out = append(out, line)
				replaced = true
			}
			continue
		}
		out = append(out, l)
	}
	if replaced {
		return strings.Join(out, "\n")
	}

	trimmed := strings.TrimRight(message, " \t\r\n")
	if trimmed == "" {
		return line
	}
	return trimmed + "\n\n" + line
}
