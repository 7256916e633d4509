package bill

import "strings"

// KeyVotes is the curated set of bill numbers with high corporate interest.
var KeyVotes = []string{
	"C-11", // Online Streaming Act
	"C-18", // Online News Act
	"C-27", // Digital Charter Implementation Act
	"C-50", // Canadian Sustainable Jobs Act
	"C-56", // Affordable Housing and Groceries Act
	"C-59", // Fall Economic Statement Implementation Act
	"C-69", // Budget Implementation Act, 2024
}

// IsKeyVote reports whether number is in KeyVotes. Matching ignores case
// and surrounding space.
func IsKeyVote(number string) bool {
	n := NormalizeNumber(number)
	for _, k := range KeyVotes {
		if k == n {
			return true
		}
	}
	return false
}

// NormalizeNumber uppercases and trims a bill number: " c-11 " -> "C-11".
func NormalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}
