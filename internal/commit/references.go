package commit

import (
	"regexp"
	"strings"
)

// referencePattern matches issue and pull request identifiers such as
// "#123", "(#45)" and "GH-7".
var referencePattern = regexp.MustCompile(`(?:^|[\s(\[,])(#\d+|GH-\d+)\b`)

// References extracts issue/PR identifiers from a commit message in order of
// first appearance. "GH-7" is normalised to "#7". Returns an empty, non-nil
// slice when the message references nothing.
func References(message string) []string {
	refs := []string{}
	seen := make(map[string]bool)

	for _, m := range referencePattern.FindAllStringSubmatch(message, -1) {
		ref := m[1]
		if strings.HasPrefix(ref, "GH-") {
			ref = "#" + strings.TrimPrefix(ref, "GH-")
		}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	return refs
}
