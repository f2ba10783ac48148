// Package naming resolves versioned output filenames for exports. It renders
// the user's token pattern and scans the output folder for the next free
// version number.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Recognized tokens. The token letter is case-insensitive, the braces are
// literal. Anything else inside braces is left verbatim.
var (
	versionTokenRe = regexp.MustCompile(`\{[Vv]+\}`)
	dateTokenRe    = regexp.MustCompile(`(?i)\{DATE\}`)
	timeTokenRe    = regexp.MustCompile(`(?i)\{TIME\}`)
	seqTokenRe     = regexp.MustCompile(`(?i)\{SEQ\}`)
)

// RenderPattern expands a naming pattern into a concrete filename stem.
// {V}, {VV}, {VVV}, ... render version zero-padded to the token's run length
// (padding never truncates), {DATE} renders now as YYYY-MM-DD, {TIME} as
// HH-MM, {SEQ} as sequenceName. Pure given its arguments.
func RenderPattern(pattern string, version int, sequenceName string, now time.Time) string {
	out := versionTokenRe.ReplaceAllStringFunc(pattern, func(token string) string {
		width := len(token) - 2 // number of Vs between the braces
		return fmt.Sprintf("%0*d", width, version)
	})
	out = dateTokenRe.ReplaceAllLiteralString(out, now.Format("2006-01-02"))
	out = timeTokenRe.ReplaceAllLiteralString(out, now.Format("15-04"))
	out = seqTokenRe.ReplaceAllLiteralString(out, sequenceName)
	return out
}

// CleanSequenceName replaces the characters that are invalid in filenames on
// either platform with underscores. Sequence display names routinely contain
// colons and slashes.
func CleanSequenceName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name)
}
