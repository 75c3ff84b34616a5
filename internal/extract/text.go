package extract

import (
	"strings"

	"linkjd/internal/locale"
)

// NormalizeText replaces non-breaking spaces, strips trailing whitespace from
// every line and trims the result. Applying it twice changes nothing.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// splitLines returns the trimmed, non-empty lines of text
func splitLines(text string) []string {
	raw := strings.Split(NormalizeText(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// firstLine returns the trimmed first line of s
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// splitDocumentTitle reads "<title> | <company> | <site>" style document
// titles. Both values are empty unless at least two segments are present.
func splitDocumentTitle(docTitle string) (title, company string) {
	var parts []string
	for _, p := range strings.Split(docTitle, " | ") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// refineTitle looks for the line equal to the company name and returns the
// first following line, within window lines, that is not top-card noise.
func refineTitle(lines []string, company string, window int) string {
	if company == "" {
		return ""
	}
	for i, line := range lines {
		if line != company {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+window; j++ {
			if !locale.TitleNoise.MatchString(lines[j]) {
				return lines[j]
			}
		}
		return ""
	}
	return ""
}

// findLocation returns the text before the bullet on the first line that
// carries both a bullet separator and a relative-time marker
func findLocation(lines []string) string {
	for _, line := range lines {
		if !locale.RelativeTime.MatchString(line) {
			continue
		}
		cut := -1
		for _, sep := range locale.BulletSeparators {
			if i := strings.Index(line, sep); i >= 0 && (cut < 0 || i < cut) {
				cut = i
			}
		}
		if cut < 0 {
			continue
		}
		if loc := strings.TrimSpace(line[:cut]); loc != "" {
			return loc
		}
	}
	return ""
}

// hasDescriptionHeading reports whether the description start heading is present
func hasDescriptionHeading(mainText string) bool {
	return locale.DescriptionStart.MatchString(mainText)
}

// sliceDescription returns the text between the description heading and the
// next section heading. The heading itself is dropped; with no end heading the
// remainder of the text is kept.
func sliceDescription(mainText string) string {
	loc := locale.DescriptionStart.FindStringIndex(mainText)
	if loc == nil {
		return ""
	}
	tail := strings.TrimSpace(mainText[loc[1]:])

	if end := locale.DescriptionEnd.FindStringIndex(tail); end != nil && end[0] > 0 {
		tail = tail[:end[0]]
	}
	return NormalizeText(tail)
}
