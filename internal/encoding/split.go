package encoding

import "strings"

// SplitLines splits decoded text into lines on '\n', trimming a trailing
// '\r' from each line. A trailing newline does not produce a final empty
// line, matching how the rest of the pipeline counts lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for len(text) > 0 {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			lines = append(lines, strings.TrimSuffix(text, "\r"))
			break
		}
		lines = append(lines, strings.TrimSuffix(text[:idx], "\r"))
		text = text[idx+1:]
	}
	return lines
}
