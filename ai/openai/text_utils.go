package openai

import "strings"

// collapseWhitespace joins all whitespace runs into single spaces so that
// paragraph formatting does not change the embedding of the same words.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// prepareTexts collapses whitespace in every text and reports whether any
// input is blank after trimming.
func prepareTexts(texts []string) ([]string, bool) {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = collapseWhitespace(t)
		if out[i] == "" {
			return nil, false
		}
	}
	return out, true
}
