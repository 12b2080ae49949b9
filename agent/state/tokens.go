package state

// EstimateTokens approximates the token count of text with a Unicode-aware
// heuristic: roughly 4 ASCII characters per token, while non-ASCII runes
// (CJK, Cyrillic, emoji) are counted conservatively at one token each.
func EstimateTokens(text string) int {
	weight := 0
	for _, r := range text {
		if r <= 127 {
			weight++
		} else {
			weight += 4
		}
	}
	return (weight + 3) / 4
}
