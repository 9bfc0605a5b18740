package analyzer

// ChunkText splits text into consecutive non-overlapping slices of maxChars
// characters (the last one shorter). Chunk boundaries may fall mid-sentence;
// each chunk is summarized independently and the results merged afterward, so
// no boundary awareness is needed. Slicing is rune-based so a boundary never
// lands inside a multi-byte character.
func ChunkText(text string, maxChars int) []string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/maxChars+1)
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
