package rag

// Chunk is one span of extracted text with its rune offset into the
// source page.
type Chunk struct {
	Text       string
	StartIndex int
}

// SplitText splits text into fixed-size overlapping chunks by rune count,
// recording each chunk's start offset.
func SplitText(text string, size, overlap int) []Chunk {
	if size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	var chunks []Chunk
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:       string(runes[i:end]),
			StartIndex: i,
		})
		if end == len(runes) {
			break
		}
		i += size - overlap
	}
	return chunks
}
