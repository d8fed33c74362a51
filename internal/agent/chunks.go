package agent

// ChunkSize is how much base64 text rides in one data-channel message,
// kept under common data-channel payload limits.
const ChunkSize = 48 * 1024

// splitChunks slices a base64 string into ChunkSize pieces. Concatenating
// the pieces in index order restores the input exactly.
func splitChunks(b64 string, size int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	if b64 == "" {
		return nil
	}
	out := make([]string, 0, (len(b64)+size-1)/size)
	for start := 0; start < len(b64); start += size {
		end := start + size
		if end > len(b64) {
			end = len(b64)
		}
		out = append(out, b64[start:end])
	}
	return out
}
