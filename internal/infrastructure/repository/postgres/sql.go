package postgres

// defaultChunkSize keeps multi-row statements under the driver's 65535
// parameter cap with wide rows to spare.
const defaultChunkSize = 500

func anyValues[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func chunked[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = defaultChunkSize
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
