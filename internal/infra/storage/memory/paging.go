package memory

// page slices items to [offset, offset+limit); a non-positive limit returns the rest.
func page[T any](items []T, limit, offset int) []T {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}
