package schema

// PaginatedResponse represents a unified paginated API response
type PaginatedResponse[T any] struct {
	Pagination *PaginationMetadata `json:"pagination"`
	Data       []T                 `json:"data"`
}

// PaginationMetadata represents the metadata present in a PaginatedResponse.
// Clients page backwards through time by passing NextBefore as the 'before' query parameter.
type PaginationMetadata struct {
	Limit         uint64 `json:"limit"`
	TotalCount    uint64 `json:"total_count"`
	IncludedCount int    `json:"included_count"`
	NextBefore    *int64 `json:"next_before"`
}

// BuildPaginatedResponse builds a unified paginated API response.
// cursor extracts the unix timestamp of an element; it is applied to the last element if more elements are available.
func BuildPaginatedResponse[T any](limit, totalCount uint64, data []T, cursor func(T) int64) *PaginatedResponse[T] {
	metadata := &PaginationMetadata{
		Limit:         limit,
		TotalCount:    totalCount,
		IncludedCount: len(data),
	}
	if cursor != nil && len(data) > 0 && uint64(len(data)) < totalCount {
		next := cursor(data[len(data)-1])
		metadata.NextBefore = &next
	}
	return &PaginatedResponse[T]{
		Pagination: metadata,
		Data:       data,
	}
}
