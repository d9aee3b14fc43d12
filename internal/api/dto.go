package api

import (
	"github.com/starford/raido/internal/docservice"
	"github.com/starford/raido/internal/index"
)

// DocumentDetail is the full document response type (aliased from the
// domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from
// the domain layer).
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents"`
	Total     int                `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// TagsResponse wraps the corpus tag histogram.
type TagsResponse struct {
	Tags []index.TagCount `json:"tags"`
}
