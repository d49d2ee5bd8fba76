package soa

import (
	"context"
	"github.com/skybi/soa-bridge/internal/envelope"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"github.com/skybi/soa-bridge/internal/normalize"
	"github.com/skybi/soa-bridge/internal/session"
)

// DefaultSearchProvider is the provider of the saved query search
const DefaultSearchProvider = "Fnd0BaseProvider"

// SearchProjection is applied to every search result
var SearchProjection = normalize.Projection{
	Required: []string{"object_name"},
	Optional: []string{"object_desc"},
}

// SearchQuery describes a single search
type SearchQuery struct {
	ProviderName string                     `json:"providerName"`
	Criteria     map[string]string          `json:"searchCriteria"`
	Filters      map[string]jsonvalue.Value `json:"searchFilterMap"`
	StartIndex   int                        `json:"startIndex"`
	MaxToLoad    int                        `json:"maxToLoad"`
	MaxToReturn  int                        `json:"maxToReturn"`

	// Attributes are requested through the property policy and are not part of the search input
	Attributes []string `json:"-"`
}

// SearchResult holds the joined results of a search
type SearchResult struct {
	TotalFound int                 `json:"total_found"`
	Results    []*normalize.Joined `json:"results"`
}

type performSearchBody struct {
	SearchInput *SearchQuery `json:"searchInput"`
}

type performSearchResponse struct {
	envelope.Response
	TotalFound    int                  `json:"totalFound"`
	TotalLoaded   int                  `json:"totalLoaded"`
	SearchResults []envelope.ObjectRef `json:"searchResults"`
}

// Search performs a search and joins its result references against the returned model objects.
// Results without a model object or without an object name are skipped.
func (client *Client) Search(ctx context.Context, ses *session.Session, query SearchQuery) (*SearchResult, error) {
	if query.ProviderName == "" {
		query.ProviderName = DefaultSearchProvider
	}
	if query.Criteria == nil {
		query.Criteria = map[string]string{}
	}
	if query.Filters == nil {
		query.Filters = map[string]jsonvalue.Value{}
	}

	policy := envelope.NewPropertyPolicy().
		WithType("WorkspaceObject", append(append([]string{}, SearchProjection.Required...), SearchProjection.Optional...)...).
		WithType("WorkspaceObject", query.Attributes...).
		Build()

	response, err := call[performSearchResponse](ctx, client, ses, EndpointPerformSearch, &performSearchBody{SearchInput: &query}, policy)
	if err != nil {
		return nil, err
	}
	logPartialErrors(EndpointPerformSearch, response.ServiceData)

	projection := SearchProjection
	projection.Optional = append(append([]string{}, projection.Optional...), query.Attributes...)
	return &SearchResult{
		TotalFound: response.TotalFound,
		Results:    normalize.Join(response.SearchResults, response.ServiceData, projection),
	}, nil
}
