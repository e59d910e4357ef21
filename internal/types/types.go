package types

// Article is a news item produced by the curator. Title and URL are
// non-empty for any article that passed validation. PublishedAt keeps
// the provider's original string form; source timezones vary.
type Article struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedAt   string `json:"publishedAt"`
	Source        string `json:"source"`
	Description   string `json:"description"`
	Content       string `json:"content,omitempty"`
	SearchContext string `json:"search_context,omitempty"`
}

// MarketPoint is one instrument's snapshot. Change and ChangePct are
// derived from the two most recent closes (or the provider's official
// previous close). Values are kept unrounded; rounding happens only
// when formatting for display.
type MarketPoint struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Close     float64 `json:"close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}
