package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxSearchWindow is the default index.max_result_window.
const maxSearchWindow = 10000

// SearchBody renders the criteria as an Elasticsearch request body. A non-empty
// text adds a fuzzy multi_match over title and description. Offsets past the
// result window are rejected with ErrInvalidFilter.
func (c Criteria) SearchBody(text string) (map[string]any, error) {
	if c.Offset >= maxSearchWindow {
		return nil, fmt.Errorf("%w: offset must be below %d", ErrInvalidFilter, maxSearchWindow)
	}

	var must []map[string]any
	if text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		})
	}

	var filter []map[string]any
	if c.Title != "" {
		filter = append(filter, map[string]any{
			"wildcard": map[string]any{
				"title.keyword": map[string]any{"value": "*" + escapeWildcard(c.Title) + "*", "case_insensitive": true},
			},
		})
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		r := map[string]any{}
		if c.MinPrice != nil {
			r["gte"] = *c.MinPrice
		}
		if c.MaxPrice != nil {
			r["lte"] = *c.MaxPrice
		}
		filter = append(filter, map[string]any{"range": map[string]any{"price": r}})
	}
	if c.CategoryID != uuid.Nil {
		filter = append(filter, map[string]any{"term": map[string]any{"category_id": c.CategoryID.String()}})
	}
	if c.Size != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"sizes": string(c.Size)}})
	}

	boolQ := map[string]any{}
	if len(must) > 0 {
		boolQ["must"] = must
	}
	if len(filter) > 0 {
		boolQ["filter"] = filter
	}
	query := map[string]any{"match_all": map[string]any{}}
	if len(boolQ) > 0 {
		query = map[string]any{"bool": boolQ}
	}

	body := map[string]any{
		"query":            query,
		"from":             c.Offset,
		"track_total_hits": true,
	}
	// from+size must stay inside the window
	size := maxSearchWindow - c.Offset
	if c.Limit > 0 && c.Limit < size {
		size = c.Limit
	}
	body["size"] = size
	if text == "" {
		sort := make([]map[string]any, 0, len(c.Order))
		for _, k := range c.Order {
			field := k.Column
			if field == "title" {
				field = "title.keyword"
			}
			dir := "asc"
			if k.Desc {
				dir = "desc"
			}
			sort = append(sort, map[string]any{field: map[string]any{"order": dir}})
		}
		body["sort"] = sort
	}
	return body, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
