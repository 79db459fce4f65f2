package collection

import (
	"errors"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/vizzuality/rwgo/catalog"
	"github.com/vizzuality/rwgo/config"
	"github.com/vizzuality/rwgo/resources"
)

// options shaping a collection search
type Options struct {
	// application identifiers to search (defaults to the configured list)
	Apps []string
	// catalog environment (defaults to the configured environment)
	Env string
	// maximum number of items in the result (defaults to the page size)
	Limit int
	// attribute to order items by (defaults to "name")
	Order string
	// sort rule, ascending ("asc") or descending ("desc"; the default)
	Sort string
	// object types to search (defaults to dataset and layer)
	ObjectTypes []string
	// number of candidate records requested from the catalog (defaults to
	// the configured catalog page size)
	PageSize int
}

// A Collection is the bounded, ordered, filtered result of one search
// operation against the catalog. It is built once at construction from a
// live query and immutable afterward; it supports index access and a
// restartable forward-only iteration cursor.
type Collection struct {
	// lowercase query tokens, split on whitespace (an empty list is a
	// legal matches-nothing state)
	Search []string

	items        []resources.Resource
	iterPosition int
}

// New resolves a free-text search plus object-type scope into a bounded,
// ordered set of typed resources. The catalog page itself being empty is an
// EmptyCatalogError; no matches after filtering is a valid empty result.
func New(client *catalog.Client, search string, opts Options) (*Collection, error) {
	if opts.Apps == nil {
		opts.Apps = config.Catalog.Applications
	}
	if opts.Env == "" {
		opts.Env = config.Catalog.Environment
	}
	if opts.PageSize <= 0 || opts.PageSize > config.MaxPageSize {
		opts.PageSize = config.Catalog.PageSize
	}
	if opts.PageSize <= 0 || opts.PageSize > config.MaxPageSize {
		opts.PageSize = config.MaxPageSize
	}
	if opts.Limit <= 0 {
		opts.Limit = opts.PageSize
	}
	if opts.Order == "" {
		opts.Order = "name"
	}
	if opts.Sort == "" {
		opts.Sort = "desc"
	}
	if opts.ObjectTypes == nil {
		opts.ObjectTypes = []string{"dataset", "layer"}
	}

	c := &Collection{
		Search: strings.Fields(strings.ToLower(strings.TrimSpace(search))),
	}

	page, err := fetchCandidates(client, opts)
	if err != nil {
		return nil, err
	}
	matched, err := filterRecords(client, page, c.Search)
	if err != nil {
		return nil, err
	}
	// attribute keys are camelCase and case-sensitive; only the sort rule
	// is case-folded
	c.items, err = orderItems(matched, opts.Order,
		strings.ToLower(opts.Sort), opts.Limit)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Requests one page of candidate raw records per requested object type
// (datasets answer for "dataset" and "table"). One kind coming back empty is
// tolerated as long as another produced candidates; the page as a whole
// being empty is an EmptyCatalogError.
func fetchCandidates(client *catalog.Client, opts Options) ([]catalog.RawRecord, error) {
	page := make([]catalog.RawRecord, 0)

	if slices.Contains(opts.ObjectTypes, "dataset") ||
		slices.Contains(opts.ObjectTypes, "table") {
		records, err := client.FetchPage(catalog.KindDataset, opts.Apps, opts.Env,
			[]string{"layer", "vocabulary", "metadata"}, opts.PageSize)
		if err != nil {
			var empty *catalog.EmptyCatalogError
			if !errors.As(err, &empty) {
				return nil, err
			}
		}
		page = append(page, records...)
	}

	if slices.Contains(opts.ObjectTypes, "layer") {
		records, err := client.FetchPage(catalog.KindLayer, opts.Apps, opts.Env,
			[]string{"vocabulary", "metadata"}, opts.PageSize)
		if err != nil {
			var empty *catalog.EmptyCatalogError
			if !errors.As(err, &empty) {
				return nil, err
			}
		}
		page = append(page, records...)
	}

	if len(page) == 0 {
		return nil, &catalog.EmptyCatalogError{Kind: strings.Join(opts.ObjectTypes, "/")}
	}
	return page, nil
}

// a raw record matches if any search token is a case-insensitive substring
// of its name, or of its description when one is present
func matches(record catalog.RawRecord, search []string) bool {
	attrs := resources.Attributes(record.Attributes)
	name := strings.ToLower(attrs.GetString("name"))
	description := strings.ToLower(attrs.GetString("description"))
	for _, token := range search {
		if name != "" && strings.Contains(name, token) {
			return true
		}
		if description != "" && strings.Contains(description, token) {
			return true
		}
	}
	return false
}

// filters the candidate records and wraps each match into the correct
// typed resource variant, preserving encounter order
func filterRecords(client *catalog.Client, records []catalog.RawRecord,
	search []string) ([]resources.Resource, error) {

	matched := make([]resources.Resource, 0)
	for _, record := range records {
		if !matches(record, search) {
			continue
		}
		switch record.Type {
		case "dataset":
			d, err := resources.DatasetFromRecord(client, record)
			if err != nil {
				return nil, err
			}
			matched = append(matched, d)
		case "layer":
			matched = append(matched, resources.LayerFromRecord(client, record))
		}
	}
	return matched, nil
}

// Orders the matched resources by the chosen attribute and truncates the
// result to the limit. Records sharing an order-key value collide
// last-write-wins: exactly one survives per distinct key. "asc" sorts
// ascending, anything else must be "desc" and sorts descending.
func orderItems(items []resources.Resource, order, sortRule string,
	limit int) ([]resources.Resource, error) {

	if sortRule != "asc" && sortRule != "desc" {
		return nil, &OrderKeyError{Order: order, Sort: sortRule}
	}

	// map each order-key value to its owning record (last write wins)
	byKey := make(map[string]resources.Resource)
	numForKey := make(map[string]float64)
	keys := make([]string, 0, len(items))
	var sawString, sawNumber bool
	for _, item := range items {
		value, ok := item.Attributes()[order]
		if !ok || value == nil {
			return nil, &OrderKeyError{Order: order, Sort: sortRule}
		}
		var key string
		switch v := value.(type) {
		case string:
			key = v
			sawString = true
		case float64:
			key = strconv.FormatFloat(v, 'g', -1, 64)
			numForKey[key] = v
			sawNumber = true
		case bool:
			// booleans sort like 0/1
			key = strconv.FormatBool(v)
			if v {
				numForKey[key] = 1
			}
			sawNumber = true
		default:
			return nil, &OrderKeyError{Order: order, Sort: sortRule}
		}
		if _, dup := byKey[key]; !dup {
			keys = append(keys, key)
		}
		byKey[key] = item
	}

	// string and numeric order keys can't be compared with each other
	if sawString && sawNumber {
		return nil, &OrderKeyError{Order: order, Sort: sortRule}
	}

	// keys sort numerically when every value is a number, lexicographically
	// otherwise
	if sawNumber {
		sort.Slice(keys, func(i, j int) bool {
			return numForKey[keys[i]] < numForKey[keys[j]]
		})
	} else {
		sort.Strings(keys)
	}
	if sortRule == "desc" {
		slices.Reverse(keys)
	}

	ordered := make([]resources.Resource, 0, len(keys))
	for _, key := range keys {
		ordered = append(ordered, byKey[key])
	}
	if limit < len(ordered) {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

// the number of items in the collection
func (c *Collection) Len() int {
	return len(c.items)
}

// index access into the collection
func (c *Collection) Item(i int) resources.Resource {
	return c.items[i]
}

// the collection's items in order
func (c *Collection) Items() []resources.Resource {
	return c.items
}

// Next advances the collection's iteration cursor, returning false when
// the pass is exhausted. An exhausted cursor resets to the start, so the
// collection can be iterated again.
func (c *Collection) Next() (resources.Resource, bool) {
	if c.iterPosition >= len(c.items) {
		c.iterPosition = 0
		return nil, false
	}
	c.iterPosition++
	return c.items[c.iterPosition-1], true
}
