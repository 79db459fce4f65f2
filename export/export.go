// This package converts tabular query results into Frictionless data
// packages (https://specs.frictionlessdata.io/data-package/) so they can
// be handed to downstream tooling.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frictionlessdata/datapackage-go/datapackage"
	"github.com/frictionlessdata/datapackage-go/validator"

	"github.com/vizzuality/rwgo/catalog"
)

// characters disallowed in a data package/resource name
var invalidNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// derives a legal package/resource name from free text
func packageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "query-result"
	}
	return name
}

// PackageFromRows builds a data package holding the given query rows as a
// single inline JSON resource, validated in memory.
func PackageFromRows(name string, rows []catalog.Row) (*datapackage.Package, error) {
	if rows == nil {
		return nil, fmt.Errorf("No rows were given for data package '%s'", name)
	}

	// inline resources want plain interface values
	data := make([]any, len(rows))
	for i, row := range rows {
		data[i] = map[string]any(row)
	}

	descriptor := map[string]any{
		"name": packageName(name),
		"resources": []any{
			map[string]any{
				"name":    packageName(name),
				"profile": "data-resource",
				"format":  "json",
				"data":    data,
			},
		},
	}
	return datapackage.New(descriptor, ".", validator.InMemoryLoader())
}
