package resources

import (
	"fmt"
	"strings"
)

// HTML renders a resource as a notebook-embeddable box. Absent fields are
// substituted with placeholder text; this function never faults on a
// missing key and has no network or mutation side effects.
func HTML(item Resource) string {
	var kindOfItem, urlLink string
	switch res := item.(type) {
	case *Layer:
		kindOfItem = "Layer"
		urlLink = fmt.Sprintf("%s/v1/layer/%s?includes=vocabulary,metadata", res.Server(), res.Id())
	case *Dataset:
		kindOfItem = "Dataset"
		urlLink = fmt.Sprintf("%s/v1/dataset/%s?includes=vocabulary,metadata,layer", res.Server(), res.Id())
	default:
		kindOfItem = "Unknown"
	}

	attrs := item.Attributes()
	provider := attrs.GetString("provider")
	if provider == "" {
		provider = "unknown"
	}
	connector := attrs.GetString("connectorUrl")
	tableName := attrs.GetString("tableName")

	tableStatement := fmt.Sprintf("Data source %s", provider)
	switch {
	case connector != "" && provider == "cartodb":
		tableStatement = fmt.Sprintf("Carto table: <a href=%s target='_blank'>%s</a>",
			connector, tableName)
	case connector != "" && provider == "csv":
		tableStatement = fmt.Sprintf("CSV Table: <a href=%s target='_blank'>%s</a>",
			connector, tableName)
	case provider == "gee":
		tableStatement = fmt.Sprintf("GEE asset: <a href='https://code.earthengine.google.com/asset=%s' target='_blank'>%s</a>",
			tableName, tableName)
	}

	name := attrs.GetString("name")
	if name == "" {
		name = "(unnamed)"
	}
	apps := attrs.GetStringList("application")
	appText := "N/A"
	if len(apps) > 0 {
		appText = strings.ToUpper(strings.Join(apps, ", "))
	}
	updatedAt := attrs.GetString("updatedAt")
	if updatedAt == "" {
		updatedAt = "n/a"
	}
	published := "unknown"
	if p, ok := attrs["published"]; ok {
		published = fmt.Sprintf("%v", p)
	}

	return "<div class='item_container' style='height: auto; overflow: hidden; border: 1px solid #80ceb9;" +
		"border-radius: 2px; background: #f2fffb; line-height: 1.21429em; padding: 10px;'>" +
		"<div class='item_left' style='width: 210px; float: left;'>" +
		"<a href='https://resourcewatch.org/' target='_blank'>" +
		"<img class='itemThumbnail' src='https://resourcewatch.org/static/images/logo-embed.png'>" +
		"</a></div><div class='item_right' style='float: none; width: auto; overflow: hidden;'>" +
		fmt.Sprintf("<a href=%s target='_blank'><b>%s</b></a>", urlLink, name) +
		fmt.Sprintf("<br> %s 🗺%s in %s.", tableStatement, kindOfItem, appText) +
		fmt.Sprintf("<br>Last Modified: %s", updatedAt) +
		fmt.Sprintf("<br>Published: %s", published) +
		" </div> </div>"
}
