package resources

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/vizzuality/rwgo/catalog"
)

// a decoded GeoJSON geometry attached to a query row
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// options shaping a tabular or CARTO SQL query
type QueryOptions struct {
	// decode each row's the_geom field into a Geometry under "geometry"
	DecodeGeom bool
	// API key passed to the CARTO SQL endpoint (cartodb providers only)
	CartoAPIKey string
}

// Query runs a SQL statement against the dataset's backing table. The
// placeholder "FROM data" is translated to the dataset's real table name
// before dispatch. Tabular datasets (csv/json providers) go through the
// catalog's query pass-through; cartodb datasets go to the CARTO SQL
// endpoint; any other provider is refused.
func (d *Dataset) Query(sql string, opts QueryOptions) ([]catalog.Row, error) {
	if d.tabular {
		return d.tableQuery(sql, opts)
	}
	provider := d.attributes.GetString("provider")
	if provider != "cartodb" {
		return nil, &UnsupportedProviderError{Provider: provider}
	}
	return d.cartoQuery(sql, opts)
}

// Head returns the first n rows of the dataset's backing table with
// geometry decoding enabled.
func (d *Dataset) Head(n int, cartoAPIKey string) ([]catalog.Row, error) {
	sql := fmt.Sprintf("SELECT * FROM data LIMIT %d", n)
	return d.Query(sql, QueryOptions{DecodeGeom: true, CartoAPIKey: cartoAPIKey})
}

// substitutes the dataset's real table name for the "FROM data" placeholder
func (d *Dataset) realTableName(sql string) string {
	tableName := d.attributes.GetString("tableName")
	if tableName == "" {
		tableName = "data"
	}
	return strings.ReplaceAll(sql, "FROM data", fmt.Sprintf("FROM %s", tableName))
}

// queries a tabular dataset through the catalog's SQL pass-through
func (d *Dataset) tableQuery(sql string, opts QueryOptions) ([]catalog.Row, error) {
	rows, err := d.client.Query(d.id, d.realTableName(sql))
	if err != nil {
		return nil, err
	}
	if opts.DecodeGeom {
		decodeGeometries(rows)
	}
	return rows, nil
}

// queries a cartodb dataset against its CARTO account's SQL endpoint
func (d *Dataset) cartoQuery(sql string, opts QueryOptions) ([]catalog.Row, error) {
	decodeGeom := opts.DecodeGeom
	if decodeGeom && !strings.Contains(sql, "the_geom") {
		sql = strings.Replace(sql, "SELECT", "SELECT the_geom,", 1)
	}
	if strings.Contains(sql, "count") {
		decodeGeom = false
	}
	sql = strings.ReplaceAll(d.realTableName(sql), `"`, "'")

	connector := d.attributes.GetString("connectorUrl")
	if connector == "" {
		return nil, fmt.Errorf("Dataset '%s' has no connector URL", d.id)
	}
	account := strings.Split(connector, ".carto.com/")[0]
	res := fmt.Sprintf("%s.carto.com/api/v2/sql", account)

	p := url.Values{}
	p.Add("q", sql)
	if opts.CartoAPIKey != "" {
		p.Add("api_key", opts.CartoAPIKey)
	}

	httpClient := catalog.SecureHttpClient(30 * time.Second)
	resp, err := httpClient.Get(fmt.Sprintf("%s?%s", res, p.Encode()))
	if err != nil {
		return nil, &catalog.TransportError{URL: res, Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Unable to query table '%s' with: %s", d.id, sql)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var cartoResult struct {
		Rows []catalog.Row `json:"rows"`
	}
	err = json.Unmarshal(body, &cartoResult)
	if err != nil {
		return nil, err
	}
	if decodeGeom {
		decodeGeometries(cartoResult.Rows)
	}
	return cartoResult.Rows, nil
}

// decodes each row's the_geom GeoJSON object into a Geometry stored under
// "geometry"; rows without a geometry are left alone
func decodeGeometries(rows []catalog.Row) {
	for _, row := range rows {
		obj, ok := row["the_geom"].(map[string]any)
		if !ok {
			continue
		}
		data, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		var geom Geometry
		if err := json.Unmarshal(data, &geom); err == nil && geom.Type != "" {
			row["geometry"] = geom
		}
	}
}
