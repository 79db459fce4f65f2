package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// API version prefix for read endpoints
	apiPrefix = "v1"
	// default transport timeout
	defaultTimeout = 30 * time.Second
)

// the kind of a catalog record
type Kind string

const (
	KindDataset Kind = "dataset"
	KindLayer   Kind = "layer"
)

// a raw catalog record as it appears in the JSON envelope, before it is
// wrapped into a typed resource
type RawRecord struct {
	Id         string         `json:"id"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
}

// a single row returned by the SQL connector pass-through
type Row map[string]any

// parameters that define a connection to a catalog
type Config struct {
	// the base URL at which the catalog is accessed
	URL string
	// transport timeout (defaults to 30s if zero)
	Timeout time.Duration
}

// Client issues HTTP requests against the catalog's versioned REST API.
// Each instance owns its configuration; there is no process-wide state.
type Client struct {
	// catalog base URL
	BaseURL string
	// HTTP client used for all requests
	Client http.Client
}

// creates a catalog client from the given configuration
func NewClient(conf Config) (*Client, error) {
	u, err := url.ParseRequestURI(conf.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("Invalid catalog URL: %s", conf.URL)
	}
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimSuffix(conf.URL, "/"),
		Client:  SecureHttpClient(timeout),
	}, nil
}

// returns a random 16-bit cache-busting nonce, appended to every read
// request to defeat intermediary HTTP caching of what should be a fresh read
func nonce() string {
	return strconv.Itoa(rand.Intn(1 << 16))
}

// performs a GET request on the given resource, returning the resulting
// response and error
func (client *Client) get(resource string, values url.Values) (*http.Response, error) {
	res := fmt.Sprintf("%s/%s?%s", client.BaseURL, resource, values.Encode())
	slog.Debug(fmt.Sprintf("GET: %s", res))
	req, err := http.NewRequest(http.MethodGet, res, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := client.Client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: res, Message: err.Error()}
	}
	return resp, nil
}

// fetches a single record of the given kind by ID, with the given nested
// sub-objects included in its attributes
func (client *Client) FetchById(kind Kind, id string, includes []string) (RawRecord, error) {
	var record RawRecord

	p := url.Values{}
	if len(includes) > 0 {
		p.Add("includes", strings.Join(includes, ","))
	}
	p.Add("hash", nonce())

	resource := fmt.Sprintf("%s/%s/%s", apiPrefix, kind, id)
	resp, err := client.get(resource, p)
	if err != nil {
		return record, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return record, &NotFoundError{Kind: string(kind), Id: id, URL: client.BaseURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return record, err
	}
	var envelope struct {
		Data RawRecord `json:"data"`
	}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return record, err
	}
	record = envelope.Data
	if record.Id == "" {
		record.Id = id
	}
	return record, nil
}

// fetches one page of records of the given kind, scoped to the given
// applications and environment
func (client *Client) FetchPage(kind Kind, apps []string, env string,
	includes []string, pageSize int) ([]RawRecord, error) {

	p := url.Values{}
	p.Add("app", strings.Join(apps, ","))
	p.Add("env", env)
	if len(includes) > 0 {
		p.Add("includes", strings.Join(includes, ","))
	}
	p.Add("page[size]", strconv.Itoa(pageSize))
	p.Add("hash", nonce())

	resource := fmt.Sprintf("%s/%s", apiPrefix, kind)
	resp, err := client.get(resource, p)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NotFoundError{Kind: string(kind), URL: client.BaseURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data []RawRecord `json:"data"`
	}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, err
	}
	if len(envelope.Data) < 1 {
		return nil, &EmptyCatalogError{Kind: string(kind)}
	}
	return envelope.Data, nil
}

// passes a SQL query through the catalog's query endpoint for the dataset
// with the given ID, returning the resulting rows
func (client *Client) Query(id, sql string) ([]Row, error) {
	p := url.Values{}
	p.Add("sql", sql)

	resource := fmt.Sprintf("%s/query/%s", apiPrefix, id)
	resp, err := client.get(resource, p)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NotFoundError{Kind: "query", Id: id, URL: client.BaseURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data []Row `json:"data"`
	}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// issues a mutation request with a bearer token, returning the response.
// Mutation endpoints are not versioned, matching the catalog's API.
func (client *Client) mutate(method string, kind Kind, id, token string,
	body io.Reader) (*http.Response, error) {

	res := fmt.Sprintf("%s/%s/%s", client.BaseURL, kind, id)
	slog.Debug(fmt.Sprintf("%s: %s", method, res))
	req, err := http.NewRequest(method, res, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := client.Client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: res, Message: err.Error()}
	}
	return resp, nil
}

// issues a PATCH against the record with the given kind and ID, returning
// the response status and the updated record (valid only for 2xx statuses).
// A non-success status is reported through the return value, not an error.
func (client *Client) Patch(kind Kind, id, token string,
	fields map[string]any) (int, RawRecord, error) {

	var record RawRecord
	data, err := json.Marshal(fields)
	if err != nil {
		return 0, record, err
	}
	resp, err := client.mutate(http.MethodPatch, kind, id, token, bytes.NewReader(data))
	if err != nil {
		return 0, record, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, record, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, record, err
	}
	var envelope struct {
		Data RawRecord `json:"data"`
	}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return resp.StatusCode, record, err
	}
	return resp.StatusCode, envelope.Data, nil
}

// issues a DELETE against the record with the given kind and ID, returning
// the response status (no body contract is relied upon)
func (client *Client) Delete(kind Kind, id, token string) (int, error) {
	resp, err := client.mutate(http.MethodDelete, kind, id, token, http.NoBody)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
