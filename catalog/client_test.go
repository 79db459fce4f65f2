package catalog

// These tests verify that the catalog client issues well-formed requests
// and maps HTTP failures onto the error taxonomy.
import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// a catalog fixture serving one dataset and a one-element list
func newCatalogFixture(t *testing.T, requests *[]*http.Request) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, r)
		switch r.URL.Path {
		case "/v1/dataset/abc123":
			fmt.Fprint(w, `{"data": {"id": "abc123", "type": "dataset",
				"attributes": {"name": "Tree cover loss", "provider": "cartodb"}}}`)
		case "/v1/dataset":
			fmt.Fprint(w, `{"data": [{"id": "abc123", "type": "dataset",
				"attributes": {"name": "Tree cover loss"}}]}`)
		case "/v1/layer":
			fmt.Fprint(w, `{"data": []}`)
		case "/v1/query/abc123":
			fmt.Fprint(w, `{"data": [{"iso": "BRA", "loss": 12.5}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors": "not found"}`)
		}
	}))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	assert := assert.New(t)
	client, err := NewClient(Config{URL: "hahahahahahaha"})
	assert.Nil(client, "Invalid catalog URL should not produce a client")
	assert.NotNil(err, "Invalid catalog URL didn't trigger an error")
}

func TestFetchById(t *testing.T) {
	assert := assert.New(t)
	var requests []*http.Request
	server := newCatalogFixture(t, &requests)
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL})
	assert.Nil(err)

	record, err := client.FetchById(KindDataset, "abc123",
		[]string{"layer", "vocabulary", "metadata"})
	assert.Nil(err)
	assert.Equal("abc123", record.Id)
	assert.Equal("Tree cover loss", record.Attributes["name"])

	// the request carries the includes and a cache-busting nonce
	query := requests[0].URL.Query()
	assert.Equal("layer,vocabulary,metadata", query.Get("includes"))
	assert.NotEmpty(query.Get("hash"), "Read request carried no cache-busting nonce")
}

func TestFetchByIdReportsNotFound(t *testing.T) {
	assert := assert.New(t)
	var requests []*http.Request
	server := newCatalogFixture(t, &requests)
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	_, err := client.FetchById(KindDataset, "no-such-id", nil)
	assert.NotNil(err)
	var notFound *NotFoundError
	assert.ErrorAs(err, &notFound)
}

func TestFetchPage(t *testing.T) {
	assert := assert.New(t)
	var requests []*http.Request
	server := newCatalogFixture(t, &requests)
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	records, err := client.FetchPage(KindDataset, []string{"gfw", "rw"}, "production",
		[]string{"layer"}, 1000)
	assert.Nil(err)
	assert.Equal(1, len(records))

	query := requests[0].URL.Query()
	assert.Equal("gfw,rw", query.Get("app"))
	assert.Equal("production", query.Get("env"))
	assert.Equal("1000", query.Get("page[size]"))
	assert.NotEmpty(query.Get("hash"))
}

func TestFetchPageReportsEmptyCatalog(t *testing.T) {
	assert := assert.New(t)
	var requests []*http.Request
	server := newCatalogFixture(t, &requests)
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	_, err := client.FetchPage(KindLayer, []string{"rw"}, "production", nil, 1000)
	var empty *EmptyCatalogError
	assert.ErrorAs(err, &empty, "Empty server page didn't trigger EmptyCatalogError")
}

func TestQueryPassThrough(t *testing.T) {
	assert := assert.New(t)
	var requests []*http.Request
	server := newCatalogFixture(t, &requests)
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	rows, err := client.Query("abc123", "SELECT * FROM my_table LIMIT 5")
	assert.Nil(err)
	assert.Equal(1, len(rows))
	assert.Equal("BRA", rows[0]["iso"])
	assert.Equal("SELECT * FROM my_table LIMIT 5", requests[0].URL.Query().Get("sql"))
}

func TestTransportFailureRaises(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close() // nothing listens here anymore

	client, _ := NewClient(Config{URL: url})
	_, err := client.FetchById(KindDataset, "abc123", nil)
	var transport *TransportError
	assert.ErrorAs(err, &transport, "Network failure didn't trigger TransportError")
}

func TestPatchReportsStatusWithoutRaising(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPatch, r.Method)
		assert.Equal("Bearer sekrit", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	status, _, err := client.Patch(KindDataset, "abc123", "sekrit",
		map[string]any{"name": "renamed"})
	assert.Nil(err, "A non-success PATCH status should be reported, not raised")
	assert.Equal(http.StatusUnauthorized, status)
}

func TestPatchReturnsUpdatedRecord(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		fmt.Fprintf(w, `{"data": {"id": "abc123", "type": "dataset",
			"attributes": {"name": "%s"}}}`, payload["name"])
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	status, record, err := client.Patch(KindDataset, "abc123", "sekrit",
		map[string]any{"name": "renamed"})
	assert.Nil(err)
	assert.Equal(http.StatusOK, status)
	assert.Equal("renamed", record.Attributes["name"])
}

func TestDeleteReturnsStatus(t *testing.T) {
	assert := assert.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodDelete, r.Method)
		assert.Equal("/layer/xyz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL})
	status, err := client.Delete(KindLayer, "xyz", "sekrit")
	assert.Nil(err)
	assert.Equal(http.StatusOK, status)
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
