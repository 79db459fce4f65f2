package services

// Tests of the read-only catalog facade. The facade's router is exercised
// directly through an httptest server, with a mock catalog behind it.
import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vizzuality/rwgo/catalog"
	"github.com/vizzuality/rwgo/config"
	"github.com/vizzuality/rwgo/rwtest"
)

// stands up the facade in front of a mock catalog
func newFacadeFixture(t *testing.T, datasets, layers []catalog.RawRecord) (*rwtest.Server, *httptest.Server) {
	mock := rwtest.NewCatalogServer(datasets, layers)
	config.Catalog.URL = mock.URL
	config.Catalog.Applications = []string{"rw"}
	config.Catalog.Environment = "production"

	service, err := NewCatalogService()
	if err != nil {
		mock.Close()
		t.Fatalf("Couldn't create the facade: %s", err.Error())
	}
	facade := httptest.NewServer(service.(*prototype).Router)
	return mock, facade
}

func get(t *testing.T, url string, result any) int {
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %s", url, err.Error())
	}
	defer resp.Body.Close()
	if result != nil {
		json.NewDecoder(resp.Body).Decode(result)
	}
	return resp.StatusCode
}

func TestRootEndpoint(t *testing.T) {
	assert := assert.New(t)
	mock, facade := newFacadeFixture(t, nil, nil)
	defer mock.Close()
	defer facade.Close()

	var info ServiceInfoResponse
	status := get(t, facade.URL+"/", &info)
	assert.Equal(http.StatusOK, status)
	assert.Equal("rwgo catalog facade", info.Name)
	assert.Equal(version, info.Version)
	assert.Equal(mock.URL, info.Catalog)
}

func TestSearchEndpoint(t *testing.T) {
	assert := assert.New(t)
	datasets := []catalog.RawRecord{
		rwtest.DatasetRecord("ds-cover", "Forest Cover", "", "cartodb", 1),
		rwtest.DatasetRecord("ds-mangroves", "Mangrove Extent", "", "cartodb", 0),
	}
	layers := []catalog.RawRecord{
		rwtest.LayerRecord("ly-intact", "Intact Forest Landscapes", "", "ds-cover"),
	}
	mock, facade := newFacadeFixture(t, datasets, layers)
	defer mock.Close()
	defer facade.Close()

	var results SearchResultsResponse
	status := get(t, facade.URL+"/api/v1/search?search=forest&sort=asc", &results)
	assert.Equal(http.StatusOK, status)
	assert.Equal("forest", results.Search)
	assert.Equal(2, len(results.Resources))
	assert.Equal("Forest Cover", results.Resources[0].Name)
	assert.Equal("Intact Forest Landscapes", results.Resources[1].Name)
}

func TestSearchHonorsLimitAndObjectType(t *testing.T) {
	assert := assert.New(t)
	datasets := []catalog.RawRecord{
		rwtest.DatasetRecord("ds-cover", "Forest Cover", "", "cartodb", 0),
		rwtest.DatasetRecord("ds-loss", "Forest Loss", "", "csv", 0),
	}
	layers := []catalog.RawRecord{
		rwtest.LayerRecord("ly-intact", "Intact Forest Landscapes", "", "ds-cover"),
	}
	mock, facade := newFacadeFixture(t, datasets, layers)
	defer mock.Close()
	defer facade.Close()

	var results SearchResultsResponse
	status := get(t, facade.URL+"/api/v1/search?search=forest&object_type=dataset&limit=1", &results)
	assert.Equal(http.StatusOK, status)
	assert.Equal(1, len(results.Resources))
}

func TestSearchAgainstAnEmptyCatalogIs404(t *testing.T) {
	assert := assert.New(t)
	mock, facade := newFacadeFixture(t, nil, nil)
	defer mock.Close()
	defer facade.Close()

	status := get(t, facade.URL+"/api/v1/search?search=forest", nil)
	assert.Equal(http.StatusNotFound, status)
}

func TestSearchWithABadSortRuleIs422(t *testing.T) {
	assert := assert.New(t)
	datasets := []catalog.RawRecord{
		rwtest.DatasetRecord("ds-cover", "Forest Cover", "", "cartodb", 0),
	}
	mock, facade := newFacadeFixture(t, datasets, nil)
	defer mock.Close()
	defer facade.Close()

	status := get(t, facade.URL+"/api/v1/search?search=forest&sort=sideways", nil)
	assert.Equal(http.StatusUnprocessableEntity, status)
}

func TestGetDatasetEndpoint(t *testing.T) {
	assert := assert.New(t)
	datasets := []catalog.RawRecord{
		rwtest.DatasetRecord("ds-cover", "Forest Cover", "", "cartodb", 2),
	}
	mock, facade := newFacadeFixture(t, datasets, nil)
	defer mock.Close()
	defer facade.Close()

	var resource ResourceResponse
	status := get(t, facade.URL+"/api/v1/datasets/ds-cover", &resource)
	assert.Equal(http.StatusOK, status)
	assert.Equal("ds-cover", resource.Id)
	assert.Equal("dataset", resource.Kind)
	assert.Equal("Forest Cover", resource.Name)
	assert.Equal(2, resource.Layers)

	status = get(t, facade.URL+"/api/v1/datasets/nonesuch", nil)
	assert.Equal(http.StatusNotFound, status)
}

func TestGetLayerEndpoint(t *testing.T) {
	assert := assert.New(t)
	layers := []catalog.RawRecord{
		rwtest.LayerRecord("ly-intact", "Intact Forest Landscapes", "", "ds-cover"),
	}
	mock, facade := newFacadeFixture(t, nil, layers)
	defer mock.Close()
	defer facade.Close()

	var resource ResourceResponse
	status := get(t, fmt.Sprintf("%s/api/v1/layers/%s", facade.URL, "ly-intact"), &resource)
	assert.Equal(http.StatusOK, status)
	assert.Equal("ly-intact", resource.Id)
	assert.Equal("layer", resource.Kind)

	status = get(t, facade.URL+"/api/v1/layers/nonesuch", nil)
	assert.Equal(http.StatusNotFound, status)
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
