package resources

// These tests verify typed resource construction from catalog records,
// child extraction, and the notebook HTML rendering.
import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vizzuality/rwgo/catalog"
	"github.com/vizzuality/rwgo/rwtest"
)

// a dataset fixture carrying layers, metadata, and a vocabulary
func richDatasetRecord() catalog.RawRecord {
	record := rwtest.DatasetRecord("ds-trees", "Tree Cover",
		"Global tree cover extent", "cartodb", 2)
	record.Attributes["metadata"] = []any{
		map[string]any{
			"id":   "md-1",
			"type": "metadata",
			"attributes": map[string]any{
				"language": "en",
			},
		},
	}
	record.Attributes["vocabulary"] = []any{
		map[string]any{
			"type": "vocabulary",
			"attributes": map[string]any{
				"name": "categoryTab",
				"tags": []any{"forestCover"},
				"resource": map[string]any{
					"id":   "ds-trees",
					"type": "dataset",
				},
			},
		},
	}
	return record
}

func TestNewDatasetExtractsChildren(t *testing.T) {
	assert := assert.New(t)
	server := rwtest.NewCatalogServer([]catalog.RawRecord{richDatasetRecord()}, nil)
	defer server.Close()

	dataset, err := NewDataset(server.Client(), "ds-trees")
	assert.Nil(err)
	assert.Equal("ds-trees", dataset.Id())
	assert.Equal(KindDataset, dataset.Kind())
	assert.Equal("Dataset ds-trees", dataset.String())

	assert.Equal(2, len(dataset.Layers()))
	assert.NotNil(dataset.Metadata())
	assert.Equal("md-1", dataset.Metadata().Id())
	assert.NotNil(dataset.Vocabulary())
	assert.Equal("ds-trees", dataset.Vocabulary().Id())

	// the nested sub-objects live on the children now, not the attribute map
	attrs := dataset.Attributes()
	_, hasLayers := attrs["layer"]
	_, hasMetadata := attrs["metadata"]
	_, hasVocabulary := attrs["vocabulary"]
	assert.False(hasLayers)
	assert.False(hasMetadata)
	assert.False(hasVocabulary)
}

func TestEmptyChildListsProduceNilChildren(t *testing.T) {
	assert := assert.New(t)
	record := rwtest.DatasetRecord("ds-bare", "Bare Dataset", "", "cartodb", 0)

	dataset, err := DatasetFromRecord(nil, record)
	assert.Nil(err)
	assert.Nil(dataset.Layers())
	assert.Nil(dataset.Metadata())
	assert.Nil(dataset.Vocabulary())
}

func TestTabularProvidersSurfaceAsTables(t *testing.T) {
	assert := assert.New(t)
	for _, provider := range []string{"csv", "json"} {
		record := rwtest.DatasetRecord("ds-tab", "Tabular Dataset", "", provider, 0)
		dataset, err := DatasetFromRecord(nil, record)
		assert.Nil(err)
		assert.True(dataset.Tabular())
		assert.Equal(KindTable, dataset.Kind())
		assert.Equal("Table ds-tab", dataset.String())
	}
}

func TestNewDatasetReportsNotFound(t *testing.T) {
	assert := assert.New(t)
	server := rwtest.NewCatalogServer(nil, nil)
	defer server.Close()

	_, err := NewDataset(server.Client(), "nonesuch")
	var notFound *catalog.NotFoundError
	assert.ErrorAs(err, &notFound)
}

func TestNewMetadataRejectsWrongTag(t *testing.T) {
	assert := assert.New(t)
	_, err := NewMetadata(map[string]any{"type": "layer"})
	var validation *ValidationError
	assert.ErrorAs(err, &validation)
	assert.Equal("metadata", validation.Expected)
	assert.Equal("layer", validation.Got)
}

func TestNewVocabularyRejectsWrongTag(t *testing.T) {
	assert := assert.New(t)
	_, err := NewVocabulary(map[string]any{"type": "layer"})
	var validation *ValidationError
	assert.ErrorAs(err, &validation)
}

func TestVocabularyIdentityComesFromResource(t *testing.T) {
	assert := assert.New(t)
	vocab, err := NewVocabulary(map[string]any{
		"type": "vocabulary",
		"attributes": map[string]any{
			"resource": map[string]any{"id": "ds-owner"},
		},
	})
	assert.Nil(err)
	assert.Equal("ds-owner", vocab.Id())
	assert.Equal("Vocabulary ds-owner", vocab.String())
}

func TestLayerBelongsToDatasetById(t *testing.T) {
	assert := assert.New(t)
	record := rwtest.LayerRecord("ly-1", "Tree Cover 2000", "", "ds-trees")
	layer := LayerFromRecord(nil, record)
	assert.Equal("ds-trees", layer.DatasetId())
	assert.Equal(KindLayer, layer.Kind())
	assert.Equal("Layer ly-1", layer.String())
}

func TestHTMLSubstitutesPlaceholders(t *testing.T) {
	assert := assert.New(t)
	dataset, err := DatasetFromRecord(nil, catalog.RawRecord{
		Id:         "ds-empty",
		Type:       "dataset",
		Attributes: map[string]any{},
	})
	assert.Nil(err)

	// rendering a threadbare record must not fault
	box := HTML(dataset)
	assert.True(strings.Contains(box, "(unnamed)"))
	assert.True(strings.Contains(box, "in N/A."))
	assert.True(strings.Contains(box, "Last Modified: n/a"))
	assert.True(strings.Contains(box, "Published: unknown"))
	assert.True(strings.Contains(box, "Data source unknown"))
}

func TestHTMLRendersCartoTableLink(t *testing.T) {
	assert := assert.New(t)
	record := rwtest.DatasetRecord("ds-carto", "Tree Cover", "", "cartodb", 0)
	record.Attributes["connectorUrl"] = "https://wri-rw.carto.com/tables/tree_cover"
	record.Attributes["tableName"] = "tree_cover"
	record.Attributes["published"] = true
	dataset, err := DatasetFromRecord(nil, record)
	assert.Nil(err)

	box := HTML(dataset)
	assert.True(strings.Contains(box, "Carto table:"))
	assert.True(strings.Contains(box, "https://wri-rw.carto.com/tables/tree_cover"))
	assert.True(strings.Contains(box, "<b>Tree Cover</b>"))
	assert.True(strings.Contains(box, "in RW."))
	assert.True(strings.Contains(box, "Published: true"))
}

func TestHTMLLinksLayersToTheLayerEndpoint(t *testing.T) {
	assert := assert.New(t)
	server := rwtest.NewCatalogServer(nil,
		[]catalog.RawRecord{rwtest.LayerRecord("ly-1", "Tree Cover 2000", "", "ds-trees")})
	defer server.Close()

	layer, err := NewLayer(server.Client(), "ly-1")
	assert.Nil(err)
	box := HTML(layer)
	assert.True(strings.Contains(box, server.URL+"/v1/layer/ly-1"))
}

// This runs setup, runs all tests, and does breakdown.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
