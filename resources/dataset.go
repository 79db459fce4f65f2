package resources

import (
	"fmt"

	"github.com/vizzuality/rwgo/catalog"
)

// nested sub-objects requested alongside a dataset
var datasetIncludes = []string{"layer", "vocabulary", "metadata"}

// providers whose datasets answer queries through the catalog's tabular
// pass-through instead of CARTO SQL
var tabularProviders = map[string]bool{
	"csv":  true,
	"json": true,
}

// Dataset is a catalog dataset record. It exclusively owns its parsed
// Layer, Metadata, and Vocabulary children, which are extracted from the
// attribute map at construction time. A dataset with a csv or json provider
// is tabular (the catalog's "Table" variant is a capability flag here, not
// a separate type).
type Dataset struct {
	Record
	layers  []*Layer
	meta    *Metadata
	vocab   *Vocabulary
	tabular bool
}

// retrieves a dataset from the catalog by ID
func NewDataset(client *catalog.Client, id string) (*Dataset, error) {
	raw, err := client.FetchById(catalog.KindDataset, id, datasetIncludes)
	if err != nil {
		return nil, err
	}
	return DatasetFromRecord(client, raw)
}

// builds a dataset from a raw catalog record, extracting nested layer,
// metadata, and vocabulary sub-objects into typed children
func DatasetFromRecord(client *catalog.Client, raw catalog.RawRecord) (*Dataset, error) {
	attrs := make(Attributes, len(raw.Attributes))
	for k, v := range raw.Attributes {
		attrs[k] = v
	}
	d := &Dataset{
		Record: Record{
			id:         raw.Id,
			server:     serverOf(client),
			attributes: attrs,
			client:     client,
		},
	}

	if layers, ok := attrs["layer"].([]any); ok {
		for _, item := range layers {
			if obj, ok := item.(map[string]any); ok {
				d.layers = append(d.layers, layerFromInclude(client, obj))
			}
		}
	}
	delete(attrs, "layer")

	if mds, ok := attrs["metadata"].([]any); ok && len(mds) > 0 {
		obj, _ := mds[0].(map[string]any)
		md, err := NewMetadata(obj)
		if err != nil {
			return nil, err
		}
		d.meta = md
	}
	delete(attrs, "metadata")

	if vocabs, ok := attrs["vocabulary"].([]any); ok && len(vocabs) > 0 {
		obj, _ := vocabs[0].(map[string]any)
		vocab, err := NewVocabulary(obj)
		if err != nil {
			return nil, err
		}
		d.vocab = vocab
	}
	delete(attrs, "vocabulary")

	d.tabular = tabularProviders[attrs.GetString("provider")]
	return d, nil
}

// the layers attached to this dataset (nil if it has none)
func (d *Dataset) Layers() []*Layer { return d.layers }

// the dataset's metadata record, or nil if it has none
func (d *Dataset) Metadata() *Metadata { return d.meta }

// the dataset's vocabulary record, or nil if it has none
func (d *Dataset) Vocabulary() *Vocabulary { return d.vocab }

// reports whether the dataset answers queries through the tabular
// pass-through (csv/json providers)
func (d *Dataset) Tabular() bool { return d.tabular }

func (d *Dataset) Kind() Kind {
	if d.tabular {
		return KindTable
	}
	return KindDataset
}

func (d *Dataset) String() string {
	if d.tabular {
		return fmt.Sprintf("Table %s", d.id)
	}
	return fmt.Sprintf("Dataset %s", d.id)
}

// refreshes the dataset's state from the catalog, returning a fully
// consistent view
func (d *Dataset) Refresh() (*Dataset, error) {
	return NewDataset(d.client, d.id)
}

func serverOf(client *catalog.Client) string {
	if client != nil {
		return client.BaseURL
	}
	return ""
}
