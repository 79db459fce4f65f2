package resources

import (
	"fmt"

	"github.com/vizzuality/rwgo/catalog"
)

// nested sub-objects requested alongside a layer
var layerIncludes = []string{"vocabulary", "metadata"}

// Layer is a catalog layer record. A layer belongs to exactly one dataset
// by ID reference; the relation is a lookup, not ownership, so a layer can
// be fetched and used standalone.
type Layer struct {
	Record
}

// retrieves a layer from the catalog by ID
func NewLayer(client *catalog.Client, id string) (*Layer, error) {
	raw, err := client.FetchById(catalog.KindLayer, id, layerIncludes)
	if err != nil {
		return nil, err
	}
	return LayerFromRecord(client, raw), nil
}

// builds a layer from a raw catalog record
func LayerFromRecord(client *catalog.Client, raw catalog.RawRecord) *Layer {
	attrs := make(Attributes, len(raw.Attributes))
	for k, v := range raw.Attributes {
		attrs[k] = v
	}
	return &Layer{
		Record: Record{
			id:         raw.Id,
			server:     serverOf(client),
			attributes: attrs,
			client:     client,
		},
	}
}

// builds a layer from an included sub-object ({id, type, attributes})
func layerFromInclude(client *catalog.Client, obj map[string]any) *Layer {
	id, _ := obj["id"].(string)
	attrs, _ := obj["attributes"].(map[string]any)
	return LayerFromRecord(client, catalog.RawRecord{Id: id, Attributes: attrs})
}

// the ID of the dataset this layer belongs to
func (l *Layer) DatasetId() string {
	return l.attributes.GetString("dataset")
}

func (l *Layer) Kind() Kind { return KindLayer }

func (l *Layer) String() string {
	return fmt.Sprintf("Layer %s", l.id)
}
