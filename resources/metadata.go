package resources

import (
	"fmt"
)

// Metadata is a metadata record attached to a dataset or layer.
type Metadata struct {
	id         string
	attributes Attributes
}

// builds a metadata record from an included sub-object ({id, type,
// attributes}); the type tag must read "metadata"
func NewMetadata(obj map[string]any) (*Metadata, error) {
	tag, _ := obj["type"].(string)
	if tag != "metadata" {
		return nil, &ValidationError{Expected: "metadata", Got: tag}
	}
	md := &Metadata{}
	md.id, _ = obj["id"].(string)
	if attrs, ok := obj["attributes"].(map[string]any); ok {
		md.attributes = Attributes(attrs)
	}
	return md, nil
}

func (md *Metadata) Id() string             { return md.id }
func (md *Metadata) Kind() Kind             { return KindMetadata }
func (md *Metadata) Attributes() Attributes { return md.attributes }

func (md *Metadata) String() string {
	return fmt.Sprintf("Metadata %s", md.id)
}
