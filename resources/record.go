package resources

import (
	"github.com/vizzuality/rwgo/catalog"
)

// the kind of a typed catalog resource
type Kind string

const (
	KindDataset    Kind = "dataset"
	KindTable      Kind = "table"
	KindLayer      Kind = "layer"
	KindMetadata   Kind = "metadata"
	KindVocabulary Kind = "vocabulary"
)

// the attribute map of a catalog record (heterogeneous JSON values)
type Attributes map[string]any

// returns the string value for the given key, or "" if the key is absent
// or holds a non-string value
func (a Attributes) GetString(key string) string {
	if v, ok := a[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// returns the string-list value for the given key (JSON arrays decode to
// []any, so each element is converted individually)
func (a Attributes) GetStringList(key string) []string {
	v, ok := a[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	strs := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			strs = append(strs, s)
		}
	}
	return strs
}

// Resource is implemented by every typed catalog record variant that can
// appear in a collection.
type Resource interface {
	// the server-assigned identifier of the resource
	Id() string
	// the resource's kind tag
	Kind() Kind
	// the resource's attribute map
	Attributes() Attributes
	// a short display string ("Dataset <id>" and the like)
	String() string
}

// Record holds the state common to all typed catalog resources. After
// construction its attribute map never contains the nested layer, metadata,
// or vocabulary sub-objects; those are extracted into typed children.
type Record struct {
	id         string
	server     string
	attributes Attributes
	client     *catalog.Client
}

func (r *Record) Id() string             { return r.id }
func (r *Record) Server() string         { return r.server }
func (r *Record) Attributes() Attributes { return r.attributes }

// the catalog client this record was fetched through (nil for records
// constructed purely from attributes)
func (r *Record) Client() *catalog.Client { return r.client }
