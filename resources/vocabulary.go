package resources

import (
	"fmt"
)

// Vocabulary is a vocabulary record attached to a dataset. Its identity
// comes from the nested resource.id field, not its own top-level id.
type Vocabulary struct {
	id         string
	attributes Attributes
}

// builds a vocabulary record from an included sub-object; the type tag
// must read "vocabulary"
func NewVocabulary(obj map[string]any) (*Vocabulary, error) {
	tag, _ := obj["type"].(string)
	if tag != "vocabulary" {
		return nil, &ValidationError{Expected: "vocabulary", Got: tag}
	}
	vocab := &Vocabulary{}
	if attrs, ok := obj["attributes"].(map[string]any); ok {
		vocab.attributes = Attributes(attrs)
		if res, ok := attrs["resource"].(map[string]any); ok {
			vocab.id, _ = res["id"].(string)
		}
	}
	return vocab, nil
}

func (v *Vocabulary) Id() string             { return v.id }
func (v *Vocabulary) Kind() Kind             { return KindVocabulary }
func (v *Vocabulary) Attributes() Attributes { return v.attributes }

func (v *Vocabulary) String() string {
	return fmt.Sprintf("Vocabulary %s", v.id)
}
