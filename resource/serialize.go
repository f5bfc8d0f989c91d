// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

// Intent names which endpoint of a kind a URI should point at.
type Intent string

const (
	// IntentList is the paginated listing of a kind.
	IntentList Intent = "list"

	// IntentDetail is a single item.
	IntentDetail Intent = "detail"

	// IntentSet is an explicit set of items.
	IntentSet Intent = "set"
)

// URIResolver produces URIs for items.  Reverse returns an error if
// there is no route for the kind and intent.
type URIResolver interface {
	Reverse(kind string, intent Intent, ids ...int64) (string, error)
}

// Envelope keys that are always present.
const (
	SelfURIKey      = "self_uri"
	DisplayLabelKey = "display_label"
)

// Envelope is the serialized form of a single item.
type Envelope map[string]interface{}

// SelfURI returns the URI of the serialized item.
func (e Envelope) SelfURI() string {
	s, _ := e[SelfURIKey].(string)
	return s
}

// DisplayLabel returns the label of the serialized item.
func (e Envelope) DisplayLabel() string {
	s, _ := e[DisplayLabelKey].(string)
	return s
}

// Serialize produces the envelope of a single item.  Every declared
// field of kind is emitted.  A reference field is emitted as the
// detail URI of the referenced item; if it is unset or there is no
// route for its target kind, the field is left out.  Failing to
// produce the item's own URI is an error.
func Serialize(item Item, kind Kind, uris URIResolver) (Envelope, error) {
	self, err := uris.Reverse(kind.Name, IntentDetail, item.ID())
	if err != nil {
		return nil, err
	}
	env := Envelope{
		SelfURIKey:      self,
		DisplayLabelKey: item.String(),
	}
	for _, field := range kind.Fields {
		value := item.Value(field.Name)
		if !field.IsReference() {
			env[field.Name] = value
			continue
		}
		ref, ok := value.(int64)
		if !ok || ref == 0 {
			continue
		}
		uri, err := uris.Reverse(field.Target, IntentDetail, ref)
		if err != nil {
			continue
		}
		env[field.Name] = uri
	}
	return env, nil
}

// SerializeAll serializes a list of items in order.
func SerializeAll(items []Item, kind Kind, uris URIResolver) ([]Envelope, error) {
	result := make([]Envelope, len(items))
	for i, item := range items {
		env, err := Serialize(item, kind, uris)
		if err != nil {
			return nil, err
		}
		result[i] = env
	}
	return result, nil
}
