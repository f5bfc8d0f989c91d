// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"
	"reflect"

	"github.com/ugorji/go/codec"
)

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		// We could also consider http.DetectContentType()
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	var h codec.Handle
	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		h = NewJSONHandle()
	case CBORMediaType:
		h = NewCBORHandle()
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	decoder := codec.NewDecoder(r, h)
	return decoder.Decode(out)
}

// Encode writes a restdata object as JSON.
func Encode(w io.Writer, in interface{}) error {
	encoder := codec.NewEncoder(w, NewJSONHandle())
	return encoder.Encode(in)
}

// EncodeAs writes a restdata object in a specific representation,
// which must be one of the types Decode understands.
func EncodeAs(w io.Writer, mediaType string, in interface{}) error {
	var h codec.Handle
	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		h = NewJSONHandle()
	case CBORMediaType:
		h = NewCBORHandle()
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}
	encoder := codec.NewEncoder(w, h)
	return encoder.Encode(in)
}

var mapStringType = reflect.TypeOf(map[string]interface{}(nil))

// NewJSONHandle returns the codec handle used for all JSON on the
// wire.  Decoded objects become map[string]interface{} rather than
// the codec's default map[interface{}]interface{}.
func NewJSONHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = mapStringType
	return h
}

// NewCBORHandle returns the codec handle used for CBOR on the wire.
// Struct fields are named by their "json" tags, as in JSON.
func NewCBORHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.MapType = mapStringType
	return h
}
