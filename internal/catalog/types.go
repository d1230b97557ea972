package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ContentType discriminates the kind of asset a content entry refers to.
// The ordinal values are persisted and sent over the wire, so they must
// never be renumbered.
type ContentType int32

const (
	// ContentTypeNone marks an entry without an associated media kind.
	ContentTypeNone ContentType = 0
	// ContentTypeSound marks an audio asset.
	ContentTypeSound ContentType = 1
	// ContentTypeVideo marks a video asset.
	ContentTypeVideo ContentType = 2
)

var contentTypeNames = map[ContentType]string{
	ContentTypeNone:  "None",
	ContentTypeSound: "Sound",
	ContentTypeVideo: "Video",
}

// ParseContentType converts an ordinal into a ContentType, rejecting
// anything outside the closed set.
func ParseContentType(ordinal int64) (ContentType, error) {
	ct := ContentType(ordinal)
	if int64(ct) != ordinal || !ct.Valid() {
		return ContentTypeNone, fmt.Errorf("unknown content type ordinal %d", ordinal)
	}
	return ct, nil
}

// parseContentTypeName accepts the variant names used by older ingest runs.
func parseContentTypeName(name string) (ContentType, error) {
	for ct, n := range contentTypeNames {
		if n == name {
			return ct, nil
		}
	}
	return ContentTypeNone, fmt.Errorf("unknown content type %q", name)
}

// Valid reports whether c is one of the known content types.
func (c ContentType) Valid() bool {
	_, ok := contentTypeNames[c]
	return ok
}

func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return "ContentType(" + strconv.Itoa(int(c)) + ")"
}

// MarshalJSON encodes the content type as its ordinal.
func (c ContentType) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot encode content type %d", int32(c))
	}
	return []byte(strconv.Itoa(int(c))), nil
}

// UnmarshalJSON accepts an ordinal or a variant name and fails on
// anything it does not recognise.
func (c *ContentType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return fmt.Errorf("content type must not be null")
	}

	var ordinal int64
	if err := json.Unmarshal(data, &ordinal); err == nil {
		ct, err := ParseContentType(ordinal)
		if err != nil {
			return err
		}
		*c = ct
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("content type must be an integer or a name: %s", string(data))
	}
	ct, err := parseContentTypeName(name)
	if err != nil {
		return err
	}
	*c = ct
	return nil
}

// MarshalBSONValue stores the content type as an int32 ordinal.
func (c ContentType) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !c.Valid() {
		return 0, nil, fmt.Errorf("cannot encode content type %d", int32(c))
	}
	return bson.MarshalValue(int32(c))
}

// UnmarshalBSONValue decodes int32, int64, whole doubles and variant names.
func (c *ContentType) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	var (
		ct  ContentType
		err error
	)
	switch t {
	case bsontype.Int32:
		ct, err = ParseContentType(int64(raw.Int32()))
	case bsontype.Int64:
		ct, err = ParseContentType(raw.Int64())
	case bsontype.Double:
		f := raw.Double()
		if f != float64(int64(f)) {
			return fmt.Errorf("content type ordinal %v is not an integer", f)
		}
		ct, err = ParseContentType(int64(f))
	case bsontype.String:
		ct, err = parseContentTypeName(raw.StringValue())
	default:
		return fmt.Errorf("cannot decode content type from BSON %s", t)
	}
	if err != nil {
		return err
	}
	*c = ct
	return nil
}

// ContentEntry is one item inside a playlist. ContentID is the stable
// external identifier, not the storage hash.
type ContentEntry struct {
	DisplayName string      `json:"name" bson:"name"`
	ContentType ContentType `json:"content_type" bson:"content_type"`
	ContentID   string      `json:"content_id" bson:"content_id"`
}

// ContentRecord is a row of the content catalog.
type ContentRecord struct {
	ContentID   string      `json:"content_id" bson:"content_id"`
	ContentType ContentType `json:"content_type" bson:"content_type"`
	Hash        string      `json:"hash" bson:"hash"`
}

// Playlist is a named, ordered collection of content references.
// Content is nil when the document has no content list.
type Playlist struct {
	Name       string         `json:"name" bson:"name"`
	Identifier string         `json:"identifier" bson:"identifier"`
	Content    []ContentEntry `json:"content,omitempty" bson:"content,omitempty"`
}

// PlaylistLight is the discovery projection of a playlist. It has no
// content field at all.
type PlaylistLight struct {
	Name       string `json:"name" bson:"name"`
	Identifier string `json:"identifier" bson:"identifier"`
}

// Light projects p down to its discovery fields.
func (p Playlist) Light() PlaylistLight {
	return PlaylistLight{Name: p.Name, Identifier: p.Identifier}
}
