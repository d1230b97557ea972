package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"media-catalog/internal/catalog"
)

func TestContentTypeOrdinalsAreStable(t *testing.T) {
	assert.Equal(t, catalog.ContentType(0), catalog.ContentTypeNone)
	assert.Equal(t, catalog.ContentType(1), catalog.ContentTypeSound)
	assert.Equal(t, catalog.ContentType(2), catalog.ContentTypeVideo)
}

func TestContentTypeJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    catalog.ContentType
		wantErr bool
	}{
		{input: `0`, want: catalog.ContentTypeNone},
		{input: `1`, want: catalog.ContentTypeSound},
		{input: `2`, want: catalog.ContentTypeVideo},
		{input: `"Sound"`, want: catalog.ContentTypeSound},
		{input: `"Video"`, want: catalog.ContentTypeVideo},
		{input: `"None"`, want: catalog.ContentTypeNone},
		{input: `3`, wantErr: true},
		{input: `-1`, wantErr: true},
		{input: `1.5`, wantErr: true},
		{input: `"sound"`, wantErr: true},
		{input: `"Image"`, wantErr: true},
		{input: `null`, wantErr: true},
		{input: `true`, wantErr: true},
		{input: `4294967297`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got catalog.ContentType
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentTypeEncodesAsOrdinal(t *testing.T) {
	data, err := json.Marshal(catalog.ContentEntry{
		DisplayName: "Song",
		ContentType: catalog.ContentTypeVideo,
		ContentID:   "c1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Song","content_type":2,"content_id":"c1"}`, string(data))

	_, err = json.Marshal(catalog.ContentType(9))
	assert.Error(t, err)
}

func TestContentTypeBSON(t *testing.T) {
	tests := []struct {
		name    string
		doc     bson.D
		want    catalog.ContentType
		wantErr bool
	}{
		{name: "int32", doc: bson.D{{Key: "content_type", Value: int32(1)}}, want: catalog.ContentTypeSound},
		{name: "int64", doc: bson.D{{Key: "content_type", Value: int64(2)}}, want: catalog.ContentTypeVideo},
		{name: "whole double", doc: bson.D{{Key: "content_type", Value: 0.0}}, want: catalog.ContentTypeNone},
		{name: "variant name", doc: bson.D{{Key: "content_type", Value: "Video"}}, want: catalog.ContentTypeVideo},
		{name: "out of range", doc: bson.D{{Key: "content_type", Value: int32(7)}}, wantErr: true},
		{name: "fractional", doc: bson.D{{Key: "content_type", Value: 1.25}}, wantErr: true},
		{name: "unknown name", doc: bson.D{{Key: "content_type", Value: "Picture"}}, wantErr: true},
		{name: "bool", doc: bson.D{{Key: "content_type", Value: true}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			require.NoError(t, err)

			var rec catalog.ContentRecord
			err = bson.Unmarshal(raw, &rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ContentType)
		})
	}
}

func TestContentRecordBSONRoundTrip(t *testing.T) {
	in := catalog.ContentRecord{ContentID: "c1", ContentType: catalog.ContentTypeSound, Hash: "abcd1234"}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Equal(t, int32(1), stored["content_type"], "content type must be stored as an int32 ordinal")

	var out catalog.ContentRecord
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestPlaylistLightHasNoContentField(t *testing.T) {
	p := catalog.Playlist{
		Name:       "Morning",
		Identifier: "p1",
		Content:    make([]catalog.ContentEntry, 500),
	}

	data, err := json.Marshal(p.Light())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "content")
	assert.Equal(t, map[string]interface{}{"name": "Morning", "identifier": "p1"}, raw)
}

func TestContentTypeString(t *testing.T) {
	assert.Equal(t, "Sound", catalog.ContentTypeSound.String())
	assert.Equal(t, "ContentType(5)", catalog.ContentType(5).String())
	assert.True(t, catalog.ContentTypeVideo.Valid())
	assert.False(t, catalog.ContentType(-1).Valid())
}
