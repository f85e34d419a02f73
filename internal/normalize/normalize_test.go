package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/model"
)

func TestNormalizeNilReturnsFallback(t *testing.T) {
	assert.Equal(t, []model.CastMember{}, Cast(nil))
	assert.Equal(t, []model.WatchProvider{}, Providers([]model.WatchProvider(nil)))
}

func TestNormalizeInvalidJSON(t *testing.T) {
	before := ParseFailures()

	assert.Equal(t, []model.Image{}, Images("not json"))
	assert.Equal(t, []model.Image{}, Images(`[{"path":`))

	assert.Equal(t, before+2, ParseFailures())
}

func TestNormalizeNonArrayJSON(t *testing.T) {
	before := ParseFailures()

	assert.Equal(t, []model.Season{}, Seasons(`{"seasonNumber":1}`))
	assert.Equal(t, []model.Season{}, Seasons("null"))
	assert.Equal(t, []model.Season{}, Seasons(""))
	assert.Equal(t, []model.Season{}, Seasons(42))

	// 合法但非数组的 JSON 不算解析失败
	assert.Equal(t, before, ParseFailures())
}

func TestNormalizeGenericArrayString(t *testing.T) {
	got := Normalize(`[{"a":1}]`, []map[string]any{})
	assert.Equal(t, []map[string]any{{"a": float64(1)}}, got)
}

func TestNormalizeTypedSliceReturnedAsIs(t *testing.T) {
	in := []model.EmbedVideo{{URL: "https://youtu.be/x", Title: "Trailer"}}
	assert.Equal(t, in, EmbedVideos(in))
}

func TestNormalizeBytesAndRawMessage(t *testing.T) {
	data := []byte(`[{"id":"8","name":"Netflix","logoPath":"/n.png","url":"https://netflix.com"}]`)

	fromBytes := Providers(data)
	fromRaw := Providers(json.RawMessage(data))

	require.Len(t, fromBytes, 1)
	assert.Equal(t, "Netflix", fromBytes[0].Name)
	assert.Equal(t, fromBytes, fromRaw)
}

func TestNormalizeDecodedJSONArray(t *testing.T) {
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`[{"path":"/p.jpg","type":"poster"}]`), &decoded))

	got := Images(decoded)
	assert.Equal(t, []model.Image{{Path: "/p.jpg", Type: model.ImagePoster}}, got)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []any{
		nil,
		"not json",
		`[{"id":"1","name":"Cillian Murphy","character":"Cobb"}]`,
		[]byte(`[]`),
		`{"x":1}`,
		[]any{map[string]any{"id": "2", "name": "Elliot Page"}},
	}
	for _, in := range inputs {
		once := Cast(in)
		twice := Cast(once)
		assert.Equal(t, once, twice, "input %#v", in)
		assert.NotNil(t, once)
	}
}

func TestDecodeReportsParseErrors(t *testing.T) {
	before := ParseFailures()

	_, err := Decode[model.Image](`[{"path":`)
	require.Error(t, err)
	assert.True(t, apperror.IsParse(err))

	_, err = Decode[model.Image]("not json")
	assert.True(t, apperror.IsParse(err))

	// 严格模式不计入被吞掉的错误
	assert.Equal(t, before, ParseFailures())
}

func TestDecodeEmptyValues(t *testing.T) {
	for _, in := range []any{nil, "", "null", `{"x":1}`, 42} {
		out, err := Decode[model.CastMember](in)
		assert.NoError(t, err, "input %#v", in)
		assert.Nil(t, out, "input %#v", in)
	}

	out, err := Decode[model.CastMember](`[{"id":"1","name":"Cillian Murphy"}]`)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Cillian Murphy", out[0].Name)
}
