package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func metadataGen() *rapid.Generator[Metadata] {
	return rapid.Custom(func(t *rapid.T) Metadata {
		raw := rapid.MapOf(rapid.StringN(1, 6, -1), rapid.String()).Draw(t, "entries")
		m := make(Metadata, len(raw))
		for k, v := range raw {
			m[k] = v
		}
		return m
	})
}

func TestMetadata_Merge(t *testing.T) {
	base := Metadata{"a": "1", "b": "2"}
	merged := base.Merge(Metadata{"b": "3", "c": "4"})

	assert.Equal(t, Metadata{"a": "1", "b": "3", "c": "4"}, merged)
	assert.Equal(t, Metadata{"a": "1", "b": "2"}, base, "inputs are not modified")
}

func TestMetadata_Without(t *testing.T) {
	base := Metadata{"a": "1", "b": "2"}

	assert.Equal(t, Metadata{"b": "2"}, base.Without([]string{"a", "missing"}))
	assert.Equal(t, Metadata{}, base.Without([]string{"a", "b"}))
	assert.Len(t, base, 2)
}

func TestMetadata_Patch_RemoveThenAdd(t *testing.T) {
	base := Metadata{"a": "1", "b": "2"}
	patched := base.Patch(Metadata{"b": "3"}, []string{"a", "b"})

	assert.Equal(t, Metadata{"b": "3"}, patched)
}

func TestMetadata_Clone_Deep(t *testing.T) {
	base := Metadata{"nested": map[string]any{"x": []any{"y"}}}
	c := base.Clone()
	c["nested"].(map[string]any)["x"].([]any)[0] = "z"

	assert.Equal(t, "y", base["nested"].(map[string]any)["x"].([]any)[0])
}

func TestNormalizeMetadata(t *testing.T) {
	m, err := NormalizeMetadata(map[string]any{
		"int":    3,
		"float":  0.5,
		"raw":    json.RawMessage(`{"k":[1,true,null]}`),
		"string": "s",
	})
	require.NoError(t, err)

	assert.Equal(t, json.Number("3"), m["int"])
	assert.Equal(t, json.Number("0.5"), m["float"])
	assert.Equal(t, "s", m["string"])
	assert.Equal(t, map[string]any{"k": []any{json.Number("1"), true, nil}}, m["raw"])
}

func TestNormalizeMetadata_Invalid(t *testing.T) {
	_, err := NormalizeMetadata(map[string]any{"": "x"})
	assert.ErrorIs(t, err, ErrInvalidMetadata)

	_, err = NormalizeMetadata(map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestNormalizeMetadata_Nil(t *testing.T) {
	m, err := NormalizeMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestDecodeMetadata(t *testing.T) {
	m, err := DecodeMetadata([]byte(`{"lr":0.001}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("0.001"), m["lr"])

	m, err = DecodeMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, m)

	m, err = DecodeMetadata([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, Metadata{}, m)
}

func TestMetadata_MergeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := metadataGen().Draw(t, "base")
		patch := metadataGen().Draw(t, "patch")

		once := base.Merge(patch)
		assert.Equal(t, once, once.Merge(patch), "merge is idempotent")

		for k, v := range patch {
			assert.Equal(t, v, once[k])
		}
		for k, v := range base {
			if _, ok := patch[k]; !ok {
				assert.Equal(t, v, once[k])
			}
		}
	})
}

func TestMetadata_WithoutProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := metadataGen().Draw(t, "base")
		keys := rapid.SliceOf(rapid.StringN(1, 6, -1)).Draw(t, "keys")

		once := base.Without(keys)
		assert.Equal(t, once, once.Without(keys), "remove is idempotent")
		for _, k := range keys {
			assert.NotContains(t, once, k)
		}
		assert.LessOrEqual(t, len(once), len(base))
	})
}

func TestMetadata_PatchProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := metadataGen().Draw(t, "base")
		add := metadataGen().Draw(t, "add")
		remove := rapid.SliceOf(rapid.StringN(1, 6, -1)).Draw(t, "remove")

		patched := base.Patch(add, remove)
		assert.Equal(t, patched, patched.Patch(add, remove), "patch is idempotent")
		for k := range add {
			assert.Contains(t, patched, k, "add wins over remove")
		}
	})
}
