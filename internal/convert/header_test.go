package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csv2ldj/internal/model"
)

func TestResolveHeader(t *testing.T) {
	hm, err := ResolveHeader([]string{"id", "tags", "title"}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "tags", "title"}, hm.Names())
	idx, ok := hm.Index("title")
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestResolveHeaderDuplicate(t *testing.T) {
	_, err := ResolveHeader([]string{"id", "id"}, false)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindDuplicateHeader))
	assert.Contains(t, err.Error(), `"id"`)
}

func TestResolveHeaderRepeatedBlankCells(t *testing.T) {
	// All blank cells share the blank name; the last one wins.
	hm, err := ResolveHeader([]string{"id", "", "tags", "  "}, false)
	require.NoError(t, err)
	assert.Equal(t, []model.Column{{Name: "id", Index: 0}, {Name: "", Index: 3}, {Name: "tags", Index: 2}}, hm.Columns())
	idx, ok := hm.Index("")
	require.True(t, ok)
	assert.Equal(t, 3, idx)

	_, err = ResolveHeader([]string{"id", "", "tags", "  "}, true)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindDuplicateHeader))
}

func TestResolveHeaderSingleBlankCellStrict(t *testing.T) {
	hm, err := ResolveHeader([]string{"id", ""}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", ""}, hm.Names())
}

func TestResolveHeaderEmpty(t *testing.T) {
	_, err := ResolveHeader(nil, false)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindEmptyHeader))
}

func TestValidateHeader(t *testing.T) {
	schema := model.NewSchema(
		model.Field{Name: "id", Required: true},
		model.Field{Name: "tags", Multivalued: true},
		model.Field{Name: "unused"},
	)
	hm, err := ResolveHeader([]string{"tags", "id"}, false)
	require.NoError(t, err)

	fields, err := ValidateHeader(hm, schema)
	require.NoError(t, err)

	assert.Len(t, fields, 2)
	assert.True(t, fields["tags"].Multivalued)
	assert.True(t, fields["id"].Required)
	_, ok := fields["unused"]
	assert.False(t, ok)
}

func TestValidateHeaderReportsEveryUnknownName(t *testing.T) {
	schema := model.NewSchema(model.Field{Name: "id"})
	hm, err := ResolveHeader([]string{"id", "zeta", "unknown_field"}, false)
	require.NoError(t, err)

	_, err = ValidateHeader(hm, schema)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindInvalidHeaders))
	assert.Equal(t, []string{"unknown_field", "zeta"}, model.FieldsOf(err))
}

func TestValidateHeaderRejectsBlankNames(t *testing.T) {
	schema := model.NewSchema(model.Field{Name: "id"}, model.Field{Name: "tags"})

	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"trailing comma", []string{"id", "tags", ""}, []string{""}},
		{"only blank cells", []string{"", " "}, []string{""}},
		{"blank and unknown", []string{"id", "", "isbn"}, []string{"", "isbn"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm, err := ResolveHeader(tt.header, false)
			require.NoError(t, err)

			_, err = ValidateHeader(hm, schema)
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindInvalidHeaders))
			assert.Equal(t, tt.want, model.FieldsOf(err))
			assert.Contains(t, err.Error(), `""`)
		})
	}
}
