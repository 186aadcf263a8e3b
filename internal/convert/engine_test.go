package convert

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csv2ldj/internal/model"
	"github.com/roach88/csv2ldj/internal/schema"
)

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func idTagsSchema() *model.Schema {
	return model.NewSchema(
		model.Field{Name: "id", Required: true},
		model.Field{Name: "tags", Multivalued: true},
	)
}

func convertString(t *testing.T, s *model.Schema, input string, opts Options) (string, *Result, error) {
	t.Helper()
	var out bytes.Buffer
	res, err := Convert(strings.NewReader(input), s, &out, opts)
	return out.String(), res, err
}

func TestConvertRequiredFieldScenario(t *testing.T) {
	input := "id,tags\n\"1\",\"a/b\"\n\"\", \"\"\n\"\", \"x\"\n"

	out, res, err := convertString(t, idTagsSchema(), input, quietOptions())

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindMissingRequiredFields))
	assert.Equal(t, []string{"id"}, model.FieldsOf(err))
	assert.Contains(t, err.Error(), "row 3")

	assert.Equal(t, "{\"id\":\"1\",\"tags\":[\"a\",\"b\"]}\n{}\n", out)
	require.NotNil(t, res)
	assert.Equal(t, int64(3), res.RowsRead)
	assert.Equal(t, int64(2), res.RowsWritten)
}

func TestConvertLineCountMatchesRows(t *testing.T) {
	input := "id,tags\n1,a\n2,\n3,b/c\n,\n"

	out, res, err := convertString(t, idTagsSchema(), input, quietOptions())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, int64(4), res.RowsRead)
	assert.Equal(t, int64(4), res.RowsWritten)
	assert.Equal(t, []string{"id", "tags"}, res.Fields)

	for _, line := range lines {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj), line)
	}
}

func TestConvertOmitsBlankCells(t *testing.T) {
	s := model.NewSchema(model.Field{Name: "a"}, model.Field{Name: "b"}, model.Field{Name: "c", Multivalued: true})

	out, _, err := convertString(t, s, "a,b,c\n  ,x,\t\n", quietOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":\"x\"}\n", out)
}

func TestConvertMultivalueSplitting(t *testing.T) {
	s := model.NewSchema(model.Field{Name: "tags", Multivalued: true})

	out, _, err := convertString(t, s, "tags\na/b()c\n/()/\n", quietOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\"tags\":[\"a\",\"b\",\"c\"]}\n{}\n", out)
}

func TestConvertSingleValueViolation(t *testing.T) {
	tests := []struct {
		name string
		cell string
	}{
		{"two segments", "a/b"},
		{"trailing separator", "a/"},
		{"parenthesis", "x(y)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.NewSchema(model.Field{Name: "id"}, model.Field{Name: "title"})

			out, res, err := convertString(t, s, "id,title\n1,ok\n2,"+tt.cell+"\n", quietOptions())
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindUnexpectedMultiValue))
			assert.Equal(t, []string{"title"}, model.FieldsOf(err))
			assert.Equal(t, "{\"id\":\"1\",\"title\":\"ok\"}\n", out)
			assert.Equal(t, int64(1), res.RowsWritten)
		})
	}
}

func TestConvertHeaderFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  model.Kind
	}{
		{"no input", "", model.KindEmptyHeader},
		{"only empty lines", "\n\n", model.KindEmptyHeader},
		{"blank header", " , \n1,2\n", model.KindInvalidHeaders},
		{"duplicate", "id,id\n1,2\n", model.KindDuplicateHeader},
		{"unknown", "id,unknown_field\n1,2\n", model.KindInvalidHeaders},
		{"malformed", "id,\"tags\n", model.KindMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, err := convertString(t, idTagsSchema(), tt.input, quietOptions())
			require.Error(t, err)
			assert.Equal(t, tt.kind, model.KindOf(err))
			assert.Nil(t, res)
			assert.Empty(t, out)
		})
	}
}

func TestConvertMalformedRow(t *testing.T) {
	out, res, err := convertString(t, idTagsSchema(), "id,tags\n1,a\n2,\"b\" c\n", quietOptions())

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindMalformedInput))
	assert.Equal(t, "{\"id\":\"1\",\"tags\":[\"a\"]}\n", out)
	assert.Equal(t, int64(1), res.RowsWritten)
}

func TestConvertHeaderOrderDrivesKeyOrder(t *testing.T) {
	out, _, err := convertString(t, idTagsSchema(), "tags,id\nx,1\n", quietOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\"tags\":[\"x\"],\"id\":\"1\"}\n", out)
}

func TestConvertShortAndLongRows(t *testing.T) {
	out, _, err := convertString(t, idTagsSchema(), "id,tags\n1\n2,a,extra\n", quietOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"1\"}\n{\"id\":\"2\",\"tags\":[\"a\"]}\n", out)
}

func TestConvertBlankHeaderColumnsAreRejected(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"inner blank", "id,,tags\n1,lost,a\n"},
		{"trailing comma", "id,tags,\n1,a,\n"},
		{"repeated blanks", "id,,tags,\n1,lost,a,lost\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, err := convertString(t, idTagsSchema(), tt.input, quietOptions())
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindInvalidHeaders))
			assert.Equal(t, []string{""}, model.FieldsOf(err))
			assert.Nil(t, res)
			assert.Empty(t, out)
		})
	}

	opts := quietOptions()
	opts.StrictHeader = true
	_, _, err := convertString(t, idTagsSchema(), "id,,tags,\n1,lost,a,lost\n", opts)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindDuplicateHeader))
}

func TestConvertSeparatorOnlyCellSatisfiesRequired(t *testing.T) {
	s := model.NewSchema(
		model.Field{Name: "id"},
		model.Field{Name: "tags", Multivalued: true, Required: true},
	)

	out, _, err := convertString(t, s, "id,tags\n1,/\n", quietOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"1\"}\n", out)
}

func TestConvertRequiredMissingFromHeader(t *testing.T) {
	s := model.NewSchema(
		model.Field{Name: "id", Required: true},
		model.Field{Name: "name", Required: true},
		model.Field{Name: "tags", Multivalued: true},
	)

	_, _, err := convertString(t, s, "tags\na\n", quietOptions())
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindMissingRequiredFields))
	assert.Equal(t, []string{"id", "name"}, model.FieldsOf(err))
}

func TestConvertDelimiterModes(t *testing.T) {
	s := model.NewSchema(model.Field{Name: "tags", Multivalued: true})

	opts := quietOptions()
	opts.Delimiter = "; "
	opts.Mode = ModeLiteral
	out, _, err := convertString(t, s, "tags\n\"a; b;c\"\n", opts)
	require.NoError(t, err)
	assert.Equal(t, "{\"tags\":[\"a\",\"b;c\"]}\n", out)

	opts.Delimiter = `\s*;\s*`
	opts.Mode = ModeRegexp
	out, _, err = convertString(t, s, "tags\n\"a ; b;c\"\n", opts)
	require.NoError(t, err)
	assert.Equal(t, "{\"tags\":[\"a\",\"b\",\"c\"]}\n", out)
}

func TestConvertNFC(t *testing.T) {
	s := model.NewSchema(model.Field{Name: "name"})

	opts := quietOptions()
	opts.NFC = true
	out, _, err := convertString(t, s, "name\ne\u0301\n", opts)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"\u00e9\"}\n", out)
}

func TestConvertLogsSummary(t *testing.T) {
	var logs bytes.Buffer
	opts := Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	_, _, err := convertString(t, idTagsSchema(), "id,tags\n1,a\n", opts)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "read records")
	assert.Contains(t, logs.String(), "wrote records")
	assert.Contains(t, logs.String(), "fields=\"[id tags]\"")
}

func TestNewRejectsEmptySchema(t *testing.T) {
	_, err := New(model.NewSchema(), quietOptions())
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindEmptySchema))
	assert.Equal(t, "EMPTY_SCHEMA: the schema declares no fields", err.Error())
}

func TestNewRejectsBadDelimiter(t *testing.T) {
	opts := quietOptions()
	opts.Mode = ModeRegexp
	opts.Delimiter = "["
	_, err := New(idTagsSchema(), opts)
	require.Error(t, err)
}

func TestCheckHeader(t *testing.T) {
	c, err := New(idTagsSchema(), quietOptions())
	require.NoError(t, err)

	hm, err := c.CheckHeader(strings.NewReader("tags,id\n1,\"unterminated\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"tags", "id"}, hm.Names())

	_, err = c.CheckHeader(strings.NewReader("id,bogus\n"))
	assert.True(t, model.IsKind(err, model.KindInvalidHeaders))
}

func TestConvertGolden(t *testing.T) {
	s, err := schema.Load(filepath.Join("testdata", "input", "books.schema.csv"))
	require.NoError(t, err)

	in, err := os.Open(filepath.Join("testdata", "input", "books.csv"))
	require.NoError(t, err)
	defer in.Close()

	var out bytes.Buffer
	res, err := Convert(in, s, &out, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.RowsWritten)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "books", out.Bytes())
}
