package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tranche/internal/common"
	"github.com/Veraticus/tranche/internal/model"
)

func TestParseTypeFlag(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    model.DocumentType
		wantErr bool
	}{
		{name: "auto", value: "auto", want: ""},
		{name: "empty", value: "", want: ""},
		{name: "new issue", value: "new-issue", want: model.DocumentNewIssue},
		{name: "surveillance", value: "surveillance", want: model.DocumentSurveillance},
		{name: "unknown", value: "prospectus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTypeFlag(tt.value)
			if tt.wantErr {
				var userErr *common.UserError
				assert.ErrorAs(t, err, &userErr)
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "2024", "q1")
	require.NoError(t, os.MkdirAll(nested, 0750))

	files := []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "skip.xlsx"),
		filepath.Join(nested, "c.docx"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0600))
	}

	t.Run("directory is walked", func(t *testing.T) {
		got, err := expandInputs([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "2024", "q1", "c.docx"),
			filepath.Join(dir, "a.pdf"),
			filepath.Join(dir, "b.txt"),
		}, got)
	})

	t.Run("glob and duplicates", func(t *testing.T) {
		got, err := expandInputs([]string{filepath.Join(dir, "*.pdf"), filepath.Join(dir, "a.pdf")})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.pdf")}, got)
	})

	t.Run("unsupported only", func(t *testing.T) {
		got, err := expandInputs([]string{filepath.Join(dir, "skip.xlsx")})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := expandInputs([]string{filepath.Join(dir, "*.md")})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
