package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "reports", "corrections-all-2026-05-01.pdf")

	got, err := WriteMarkdown([]byte("# Corrections\n\n| Block | Issue |\n|---|---|\n| 001 | Glare |\n"), pdfPath)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestWriteMarkdown_RequiresPDFExtension(t *testing.T) {
	_, err := WriteMarkdown([]byte("# x"), filepath.Join(t.TempDir(), "report.md"))
	assert.Error(t, err)
}
