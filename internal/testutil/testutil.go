// Package testutil provides shared test helpers for creating config files and manifest bundles.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/sigmareview/internal/content"
	"github.com/at-ishikawa/sigmareview/internal/stitcher"
)

// SetupTestConfig creates a config file that reads content from <tmpDir>/public
// and keeps review state in <tmpDir>/state. Backend URLs point at a closed port.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"public", "state", "exports"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`sources:
  local_directory: %s
  backend_url: http://127.0.0.1:1
storage:
  driver: file
  directory: %s
generation:
  base_url: http://127.0.0.1:1
  timeout: 1s
outputs:
  export_directory: %s
`,
		filepath.Join(tmpDir, "public"),
		filepath.Join(tmpDir, "state"),
		filepath.Join(tmpDir, "exports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// TestBlock describes a block written by CreateManifestBundle.
type TestBlock struct {
	Hour   int
	ID     string
	Title  string
	Slides int
}

// CreateManifestBundle writes the manifest index and one JSON file per block
// under publicDir, in the layout the local source reads.
func CreateManifestBundle(t *testing.T, publicDir string, blocks ...TestBlock) {
	t.Helper()

	manifestDir := filepath.Join(publicDir, filepath.FromSlash(stitcher.ManifestDirectory))
	require.NoError(t, os.MkdirAll(manifestDir, 0755))

	index := map[string][]string{}
	for _, b := range blocks {
		key := content.HourKey(b.Hour)
		index[key] = append(index[key], b.ID)

		atoms := make([]map[string]any, 0, b.Slides)
		for i := 0; i < b.Slides; i++ {
			letter := string(rune('a' + i))
			atoms = append(atoms, map[string]any{
				"atom_id":   fmt.Sprintf("vis-%s-%s", b.ID, letter),
				"atom_type": "visual",
				"asset_id":  fmt.Sprintf("block_%s/slide_%s.png", b.ID, letter),
				"metadata": map[string]any{
					"prompt":      fmt.Sprintf("Slide %s of %s", letter, b.Title),
					"description": fmt.Sprintf("Slide %s", letter),
				},
			})
		}
		writeJSON(t, filepath.Join(manifestDir, stitcher.BlockFileName(b.Hour, b.ID)), map[string]any{
			"block_id":    b.ID,
			"block_title": b.Title,
			"hour_name":   fmt.Sprintf("Hour %d", b.Hour),
			"atoms":       atoms,
		})
	}
	writeJSON(t, filepath.Join(manifestDir, stitcher.ManifestIndexFile), index)
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}
