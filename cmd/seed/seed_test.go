package main

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KristianLengyel/menami-bot/menami/database/dbtest"
	"github.com/KristianLengyel/menami-bot/menami/database/repositories"
)

func TestImportCatalog(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	catalog := repositories.NewCatalogRepository(db.BunDB())

	input := `{"Frieren": ["Fern", "Stark", "Fern"], "K-On!": ["Mio Akiyama"]}`
	added, skipped, err := importCatalog(ctx, catalog, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 1, skipped)

	all, err := catalog.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	added, skipped, err = importCatalog(ctx, catalog, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 4, skipped)
}

func TestImportCatalogRejectsBadJSON(t *testing.T) {
	_, _, err := importCatalog(context.Background(), nil, strings.NewReader(`["Fern"]`))
	assert.ErrorContains(t, err, "invalid catalog file")
}

func TestCollectArtwork(t *testing.T) {
	fsys := fstest.MapFS{
		"Frieren/Fern/1.png":       {Data: []byte("a")},
		"Frieren/Fern/2.png":       {Data: []byte("b")},
		"Frieren/Fern/notes.txt":   {Data: []byte("x")},
		"Frieren/Fern/cover.png":   {Data: []byte("x")},
		"Frieren/Fern/0.png":       {Data: []byte("x")},
		"K-On!/Mio Akiyama/1.png":  {Data: []byte("c")},
		"loose.png":                {Data: []byte("x")},
		"Frieren/Fern/extra/1.png": {Data: []byte("x")},
	}

	files, err := collectArtwork(fsys, "cards")
	require.NoError(t, err)

	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = f.Key
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"cards/characters/frieren/fern/1.png",
		"cards/characters/frieren/fern/2.png",
		"cards/characters/k-on/mio-akiyama/1.png",
	}, keys)
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string]string
	fail    string
}

func (m *memUploader) PutArtwork(_ context.Context, key string, data []byte, contentType string) error {
	if key == m.fail {
		return errors.New("upload failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = contentType + ":" + string(data)
	return nil
}

func TestUploadArtwork(t *testing.T) {
	fsys := fstest.MapFS{
		"Frieren/Fern/1.png":  {Data: []byte("a")},
		"Frieren/Stark/1.png": {Data: []byte("b")},
	}
	files, err := collectArtwork(fsys, "")
	require.NoError(t, err)

	up := &memUploader{objects: map[string]string{}}
	require.NoError(t, uploadArtwork(context.Background(), fsys, up, files))
	assert.Equal(t, map[string]string{
		"characters/frieren/fern/1.png":  "image/png:a",
		"characters/frieren/stark/1.png": "image/png:b",
	}, up.objects)

	up = &memUploader{objects: map[string]string{}, fail: "characters/frieren/stark/1.png"}
	assert.Error(t, uploadArtwork(context.Background(), fsys, up, files))
}
