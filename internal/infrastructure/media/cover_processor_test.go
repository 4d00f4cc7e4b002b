package media

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/folio-go/internal/domain/entities/content"
)

func writeCover(t *testing.T, root, rel string, width, height int) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func TestCoverForGeneratesThumbnails(t *testing.T) {
	root := t.TempDir()
	writeCover(t, root, "covers/tide.png", 1600, 900)
	p := NewCoverProcessor(root, nil)

	cover := p.CoverFor(&content.Work{ID: "tide-01", Title: "Low Tide", Cover: "covers/tide.png"})
	require.True(t, cover.Available())
	assert.Equal(t, "/media/thumbs/tide-01_600px.webp", cover.Src)
	assert.Equal(t, "/media/thumbs/tide-01_1200px.webp 1200w, /media/thumbs/tide-01_600px.webp 600w, /media/thumbs/tide-01_300px.webp 300w", cover.SrcSet)
	assert.Equal(t, "Low Tide", cover.Alt)

	for _, w := range []string{"1200", "600", "300"} {
		_, err := os.Stat(filepath.Join(root, "thumbs", "tide-01_"+w+"px.webp"))
		assert.NoError(t, err)
	}

	thumb, err := imaging.Open(filepath.Join(root, "thumbs", "tide-01_300px.webp"))
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
}

func TestCoverForFallsBack(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "junk.jpg"), []byte("not an image"), 0o644))
	p := NewCoverProcessor(root, nil)

	assert.False(t, p.CoverFor(nil).Available())
	assert.False(t, p.CoverFor(&content.Work{ID: "a"}).Available())
	assert.False(t, p.CoverFor(&content.Work{ID: "a", Cover: "missing.png"}).Available())
	assert.False(t, p.CoverFor(&content.Work{ID: "a", Cover: "junk.jpg"}).Available())
	assert.False(t, p.CoverFor(&content.Work{ID: "a", Cover: "../../etc/passwd"}).Available())
}

func TestSmallCoversAreNotUpscaled(t *testing.T) {
	root := t.TempDir()
	writeCover(t, root, "small.png", 200, 100)
	p := NewCoverProcessor(root, nil)

	paths, err := p.EnsureThumbnails("small", "small.png")
	require.NoError(t, err)
	thumb, err := imaging.Open(paths[0])
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dx())
}
