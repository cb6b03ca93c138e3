package covers

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: 80, B: uint8(y * 255 / h), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w x h RGB
// canvas, with no pixel data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.WriteString("IHDR")
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte("IHDR"), ihdr...)))
	return buf.Bytes()
}

func TestNewStorage(t *testing.T) {
	uploads := t.TempDir()
	s, err := NewStorage(uploads)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(uploads, "covers"), s.Dir())
	assert.DirExists(t, s.Dir())

	_, err = NewStorage("")
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	data := pngBytes(t, 200, 300)
	stored, err := s.Save(data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Path, PublicPrefix))
	assert.True(t, strings.HasSuffix(stored.Path, ".png"))
	assert.Equal(t, "png", stored.Format)
	assert.Equal(t, 200, stored.Width)
	assert.Equal(t, 300, stored.Height)
	assert.Equal(t, int64(len(data)), stored.Size)
	assert.NotEmpty(t, stored.BlurHash)
	assert.True(t, s.Exists(stored.Path))

	path, err := s.Path(stored.Path)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)
}

func TestSave_Rejects(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = s.Save([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = s.Save(make([]byte, MaxSize+1))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSave_RejectsHugeCanvasBeforeDecoding(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(pngHeader(50_000, 50_000))
	assert.ErrorIs(t, err, ErrTooManyPixels)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	stored, err := s.Save(pngBytes(t, 10, 10))
	require.NoError(t, err)

	require.NoError(t, s.Delete(stored.Path))
	assert.False(t, s.Exists(stored.Path))

	// Already gone, external and default references are ignored.
	assert.NoError(t, s.Delete(stored.Path))
	assert.NoError(t, s.Delete("/static/default-cover.png"))
	assert.NoError(t, s.Delete("https://example.com/cover.jpg"))
	assert.NoError(t, s.Delete(""))
}

func TestIsStored(t *testing.T) {
	assert.True(t, IsStored("/uploads/covers/0b1e3a4c-64a4-4b8f-9a1c-2f5d6e7f8a9b.jpg"))
	assert.False(t, IsStored("/uploads/covers/../secret.jpg"))
	assert.False(t, IsStored("/uploads/covers/.hidden"))
	assert.False(t, IsStored("/uploads/covers/not-a-uuid.jpg"))
	assert.False(t, IsStored("/static/default-cover.png"))
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 160))
	thumb := thumbnail(img)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 16, thumb.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 20, 30))
	assert.Same(t, small, thumbnail(small))
}
