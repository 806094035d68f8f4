package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"rotate(45)":          "rotate_45",
		"translate(10, -2.5)": "translate_10_-2.5",
		"scale(150%)":         "scale_150",
		"blur":                "blur",
		"../etc/passwd":       "etc_passwd",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/tmp/in/heart.JPG", "out", "aug_", StepSuffix(3, "rotate(-15)"), "png")
	assert.Equal(t, filepath.Join("out", "aug_heart_003_rotate_-15.png"), got)

	assert.Equal(t, filepath.Join("out", "a.jpg"), GenerateOutputFilename("a.JPG", "out", "", "", ""))
	assert.Equal(t, filepath.Join("out", "a.png"), GenerateOutputFilename("a", "out", "", "", ""))
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.WEBP", "notes.txt", "sub/c.jpeg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, EnsureDir(filepath.Dir(path)))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.WEBP"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "c.jpeg"),
	}, files)

	assert.True(t, FileExists(files[0]))
	assert.False(t, FileExists(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(files[0]))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2<<20))
}
