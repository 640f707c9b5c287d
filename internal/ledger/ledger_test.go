package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestPending(t *testing.T) {
	tests := []struct {
		name string
		urls string
		done string
		want []string
	}{
		{
			name: "nothing done",
			urls: "https://a/1\nhttps://a/2\n",
			done: "",
			want: []string{"https://a/1", "https://a/2"},
		},
		{
			name: "order preserved after removal",
			urls: "https://a/3\nhttps://a/1\nhttps://a/2\n",
			done: "https://a/1\n",
			want: []string{"https://a/3", "https://a/2"},
		},
		{
			name: "duplicates kept literally",
			urls: "https://a/1\nhttps://a/2\nhttps://a/2\n",
			done: "",
			want: []string{"https://a/1", "https://a/2", "https://a/2"},
		},
		{
			name: "exact match only",
			urls: "https://a/1\nhttps://a/1/\n",
			done: "https://a/1\n",
			want: []string{"https://a/1/"},
		},
		{
			name: "crlf terminators and missing final newline",
			urls: "https://a/1\r\nhttps://a/2",
			done: "https://a/2\r\n",
			want: []string{"https://a/1"},
		},
		{
			name: "blank lines ignored",
			urls: "https://a/1\n\n\r\nhttps://a/2\n\n",
			done: "\n",
			want: []string{"https://a/1", "https://a/2"},
		},
		{
			name: "all done",
			urls: "https://a/1\n",
			done: "https://a/1\nhttps://a/9\n",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			urls := writeFile(t, dir, "urls.txt", tt.urls)
			done := writeFile(t, dir, "done.txt", tt.done)

			got, err := Pending(urls, done)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPendingMissingFile(t *testing.T) {
	dir := t.TempDir()
	urls := writeFile(t, dir, "urls.txt", "https://a/1\n")

	_, err := Pending(urls, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAppender(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "done.txt", "https://a/0\n")

	a, err := OpenAppender(path)
	require.NoError(t, err)
	require.NoError(t, a.Append("https://a/1"))
	require.NoError(t, a.Append("https://a/2", "https://a/2"))
	require.NoError(t, a.Append())
	require.NoError(t, a.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a/0\nhttps://a/1\nhttps://a/2\nhttps://a/2\n", string(b))
}

func TestAppenderCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")

	a, err := OpenAppender(path)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	require.NoError(t, a.Append("x"))
	assert.Equal(t, path, a.Path())
	assert.FileExists(t, path)
}

func TestSelect(t *testing.T) {
	urls := []string{"u1", "u2", "u3", "u4"}

	assert.Equal(t, urls, Select(urls, "", ""))
	assert.Equal(t, []string{"u2", "u3"}, Select(urls, "2-3", ""))
	assert.Equal(t, []string{"u2", "u3"}, Select(urls, "2-3", "1"))
	assert.Nil(t, Select(urls, "3-2", ""))
	assert.Nil(t, Select(urls, "1-9", ""))
	assert.Nil(t, Select(urls, "x-2", ""))
	assert.Equal(t, []string{"u1", "u4"}, Select(urls, "", "1, 4,9,z"))
	assert.Equal(t, []string{}, Select(urls, "", ","))
}
