package recipients

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailblast/mailblast/internal/logger"
	"github.com/mailblast/mailblast/internal/model"
)

func testLoader(t *testing.T) *Loader {
	t.Helper()
	return NewLoader(',', logger.New("error", "json"))
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emails.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWithHeader(t *testing.T) {
	path := writeSource(t, "email,name\na@b.com,Alice\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.Recipient{Email: "a@b.com", Name: "Alice"}, list[0])
}

func TestLoadFirstLineIsData(t *testing.T) {
	// First line contains "@" and no "email" substring: treated as a
	// data row, not a header.
	path := writeSource(t, "a@b.com,Alice\nc@d.org,Carol\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@b.com", list[0].Email)
	assert.Equal(t, "c@d.org", list[1].Email)
}

func TestLoadNameDefaulting(t *testing.T) {
	path := writeSource(t, "email,name\na@b.com,\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Name)
}

func TestLoadRejectsInvalidAddress(t *testing.T) {
	path := writeSource(t, "email,name\nnot-an-email,Bad\nok@example.com,Good\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok@example.com", list[0].Email)
}

func TestLoadSkipsEmptyAddressSilently(t *testing.T) {
	path := writeSource(t, "email,name\n,Nameless\nok@example.com,Good\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestLoadTrimsWhitespace(t *testing.T) {
	path := writeSource(t, "email,name\n  a@b.com , Alice \n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a@b.com", list[0].Email)
	assert.Equal(t, "Alice", list[0].Name)
}

func TestLoadPreservesOrderAndDuplicates(t *testing.T) {
	path := writeSource(t, "email,name\nz@z.com,Z\na@a.com,A\nz@z.com,Z\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "z@z.com", list[0].Email)
	assert.Equal(t, "a@a.com", list[1].Email)
	assert.Equal(t, "z@z.com", list[2].Email)
}

func TestLoadMissingFile(t *testing.T) {
	list, err := testLoader(t).Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, ErrSourceNotFound))
	assert.Empty(t, list)
}

func TestLoadSpaceDelimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.txt")
	require.NoError(t, os.WriteFile(path, []byte("a@b.com Alice\nc@d.org Carol\n"), 0644))

	loader := NewLoader(' ', logger.New("error", "json"))
	list, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
}

func TestLoadRowWithOnlyEmail(t *testing.T) {
	path := writeSource(t, "email,name\nsolo@example.com\n")

	list, err := testLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "solo", list[0].Name)
}

func TestIsHeader(t *testing.T) {
	assert.True(t, isHeader([]string{"email", "name"}, ','))
	assert.True(t, isHeader([]string{"Email", "Name"}, ','))
	// No "@" anywhere: header by heuristic even without "email"
	assert.True(t, isHeader([]string{"address", "name"}, ','))
	assert.False(t, isHeader([]string{"a@b.com", "Alice"}, ','))
	// Known false positive the heuristic deliberately keeps
	assert.True(t, isHeader([]string{"my.email@example.com", "Me"}, ','))
}
