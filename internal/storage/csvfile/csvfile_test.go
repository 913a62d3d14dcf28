package csvfile

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	return string(b)
}

func TestHeaderIsLowercased(t *testing.T) {
	path := writeFile(t, "ID,Name\n1,ann\n")

	header, err := Header(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, header, []string{"id", "name"})
}

func TestReadPadsShortRecords(t *testing.T) {
	path := writeFile(t, "id,name,age\n1,ann\n2,bob,30\n")

	var got [][]string
	err := Read(path, func(_, record []string) error {
		got = append(got, record)
		return nil
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, got, [][]string{{"1", "ann", ""}, {"2", "bob", "30"}})
}

func TestAppendQuotesAllFields(t *testing.T) {
	path := writeFile(t, "id,name\n1,ann")

	assert.NilError(t, Append(path, []string{"2", `say "hi"`}))
	assert.Equal(t, readFile(t, path), "id,name\n1,ann\n\"2\",\"say \"\"hi\"\"\"\n")
}

func TestRewriteDropsAndEdits(t *testing.T) {
	path := writeFile(t, "Id,Name\n1,ann\n2,bob\n3,cy\n")

	err := Rewrite(path, func(i int, _, record []string) ([]string, bool) {
		switch i {
		case 0:
			return nil, false
		case 2:
			record[1] = "cyd"
		}
		return record, true
	})
	assert.NilError(t, err)
	assert.Equal(t, readFile(t, path), "\"Id\",\"Name\"\n\"2\",\"bob\"\n\"3\",\"cyd\"\n")

	entries, err := os.ReadDir(filepath.Dir(path))
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 1, "temp file left behind")
}

func TestRewriteMissingFile(t *testing.T) {
	err := Rewrite(filepath.Join(t.TempDir(), "nope.csv"), func(int, []string, []string) ([]string, bool) {
		return nil, true
	})
	assert.ErrorContains(t, err, "failed to open")
}

func TestCreateRefusesExisting(t *testing.T) {
	path := writeFile(t, "id\n")
	assert.ErrorContains(t, Create(path, []string{"id"}), "failed to create")

	fresh := filepath.Join(t.TempDir(), "fresh.csv")
	assert.NilError(t, Create(fresh, []string{"id", "name"}))
	assert.Equal(t, readFile(t, fresh), "\"id\",\"name\"\n")
}
