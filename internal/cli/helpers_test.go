package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintower/pkg/family"
	"github.com/matzehuels/kintower/pkg/graph"
)

const lovelace = `{
	"primary": "ada",
	"people": [
		{"id": "george", "first_name": "George", "last_name": "Byron", "gender": "male", "birth": "1788-01-22", "death": "1824-04-19"},
		{"id": "annabella", "first_name": "Annabella", "last_name": "Milbanke", "gender": "female", "birth": "1792", "death": "1860"},
		{"id": "ada", "first_name": "Ada", "last_name": "Lovelace", "gender": "female", "birth": "1815-12-10", "death": "1852-11-27"},
		{"id": "william", "first_name": "William", "last_name": "King", "birth": "1805", "death": "1893"},
		{"id": "byron", "first_name": "Byron", "birth": "1836", "death": "1862"}
	],
	"relationships": [
		{"type": "parent", "from": "george", "to": "ada"},
		{"type": "parent", "from": "annabella", "to": "ada"},
		{"type": "spouse", "from": "george", "to": "annabella", "former": true, "married": "1815", "divorced": "1816"},
		{"type": "spouse", "from": "ada", "to": "william", "married": "1835-07-08"},
		{"type": "parent", "from": "ada", "to": "byron"},
		{"type": "parent", "from": "william", "to": "byron"}
	]
}`

// withAnne adds Ada's daughter Anne to the lovelace family.
func withAnne() string {
	s := strings.Replace(lovelace,
		`{"id": "byron", "first_name": "Byron", "birth": "1836", "death": "1862"}`,
		`{"id": "byron", "first_name": "Byron", "birth": "1836", "death": "1862"},
		{"id": "anne", "first_name": "Anne", "last_name": "King", "birth": "1837", "death": "1917"}`, 1)
	return strings.Replace(s,
		`{"type": "parent", "from": "william", "to": "byron"}`,
		`{"type": "parent", "from": "william", "to": "byron"},
		{"type": "parent", "from": "ada", "to": "anne"}`, 1)
}

func parseFamily(t *testing.T, content string) *family.Graph {
	t.Helper()
	g, err := graph.ReadFamily(strings.NewReader(content), graph.FormatJSON)
	if err != nil {
		t.Fatalf("ReadFamily: %v", err)
	}
	return g
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testCLI returns a CLI writing to out, with config and cache isolated in
// temporary directories.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	c := New(&out, log.WarnLevel)
	c.Out = &out
	return c, &out
}

// run executes the root command with args.
func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(c.Out)
	root.SetErr(c.Out)
	return root.Execute()
}
