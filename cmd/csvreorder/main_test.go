package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/colarrange/internal/core"
)

const arrangementsDoc = `{
  "version": "1.0",
  "exportDate": "2024-01-02T03:04:05.000Z",
  "arrangements": [
    {
      "id": 1700000000000,
      "name": "People",
      "columnOrder": [
        {"originalIndex": 2, "name": "City", "excluded": false, "isCustom": false},
        {"originalIndex": 0, "name": "Name", "excluded": false, "isCustom": false},
        {"originalIndex": 1, "name": "Age", "excluded": true, "isCustom": false}
      ]
    },
    {
      "id": "legacy-1",
      "name": "Old",
      "columnOrder": [1, 0, 2]
    }
  ]
}`

// testCLI runs commands against a file store in its own temp dir.
type testCLI struct {
	t        *testing.T
	storeDir string
	dir      string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	dir := t.TempDir()
	return &testCLI{t: t, storeDir: filepath.Join(dir, "store"), dir: dir}
}

func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()
	var out bytes.Buffer
	a := &app{out: &out, lookup: func(string) string { return "" }}
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--store", "file", "--store-dir", c.storeDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func (c *testCLI) write(name, content string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		c.t.Fatal(err)
	}
	return path
}

func (c *testCLI) seed() {
	c.t.Helper()
	out := c.mustRun("arrangements", "import", c.write("arrangements.json", arrangementsDoc))
	if !strings.Contains(out, "Successfully imported 2 arrangement(s)") {
		c.t.Fatalf("import output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out := newTestCLI(t).mustRun("version")
	if out != "csvreorder "+version+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestArrangementsListAndDelete(t *testing.T) {
	c := newTestCLI(t)

	if out := c.mustRun("arrangements", "list"); !strings.Contains(out, "No saved arrangements.") {
		t.Errorf("empty list output = %q", out)
	}

	c.seed()
	out := c.mustRun("arrangements", "list")
	for _, want := range []string{"People", "current", "Old", "legacy"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	// Imports get fresh ids; look one up through export to delete it.
	doc := c.mustRun("arrangements", "export", "--out", "-")
	if !strings.Contains(doc, `"version": "1.0"`) {
		t.Fatalf("export document = %s", doc)
	}

	_, err := c.run("arrangements", "delete", "no-such-id")
	if !errors.Is(err, core.ErrArrangementNotFound) {
		t.Errorf("delete unknown: err = %v, want ErrArrangementNotFound", err)
	}
}

func TestArrangementsImport_Repeat(t *testing.T) {
	c := newTestCLI(t)
	c.seed()

	out := c.mustRun("arrangements", "import", filepath.Join(c.dir, "arrangements.json"))
	if !strings.Contains(out, "No new arrangements to import") {
		t.Errorf("second import output = %q", out)
	}
}

func TestArrangementsImport_Invalid(t *testing.T) {
	c := newTestCLI(t)

	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"wrong shape", `{"arrangements": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run("arrangements", "import", c.write("bad.json", tt.content))
			if !errors.Is(err, errImportFailed) {
				t.Errorf("err = %v, want errImportFailed", err)
			}
		})
	}
}

func TestArrangementsExport_ToFile(t *testing.T) {
	c := newTestCLI(t)

	if _, err := c.run("arrangements", "export", "--out", "-"); !errors.Is(err, core.ErrNothingToExport) {
		t.Fatalf("export with empty store: err = %v, want ErrNothingToExport", err)
	}

	c.seed()
	path := filepath.Join(c.dir, "all.json")
	out := c.mustRun("arrangements", "export", "--out", path)
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("output = %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"name": "People"`) || !strings.Contains(string(data), `"name": "Old"`) {
		t.Errorf("exported document missing arrangements:\n%s", data)
	}
}

func TestMatch(t *testing.T) {
	c := newTestCLI(t)
	file := c.write("people.csv", "Name,Age,City\nAnn,34,Oslo\n")

	if out := c.mustRun("match", file); !strings.Contains(out, "No matching arrangements.") {
		t.Errorf("match before seeding = %q", out)
	}

	c.seed()
	out := c.mustRun("match", file)
	if !strings.Contains(out, "People") || !strings.Contains(out, "100%") || !strings.Contains(out, "3/3") {
		t.Errorf("match output = %q", out)
	}
	if strings.Contains(out, "Old") {
		t.Errorf("legacy arrangement should never match:\n%s", out)
	}
}

func TestExport(t *testing.T) {
	c := newTestCLI(t)
	file := c.write("people.csv", "Name,Age,City\nAnn,34,\"Oslo, NO\"\n")
	c.seed()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "unchanged",
			args: []string{"export", file, "--out", "-"},
			want: "Name,Age,City\nAnn,34,\"Oslo, NO\"",
		},
		{
			name: "by name",
			args: []string{"export", file, "--arrangement", "People", "--out", "-"},
			want: "City,Name\n\"Oslo, NO\",Ann",
		},
		{
			name: "legacy by name",
			args: []string{"export", file, "--arrangement", "Old", "--out", "-"},
			want: "Age,Name,City\n34,Ann,\"Oslo, NO\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.mustRun(tt.args...); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExport_DefaultPath(t *testing.T) {
	c := newTestCLI(t)
	file := c.write("people.csv", "Name,Age\nAnn,34\n")

	c.mustRun("export", file)
	data, err := os.ReadFile(filepath.Join(c.dir, core.ExportName("people.csv")))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Name,Age\nAnn,34" {
		t.Errorf("written file = %q", data)
	}
}

func TestExport_XLSX(t *testing.T) {
	c := newTestCLI(t)
	file := c.write("people.csv", "Name,Age\nAnn,34\n")
	out := filepath.Join(c.dir, "people.xlsx")

	c.mustRun("export", file, "--format", "xlsx", "--out", out)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("xlsx output does not look like a zip archive")
	}
}

func TestExport_Errors(t *testing.T) {
	c := newTestCLI(t)
	file := c.write("people.csv", "Name,Age\nAnn,34\n")
	empty := c.write("empty.csv", "")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown format", []string{"export", file, "--format", "pdf"}, errUnknownFormat},
		{"unknown arrangement", []string{"export", file, "--arrangement", "nope", "--out", "-"}, core.ErrArrangementNotFound},
		{"empty file", []string{"export", empty, "--out", "-"}, core.ErrNoCSVLoaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStoreFlags_Validated(t *testing.T) {
	c := newTestCLI(t)
	_, err := c.run("--store", "bogus", "arrangements", "list")
	if err == nil || !strings.Contains(err.Error(), "STORAGE_BACKEND") {
		t.Errorf("err = %v, want a STORAGE_BACKEND validation error", err)
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "known error gets the coded message",
			err:  fmt.Errorf("save: %w", core.ErrBlankName),
			want: core.FormatUserError(core.ErrBlankName),
		},
		{
			name: "unknown error is shown as is",
			err:  errors.New("accepts 1 arg(s), received 0"),
			want: "accepts 1 arg(s), received 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorText(tt.err); got != tt.want {
				t.Errorf("errorText() = %q, want %q", got, tt.want)
			}
		})
	}
	if !strings.Contains(errorText(core.ErrBlankName), "(Code: VAL001)") {
		t.Errorf("errorText(ErrBlankName) = %q, want a VAL001 code", errorText(core.ErrBlankName))
	}
}

func TestArrangementsImport_ByteOrderMark(t *testing.T) {
	c := newTestCLI(t)
	out := c.mustRun("arrangements", "import", c.write("bom.json", "\uFEFF"+arrangementsDoc))
	if !strings.Contains(out, "Successfully imported 2 arrangement(s)") {
		t.Errorf("import output = %q", out)
	}
}
