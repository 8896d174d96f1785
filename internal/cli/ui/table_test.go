package ui

import (
	"bytes"
	"testing"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "File", "Status")
	table.AddRow("app/api/fuse/route.ts", "created")
	table.AddRow("types/User.ts", "kept", "ignored")
	table.Render()

	want := "File                   Status\n" +
		"─────────────────────  ───────\n" +
		"app/api/fuse/route.ts  created\n" +
		"types/User.ts          kept\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("a")
	table.Render()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestKeyValueTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("Next.js", "14.1.0")
	table.AddRow("Package manager", "pnpm")
	table.Render()

	want := "Next.js:         14.1.0\n" +
		"Package manager: pnpm\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestList(t *testing.T) {
	var buf bytes.Buffer
	List(&buf, []string{"Run pnpm dev", "Edit types/User.ts"}, true)
	if buf.String() != "1. Run pnpm dev\n2. Edit types/User.ts\n" {
		t.Errorf("List() = %q", buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Fuse is ready", true)
	if buf.String() != "Fuse is ready\n─────────────\n" {
		t.Errorf("Header() = %q", buf.String())
	}
}
