package pptx

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeZip writes a zip archive with the given parts and returns its path.
func writeZip(t *testing.T, name string, parts map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatalf("create part %q: %v", partName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write part %q: %v", partName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPackageRoundTrip(t *testing.T) {
	path := writeZip(t, "test.zip", map[string]string{
		"a.xml": "<a/>",
		"b.xml": "<b/>",
	})

	pkg, err := OpenPackage(path)
	if err != nil {
		t.Fatalf("OpenPackage failed: %v", err)
	}

	data, err := pkg.Read("a.xml")
	if err != nil || string(data) != "<a/>" {
		t.Fatalf("Read(a.xml) = %q, %v", data, err)
	}
	if _, err := pkg.Read("missing.xml"); err == nil {
		t.Fatal("expected an error for a missing part")
	}

	pkg.Write("a.xml", []byte("<a>edited</a>"))
	pkg.Write("c.xml", []byte("<c/>"))

	out := filepath.Join(t.TempDir(), "out.zip")
	if err := pkg.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := OpenPackage(out)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if data, _ := reopened.Read("a.xml"); string(data) != "<a>edited</a>" {
		t.Errorf("edited part lost: %q", data)
	}
	if data, _ := reopened.Read("b.xml"); string(data) != "<b/>" {
		t.Errorf("untouched part changed: %q", data)
	}
	if data, _ := reopened.Read("c.xml"); string(data) != "<c/>" {
		t.Errorf("new part lost: %q", data)
	}
}

func TestOpenNotPresentation(t *testing.T) {
	path := writeZip(t, "not.pptx", map[string]string{"a.xml": "<a/>"})
	if _, err := Open(path); err == nil {
		t.Fatal("expected ErrNotPresentation")
	}
}

func TestNextRelID(t *testing.T) {
	rels := []Relationship{{ID: "rId1"}, {ID: "rId7"}, {ID: "other"}}
	if got := nextRelID(rels); got != "rId8" {
		t.Errorf("nextRelID = %q, want rId8", got)
	}
	if got := nextRelID(nil); got != "rId1" {
		t.Errorf("nextRelID(nil) = %q, want rId1", got)
	}
}

func TestResolveTarget(t *testing.T) {
	if got := resolveTarget("ppt/slides", "../charts/chart1.xml"); got != "ppt/charts/chart1.xml" {
		t.Errorf("resolveTarget = %q", got)
	}
	if got := resolveTarget("ppt", "slides/slide1.xml"); got != "ppt/slides/slide1.xml" {
		t.Errorf("resolveTarget = %q", got)
	}
	if got := resolveTarget("ppt", "/docProps/app.xml"); got != "docProps/app.xml" {
		t.Errorf("resolveTarget = %q", got)
	}
}
