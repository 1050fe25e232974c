package letters

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, dir, name, documentXML string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create template file: %v", err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   documentXML,
	}
	for partName, content := range parts {
		w, err := writer.Create(partName)
		if err != nil {
			t.Fatalf("failed to create part %s: %v", partName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write part %s: %v", partName, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to finalize template: %v", err)
	}
	return path
}

func documentXML(t *testing.T, path string) string {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("failed to open document part: %v", err)
		}
		defer rc.Close()
		var sb strings.Builder
		buf := make([]byte, 4096)
		for {
			n, readErr := rc.Read(buf)
			sb.Write(buf[:n])
			if readErr != nil {
				break
			}
		}
		return sb.String()
	}
	t.Fatal("document part not found")
	return ""
}

func TestSetValueEscapesXML(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "tpl.docx", `<w:document><w:t>${club_name}</w:t></w:document>`)

	tp, err := Open(template)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tp.SetValue("club_name", `Golf & Country "Le Querce" <Roma>`)

	out := filepath.Join(dir, "out.docx")
	if err := tp.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc := documentXML(t, out)
	if strings.Contains(doc, "${club_name}") {
		t.Error("placeholder was not replaced")
	}
	if !strings.Contains(doc, "Golf &amp; Country &quot;Le Querce&quot; &lt;Roma&gt;") {
		t.Errorf("value was not escaped: %s", doc)
	}
}

func TestSetValueConvertsNewlines(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "tpl.docx", `<w:document><w:t>${message}</w:t></w:document>`)

	tp, err := Open(template)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tp.SetValue("message", "prima riga\nseconda riga")

	out := filepath.Join(dir, "out.docx")
	if err := tp.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if doc := documentXML(t, out); !strings.Contains(doc, "prima riga<w:br/>seconda riga") {
		t.Errorf("newline was not converted to w:br: %s", doc)
	}
}

func TestCloneRow(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantRows  int
		wantInDoc []string
	}{
		{
			name:     "three rows",
			count:    3,
			wantRows: 3,
			wantInDoc: []string{
				"${referee_name#1}", "${referee_role#1}",
				"${referee_name#2}", "${referee_name#3}",
			},
		},
		{
			name:     "zero rows removes the template row",
			count:    0,
			wantRows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			template := writeTemplate(t, dir, "tpl.docx",
				`<w:document><w:tbl><w:tr><w:t>${referee_name}</w:t><w:t>${referee_role}</w:t></w:tr></w:tbl></w:document>`)

			tp, err := Open(template)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if err := tp.CloneRow("referee_name", tt.count); err != nil {
				t.Fatalf("CloneRow: %v", err)
			}

			out := filepath.Join(dir, "out.docx")
			if err := tp.Save(out); err != nil {
				t.Fatalf("Save: %v", err)
			}
			doc := documentXML(t, out)

			if got := strings.Count(doc, "<w:tr>"); got != tt.wantRows {
				t.Errorf("row count = %d, want %d", got, tt.wantRows)
			}
			for _, want := range tt.wantInDoc {
				if !strings.Contains(doc, want) {
					t.Errorf("document is missing %q", want)
				}
			}
			if strings.Contains(doc, "${referee_name}") {
				t.Error("unindexed placeholder survived cloning")
			}
		})
	}
}

func TestCloneRowWithRowProperties(t *testing.T) {
	// Строки настоящих бланков несут <w:trPr> с <w:trHeight>; поиск начала
	// строки не должен принимать эти теги за открывающий <w:tr>.
	const xml = `<w:document><w:tbl>` +
		`<w:tr w:rsidR="00A1"><w:trPr><w:trHeight w:val="340"/></w:trPr>` +
		`<w:tc><w:t>${referee_name}</w:t><w:t>${referee_role}</w:t></w:tc></w:tr>` +
		`</w:tbl></w:document>`

	dir := t.TempDir()
	tp, err := Open(writeTemplate(t, dir, "tpl.docx", xml))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tp.CloneRow("referee_name", 2); err != nil {
		t.Fatalf("CloneRow: %v", err)
	}

	out := filepath.Join(dir, "out.docx")
	if err := tp.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc := documentXML(t, out)

	openers := strings.Count(doc, `<w:tr w:rsidR="00A1">`)
	closers := strings.Count(doc, "</w:tr>")
	if openers != 2 || closers != 2 {
		t.Errorf("row tags unbalanced: %d openers, %d closers in %s", openers, closers, doc)
	}
	if got := strings.Count(doc, "<w:trPr>"); got != 2 {
		t.Errorf("row properties count = %d, want 2", got)
	}
	for _, want := range []string{"${referee_name#1}", "${referee_name#2}", "${referee_role#2}"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document is missing %q", want)
		}
	}
}

func TestCloneRowMissingPlaceholder(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir, "tpl.docx", `<w:document><w:t>niente</w:t></w:document>`)

	tp, err := Open(template)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tp.CloneRow("referee_name", 2); err != ErrRowNotFound {
		t.Errorf("CloneRow error = %v, want ErrRowNotFound", err)
	}
}

func TestBlocks(t *testing.T) {
	const xml = `<w:document><w:t>intro</w:t>${BLOCCO_CLAUSOLA_CLUB_SPESE}<w:t>testo spese</w:t>${/BLOCCO_CLAUSOLA_CLUB_SPESE}<w:t>fine</w:t></w:document>`

	t.Run("delete removes content and markers", func(t *testing.T) {
		dir := t.TempDir()
		tp, err := Open(writeTemplate(t, dir, "tpl.docx", xml))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		tp.DeleteBlock("BLOCCO_CLAUSOLA_CLUB_SPESE")

		out := filepath.Join(dir, "out.docx")
		if err := tp.Save(out); err != nil {
			t.Fatalf("Save: %v", err)
		}
		doc := documentXML(t, out)
		if strings.Contains(doc, "testo spese") || strings.Contains(doc, "BLOCCO") {
			t.Errorf("block was not removed: %s", doc)
		}
		if !strings.Contains(doc, "intro") || !strings.Contains(doc, "fine") {
			t.Errorf("surrounding content damaged: %s", doc)
		}
	})

	t.Run("keep removes only markers", func(t *testing.T) {
		dir := t.TempDir()
		tp, err := Open(writeTemplate(t, dir, "tpl.docx", xml))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		tp.KeepBlock("BLOCCO_CLAUSOLA_CLUB_SPESE")

		out := filepath.Join(dir, "out.docx")
		if err := tp.Save(out); err != nil {
			t.Fatalf("Save: %v", err)
		}
		doc := documentXML(t, out)
		if !strings.Contains(doc, "testo spese") {
			t.Errorf("block content was removed: %s", doc)
		}
		if strings.Contains(doc, "BLOCCO") {
			t.Errorf("markers survived: %s", doc)
		}
	})
}

func TestOpenRejectsArchiveWithoutDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	writer := zip.NewWriter(file)
	w, _ := writer.Create("[Content_Types].xml")
	w.Write([]byte("<Types/>"))
	writer.Close()
	file.Close()

	if _, err := Open(path); err != ErrMissingDocumentPart {
		t.Errorf("Open error = %v, want ErrMissingDocumentPart", err)
	}
}

func TestVerifyArchive(t *testing.T) {
	dir := t.TempDir()
	good := writeTemplate(t, dir, "good.docx", `<w:document/>`)
	if err := VerifyArchive(good); err != nil {
		t.Errorf("VerifyArchive on valid file: %v", err)
	}

	bad := filepath.Join(dir, "bad.docx")
	if err := os.WriteFile(bad, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := VerifyArchive(bad); err == nil {
		t.Error("VerifyArchive accepted a non-archive file")
	}
}
