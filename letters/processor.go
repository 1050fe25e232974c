// Package letters обрабатывает фирменные бланки в формате DOCX: подстановка
// плейсхолдеров ${var}, клонирование строк состава и удаление блоков клаузул.
// Формат совместим с бланками, которые зоны уже используют для писем.
package letters

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const documentPart = "word/document.xml"

var (
	ErrMissingDocumentPart = errors.New("archive does not contain word/document.xml")
	ErrRowNotFound         = errors.New("template row placeholder not found")
)

// TemplateProcessor держит в памяти все части архива шаблона; изменяется
// только word/document.xml, остальные части копируются как есть.
type TemplateProcessor struct {
	parts    map[string][]byte
	order    []string
	document string
}

// Open читает шаблон и проверяет наличие обязательной внутренней части.
func Open(path string) (*TemplateProcessor, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer reader.Close()

	tp := &TemplateProcessor{parts: make(map[string][]byte)}
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read template part %s: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read template part %s: %w", file.Name, err)
		}
		tp.parts[file.Name] = content
		tp.order = append(tp.order, file.Name)
	}

	document, ok := tp.parts[documentPart]
	if !ok {
		return nil, ErrMissingDocumentPart
	}
	tp.document = string(document)
	return tp, nil
}

// SetValue заменяет все вхождения ${name} экранированным значением.
func (tp *TemplateProcessor) SetValue(name, value string) {
	tp.document = strings.ReplaceAll(tp.document, "${"+name+"}", escapeXML(value))
}

// HasPlaceholder reports whether ${name} is still present in the document.
func (tp *TemplateProcessor) HasPlaceholder(name string) bool {
	return strings.Contains(tp.document, "${"+name+"}")
}

// CloneRow находит строку таблицы, содержащую ${name}, и клонирует её count
// раз; плейсхолдеры в клонах получают индексные суффиксы ${name#1}..${name#n}.
// При count == 0 строка удаляется целиком.
func (tp *TemplateProcessor) CloneRow(name string, count int) error {
	marker := "${" + name + "}"
	pos := strings.Index(tp.document, marker)
	if pos < 0 {
		return ErrRowNotFound
	}

	rowStart := lastRowOpener(tp.document[:pos])
	if rowStart < 0 {
		return ErrRowNotFound
	}
	rowEndRel := strings.Index(tp.document[pos:], "</w:tr>")
	if rowEndRel < 0 {
		return ErrRowNotFound
	}
	rowEnd := pos + rowEndRel + len("</w:tr>")
	row := tp.document[rowStart:rowEnd]

	var clones strings.Builder
	for i := 1; i <= count; i++ {
		clones.WriteString(indexRowPlaceholders(row, i))
	}
	tp.document = tp.document[:rowStart] + clones.String() + tp.document[rowEnd:]
	return nil
}

// lastRowOpener возвращает позицию последнего открывающего тега <w:tr> в s.
// Простой LastIndex по "<w:tr" здесь не годится: он цепляет <w:trPr> и
// <w:trHeight>, которые Word ставит внутри каждой строки.
func lastRowOpener(s string) int {
	for end := len(s); ; {
		idx := strings.LastIndex(s[:end], "<w:tr")
		if idx < 0 {
			return -1
		}
		after := idx + len("<w:tr")
		if after < len(s) && (s[after] == '>' || s[after] == ' ') {
			return idx
		}
		end = idx
	}
}

// indexRowPlaceholders переписывает каждый ${var} строки в ${var#i}.
func indexRowPlaceholders(row string, index int) string {
	var out strings.Builder
	rest := row
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			out.WriteString(rest)
			return out.String()
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			out.WriteString(rest)
			return out.String()
		}
		name := rest[start+2 : start+end]
		out.WriteString(rest[:start])
		fmt.Fprintf(&out, "${%s#%d}", name, index)
		rest = rest[start+end+1:]
	}
}

// DeleteBlock удаляет блок ${blockName}...${/blockName} вместе с маркерами.
// Отсутствие блока в шаблоне ошибкой не считается.
func (tp *TemplateProcessor) DeleteBlock(blockName string) {
	openMark := "${" + blockName + "}"
	closeMark := "${/" + blockName + "}"

	start := strings.Index(tp.document, openMark)
	if start < 0 {
		return
	}
	endRel := strings.Index(tp.document[start:], closeMark)
	if endRel < 0 {
		// Маркер закрытия потерян: убираем хотя бы открывающий.
		tp.document = strings.Replace(tp.document, openMark, "", 1)
		return
	}
	end := start + endRel + len(closeMark)
	tp.document = tp.document[:start] + tp.document[end:]
}

// KeepBlock снимает маркеры блока, сохраняя содержимое между ними.
func (tp *TemplateProcessor) KeepBlock(blockName string) {
	tp.document = strings.Replace(tp.document, "${"+blockName+"}", "", 1)
	tp.document = strings.Replace(tp.document, "${/"+blockName+"}", "", 1)
}

// Save упаковывает архив во временный файл и публикует его атомарным
// переименованием, чтобы не оставлять полузаписанных документов.
func (tp *TemplateProcessor) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".letters-*.docx")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName) // no-op после успешного rename
	}()

	writer := zip.NewWriter(tmp)
	for _, name := range tp.order {
		content := tp.parts[name]
		if name == documentPart {
			content = []byte(tp.document)
		}
		w, err := writer.Create(name)
		if err != nil {
			writer.Close()
			return fmt.Errorf("failed to create archive part %s: %w", name, err)
		}
		if _, err = w.Write(content); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write archive part %s: %w", name, err)
		}
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp output: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to publish document: %w", err)
	}
	return nil
}

// VerifyArchive открывает готовый документ и проверяет, что обязательная
// внутренняя часть на месте и непуста.
func VerifyArchive(path string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("generated document is not a valid archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name == documentPart {
			if file.UncompressedSize64 == 0 {
				return ErrMissingDocumentPart
			}
			return nil
		}
	}
	return ErrMissingDocumentPart
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\n", "<w:br/>",
)

func escapeXML(value string) string {
	return xmlReplacer.Replace(value)
}
