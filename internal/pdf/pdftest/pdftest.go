// Package pdftest generates small, well-formed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one page of a generated PDF
type Page struct {
	Content string // raw content stream
	Filter  string // /Filter name declared on the stream; the content is not actually encoded
}

// TextPage returns a page that shows each line of text on its own line
func TextPage(lines ...string) Page {
	var sb strings.Builder
	sb.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
	for _, line := range lines {
		fmt.Fprintf(&sb, " (%s) Tj T*", escape(line))
	}
	sb.WriteString(" ET")
	return Page{Content: sb.String()}
}

// CorruptPage returns a page whose content stream claims FlateDecode but holds plain bytes
func CorruptPage() Page {
	return Page{Content: "this is not deflate data", Filter: "FlateDecode"}
}

// BlankPage returns a page with no text operators
func BlankPage() Page {
	return Page{Content: "q 1 0 0 1 0 0 cm Q"}
}

// Build writes a minimal PDF with a correct cross-reference table.
// Object layout: 1 catalog, 2 page tree, 3 font, then a page and content stream per page.
func Build(pages ...Page) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		writeObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+i*2))

		dict := fmt.Sprintf("/Length %d", len(p.Content))
		if p.Filter != "" {
			dict += " /Filter /" + p.Filter
		}
		writeObj(fmt.Sprintf("<< %s >>\nstream\n%s\nendstream", dict, p.Content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
