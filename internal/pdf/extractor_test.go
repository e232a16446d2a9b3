package pdf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-pdf-fetcher/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-fetcher/internal/pdf/pdftest"
)

// fakeSource serves canned page text; pages listed in fail return an error
type fakeSource struct {
	pages []string
	fail  map[int]error
}

func (f *fakeSource) NumPage() int { return len(f.pages) }

func (f *fakeSource) PageText(pageNum int) (string, error) {
	if err, ok := f.fail[pageNum]; ok {
		return "", err
	}
	return f.pages[pageNum-1], nil
}

func TestExtractPages_SkipsFailedPageKeepingNumbers(t *testing.T) {
	src := &fakeSource{
		pages: []string{"first page", "", "third page", "fourth page"},
		fail:  map[int]error{2: errors.New("bad content stream")},
	}

	doc, err := NewExtractor().extractPages(src)
	require.NoError(t, err)

	assert.Equal(t, 4, doc.PageCount)
	assert.Equal(t, []int{1, 3, 4}, doc.PageNumbers())
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, 2, doc.Skipped[0].Page)
	assert.Equal(t, "bad content stream", doc.Skipped[0].Reason)

	want := "--- Page 1 ---\nfirst page\n\n--- Page 3 ---\nthird page\n\n--- Page 4 ---\nfourth page"
	assert.Equal(t, want, doc.Text())
}

func TestExtractPages_OmitsWhitespacePages(t *testing.T) {
	src := &fakeSource{pages: []string{"  \n\t", "body", "\n"}}

	doc, err := NewExtractor().extractPages(src)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, doc.PageNumbers())
	assert.Equal(t, []int{1, 3}, doc.EmptyPages)
	assert.Empty(t, doc.Skipped)
	assert.Equal(t, "--- Page 2 ---\nbody", doc.Text())
}

func TestExtractPages_NoExtractableText(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"all empty", &fakeSource{pages: []string{"", " ", "\n"}}},
		{"all failing", &fakeSource{pages: []string{"x", "y"}, fail: map[int]error{1: errors.New("a"), 2: errors.New("b")}}},
		{"no pages", &fakeSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewExtractor().extractPages(tt.src)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Equal(t, pdferrors.KindNoExtractableText, pdferrors.KindOf(err))
		})
	}
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"html interstitial", []byte("<!DOCTYPE html><html><head><title>Google Drive - Virus scan warning</title></head></html>")},
		{"plain text", []byte("just some text")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor().Extract(tt.data)
			require.Error(t, err)
			assert.Equal(t, pdferrors.KindMalformedDocument, pdferrors.KindOf(err))
		})
	}
}

func TestExtract_HTMLErrorNamesDetectedType(t *testing.T) {
	_, err := NewExtractor().Extract([]byte("<html><body>sign in</body></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text/html")
}

func TestExtract_TruncatedPDF(t *testing.T) {
	data := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog")

	_, err := NewExtractor().Extract(data)
	require.Error(t, err)
	assert.Equal(t, pdferrors.KindMalformedDocument, pdferrors.KindOf(err))
}

func TestExtract_GeneratedPDF(t *testing.T) {
	data := pdftest.Build(pdftest.TextPage("Purchase Agreement"), pdftest.TextPage("Closing Date"))

	doc, err := NewExtractor().Extract(data)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, []int{1, 2}, doc.PageNumbers())

	text := doc.Text()
	assert.Contains(t, text, "--- Page 1 ---")
	assert.Contains(t, text, "--- Page 2 ---")
	assert.Contains(t, text, "Purchase")
	assert.Contains(t, text, "Closing")
	assert.Less(t, strings.Index(text, "Purchase"), strings.Index(text, "Closing"))
}

func TestExtract_CorruptMiddlePage(t *testing.T) {
	data := pdftest.Build(pdftest.TextPage("Alpha"), pdftest.CorruptPage(), pdftest.TextPage("Gamma"))

	doc, err := NewExtractor().Extract(data)
	require.NoError(t, err)

	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, []int{1, 3}, doc.PageNumbers())

	text := doc.Text()
	assert.Contains(t, text, "--- Page 1 ---")
	assert.Contains(t, text, "--- Page 3 ---")
	assert.NotContains(t, text, "--- Page 2 ---")

	// page 2 is either reported as a failure or as empty, never as text
	reported := len(doc.EmptyPages) == 1 && doc.EmptyPages[0] == 2
	if len(doc.Skipped) == 1 {
		reported = doc.Skipped[0].Page == 2
	}
	assert.True(t, reported, "page 2 should be accounted for: skipped=%v empty=%v", doc.Skipped, doc.EmptyPages)
}

func TestExtract_ImageOnlyPDF(t *testing.T) {
	data := pdftest.Build(pdftest.Page{}, pdftest.BlankPage())

	_, err := NewExtractor().Extract(data)
	require.Error(t, err)
	assert.Equal(t, pdferrors.KindNoExtractableText, pdferrors.KindOf(err))
}
