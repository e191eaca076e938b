package htmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chapterHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Dashain  Notes</title>
  <meta name="author" content="Sita">
  <meta property="og:image" content="https://example.com/tika.jpg">
  <style>body { color: red }</style>
</head>
<body>
  <nav><a href="/">Home</a> <a href="/about">About</a></nav>
  <div class="site-header">Site banner</div>
  <article>
    <h1>Dashain   Festival</h1>
    <p>The longest festival
       of the year.<br>Families gather.</p>
    <p><img src="https://example.com/kite.png" alt="Kites"></p>
    <h2>Days</h2>
    <ol>
      <li>Ghatasthapana</li>
      <li>Fulpati
        <ul><li>Phulpati procession</li></ul>
      </li>
      <li>Vijaya Dashami</li>
    </ol>
    <blockquote>Jamara and tika.</blockquote>
    <table>
      <tr><th>Day</th><th>Ritual</th></tr>
      <tr><td>10</td><td>Tika</td></tr>
    </table>
    <pre>line one
line two</pre>
    <script>alert("x")</script>
  </article>
  <aside>Related posts</aside>
  <footer>Copyright</footer>
</body>
</html>`

func TestParseChapter(t *testing.T) {
	doc, err := Parse(strings.NewReader(chapterHTML))
	require.NoError(t, err)

	assert.Equal(t, "Dashain Notes", doc.Title)
	assert.Equal(t, "Sita", doc.Meta["author"])
	assert.Equal(t, "https://example.com/tika.jpg", doc.Meta["og:image"])
	assert.Equal(t, "Dashain Festival", doc.FirstHeading())
	assert.Equal(t, []string{"https://example.com/kite.png"}, doc.Images())

	var kinds []SectionKind
	var texts []string
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind)
		texts = append(texts, s.Text)
	}

	assert.Equal(t, []SectionKind{
		SectionHeading,
		SectionParagraph,
		SectionImage,
		SectionHeading,
		SectionListItem, SectionListItem, SectionListItem, SectionListItem,
		SectionQuote,
		SectionParagraph, SectionParagraph,
		SectionParagraph,
	}, kinds)

	assert.Equal(t, "The longest festival of the year.\nFamilies gather.", texts[1])
	assert.Equal(t, "Kites", texts[2])
	assert.Equal(t, "Day | Ritual", texts[9])
	assert.Equal(t, "line one\nline two", texts[11])

	for _, s := range doc.Sections {
		assert.NotContains(t, s.Text, "Home")
		assert.NotContains(t, s.Text, "banner")
		assert.NotContains(t, s.Text, "Related")
		assert.NotContains(t, s.Text, "Copyright")
		assert.NotContains(t, s.Text, "alert")
	}
}

func TestListItems(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<ol><li>One</li><li>Two<ul><li>Nested</li></ul></li></ol>`))
	require.NoError(t, err)
	require.Len(t, doc.Sections, 3)

	assert.Equal(t, "One", doc.Sections[0].Text)
	assert.Equal(t, "1. ", doc.Sections[0].Prefix())
	assert.Equal(t, "Two", doc.Sections[1].Text)
	assert.Equal(t, 2, doc.Sections[1].Number)
	assert.Equal(t, "Nested", doc.Sections[2].Text)
	assert.Equal(t, 1, doc.Sections[2].Level)
	assert.Equal(t, "• ", doc.Sections[2].Prefix())

	assert.Equal(t, "1. One\n\n2. Two\n\n  • Nested", doc.Text())
}

func TestFragmentAndLooseText(t *testing.T) {
	doc, err := Parse(strings.NewReader("Just some text\n\n<p>and a paragraph</p>"))
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Just some text", doc.Sections[0].Text)
	assert.Equal(t, "and a paragraph", doc.Sections[1].Text)
	assert.Equal(t, "", doc.FirstHeading())
	assert.Equal(t, "", doc.Title)
}

func TestExclusionModes(t *testing.T) {
	src := `<body><nav>Menu</nav><div class="sidebar">Side</div><p>Body</p></body>`

	tests := []struct {
		mode ExclusionMode
		want []string
	}{
		{ExclusionNone, []string{"Menu", "Side", "Body"}},
		{ExclusionExplicit, []string{"Side", "Body"}},
		{ExclusionStandard, []string{"Body"}},
	}

	for _, tt := range tests {
		doc, err := ParseWithOptions(strings.NewReader(src), Options{Exclusion: tt.mode})
		require.NoError(t, err)
		var got []string
		for _, s := range doc.Sections {
			got = append(got, s.Text)
		}
		assert.Equal(t, tt.want, got, "mode %d", tt.mode)
	}
}

func TestTopLevelHeaderOnlyExcluded(t *testing.T) {
	src := `<body><div id="page"><header>Site</header><article><header><h1>Title</h1></header><p>Text</p></article></div></body>`
	doc, err := ParseWithOptions(strings.NewReader(src), Options{Exclusion: ExclusionExplicit})
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Title", doc.Sections[0].Text)
	assert.Equal(t, "Text", doc.Sections[1].Text)
}

func TestSectionKindString(t *testing.T) {
	assert.Equal(t, "heading", SectionHeading.String())
	assert.Equal(t, "list-item", SectionListItem.String())
	assert.Equal(t, "paragraph", SectionKind(42).String())
}
