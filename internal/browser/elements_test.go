package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<!doctype html>
<html>
<head><title>Search</title></head>
<body>
  <form>
    <input id="q" class="search-box" name="q" value="X">
    <input type="hidden" name="csrf">
    <button id="go" class="btn primary">  Search
       now </button>
    <button class="icon-only"><svg></svg></button>
    <button class="blank">   </button>
  </form>
  <a href="/about" class="nav">About us</a>
  <a href="https://other.example/x">External</a>
  <a href="/empty">  </a>
  <a class="no-href">Anchor only</a>
</body>
</html>`

func TestParseInteractiveElements_Filtering(t *testing.T) {
	elements, err := parseInteractiveElements(searchPage, "https://example.com/search?q=1")
	require.NoError(t, err)

	var inputs, buttons, links int
	for _, el := range elements {
		switch el.TagName {
		case "INPUT":
			inputs++
		case "BUTTON":
			buttons++
			assert.NotEmpty(t, el.Text, "button without text must be dropped")
		case "A":
			links++
			assert.NotEmpty(t, el.Text, "link without text must be dropped")
		}
	}

	assert.Equal(t, 2, inputs, "inputs are kept regardless of text")
	assert.Equal(t, 1, buttons)
	assert.Equal(t, 3, links)
}

func TestParseInteractiveElements_Fields(t *testing.T) {
	elements, err := parseInteractiveElements(searchPage, "https://example.com/search?q=1")
	require.NoError(t, err)
	require.Len(t, elements, 6)

	assert.Equal(t, "q", elements[0].TagID)
	assert.Equal(t, "search-box", elements[0].ClassName)
	assert.Empty(t, elements[0].Text)
	assert.Empty(t, elements[0].Href)

	assert.Equal(t, "go", elements[2].TagID)
	assert.Equal(t, "Search now", elements[2].Text)

	assert.Equal(t, "https://example.com/about", elements[3].Href)
	assert.Equal(t, "https://other.example/x", elements[4].Href)

	assert.Equal(t, "Anchor only", elements[5].Text)
	assert.Empty(t, elements[5].Href)
}

func TestParseInteractiveElements_BaseHref(t *testing.T) {
	html := `<html><head><base href="https://cdn.example/docs/"></head>
<body><a href="intro.html">Intro</a></body></html>`

	elements, err := parseInteractiveElements(html, "https://example.com/")
	require.NoError(t, err)
	require.Len(t, elements, 1)

	assert.Equal(t, "https://cdn.example/docs/intro.html", elements[0].Href)
}

func TestParseInteractiveElements_EmptyPage(t *testing.T) {
	elements, err := parseInteractiveElements("", "about:blank")
	require.NoError(t, err)

	assert.NotNil(t, elements)
	assert.Empty(t, elements)
}
