package browser

import (
	"browser-pilot/internal/entity"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseInteractiveElements builds the element index from a DOM snapshot.
// Inputs come first, then buttons, then links, each in document order.
// Buttons and links without visible text are dropped.
func parseInteractiveElements(html, pageURL string) ([]entity.InteractiveElement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	base := documentBase(doc, pageURL)

	elements := make([]entity.InteractiveElement, 0)

	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, elementFrom(s))
	})

	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		el := elementFrom(s)
		if el.Text == "" {
			return
		}
		elements = append(elements, el)
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		el := elementFrom(s)
		if el.Text == "" {
			return
		}
		if href, ok := s.Attr("href"); ok {
			el.Href = resolveHref(base, href)
		}
		elements = append(elements, el)
	})

	return elements, nil
}

func elementFrom(s *goquery.Selection) entity.InteractiveElement {
	id, _ := s.Attr("id")
	class, _ := s.Attr("class")

	return entity.InteractiveElement{
		TagID:     id,
		TagName:   strings.ToUpper(goquery.NodeName(s)),
		ClassName: class,
		Text:      collapseSpace(s.Text()),
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// documentBase honours a <base href> element the same way the browser does.
func documentBase(doc *goquery.Document, pageURL string) *url.URL {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		ref, err := url.Parse(strings.TrimSpace(href))
		if err == nil {
			if base != nil {
				return base.ResolveReference(ref)
			}
			return ref
		}
	}

	return base
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
