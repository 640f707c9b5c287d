// Package extract reads counts and links out of the listing, collection and
// item pages served by the site. Every function distinguishes markup that
// is missing from markup that is present but unusable.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	ErrStructureNotFound = errors.New("expected page structure not found")
	ErrValueNotParseable = errors.New("value not parseable")
)

var rePagination = regexp.MustCompile(`Page\s+\d+\s+of\s+(\d+)`)

// PageCount returns the number of reader pages of an item, taken from the
// "Pages" row of the item's metadata block.
func PageCount(src string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStructureNotFound, err)
	}

	isPagesRow := func(_ int, s *goquery.Selection) bool {
		return hasTextNode(s, "Pages")
	}
	// innermost row only; wrappers sharing the class would match too
	row := doc.Find("div.row").FilterFunction(func(i int, s *goquery.Selection) bool {
		return isPagesRow(i, s) && s.Find("div.row").FilterFunction(isPagesRow).Length() == 0
	}).First()
	if row.Length() == 0 {
		return 0, fmt.Errorf("%w: no \"Pages\" row", ErrStructureNotFound)
	}

	value := row.Find("div.row-right").First()
	if value.Length() == 0 {
		return 0, fmt.Errorf("%w: \"Pages\" row has no value", ErrStructureNotFound)
	}

	fields := strings.Fields(value.Text())
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty page count", ErrValueNotParseable)
	}

	return positive(fields[0])
}

// CollectionPageCount returns <total> from the "Page <n> of <total>"
// pagination summary of a collection page.
func CollectionPageCount(src string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStructureNotFound, err)
	}

	meta := doc.Find("div.pagination-meta").First()
	if meta.Length() == 0 {
		return 0, fmt.Errorf("%w: no pagination summary", ErrStructureNotFound)
	}

	m := rePagination.FindStringSubmatch(meta.Text())
	if m == nil {
		return 0, fmt.Errorf("%w: pagination summary %q", ErrValueNotParseable, strings.TrimSpace(meta.Text()))
	}

	return positive(m[1])
}

// ItemLinks returns the item URLs of a listing page, one per book title
// block, resolved against baseURL. Blocks without a usable anchor are
// skipped.
func ItemLinks(src, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructureNotFound, err)
	}

	out := []string{}
	doc.Find("div.book-title").Each(func(_ int, div *goquery.Selection) {
		href, ok := div.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}

		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		out = append(out, resolve(baseURL, href))
	})

	return out, nil
}

func positive(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrValueNotParseable, tok)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: count %d", ErrValueNotParseable, n)
	}

	return n, nil
}

// hasTextNode reports whether any text node below s equals want exactly,
// ignoring surrounding whitespace.
func hasTextNode(s *goquery.Selection, want string) bool {
	for _, n := range s.Nodes {
		if findText(n, want) {
			return true
		}
	}

	return false
}

func findText(n *html.Node, want string) bool {
	if n.Type == html.TextNode && strings.TrimSpace(n.Data) == want {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if findText(c, want) {
			return true
		}
	}

	return false
}

func resolve(baseURL, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u == nil {
		return baseURL + raw
	}

	if u.IsAbs() {
		return u.String()
	}

	base, err := url.Parse(baseURL)
	if err != nil || base == nil {
		return baseURL + raw
	}

	return base.ResolveReference(u).String()
}
