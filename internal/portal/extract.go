package portal

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"timesheetbot/internal/attendance"
)

// ParseTable reads an HTML document or fragment and extracts the rows of the first table
// carrying class. Rows are every tr below the table in document order; cells are every td below
// the row, as whitespace-normalised text. Rows without any non-empty cell are dropped.
func ParseTable(r io.Reader, class string) ([]attendance.Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClass(n, class)
	})
	if table == nil {
		return nil, fmt.Errorf("%w: table.%s", ErrTableMissing, class)
	}

	var rows []attendance.Row
	eachDescendant(table, func(n *html.Node) {
		if n.DataAtom != atom.Tr {
			return
		}
		var row attendance.Row
		eachDescendant(n, func(c *html.Node) {
			if c.DataAtom == atom.Td {
				row = append(row, cellText(c))
			}
		})
		if anyNonEmpty(row) {
			rows = append(rows, row)
		}
	})
	return rows, nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// eachDescendant visits element descendants of n (not n itself) in document order.
func eachDescendant(n *html.Node, visit func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			visit(c)
		}
		eachDescendant(c, visit)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}

// cellText approximates the rendered text of a cell. Script, style, template and elements hidden
// inline (the hidden attribute, display:none or visibility:hidden in style) are dropped. Rules
// from stylesheets are not evaluated, so text hidden only by a class is kept.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Template):
			return
		case n.Type == html.ElementNode && isHidden(n):
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	// strings.Fields also splits on U+00A0, which is what &nbsp; decodes to.
	return strings.Join(strings.Fields(b.String()), " ")
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		switch a.Key {
		case "hidden":
			return true
		case "style":
			decl := strings.ToLower(strings.Join(strings.Fields(a.Val), ""))
			if strings.Contains(decl, "display:none") || strings.Contains(decl, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func anyNonEmpty(row attendance.Row) bool {
	for _, c := range row {
		if c != "" {
			return true
		}
	}
	return false
}
