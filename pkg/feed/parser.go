package feed

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/feedpush/pkg/domain"
)

// Parser turns RSS/Atom/JSON feed documents into entries
type Parser struct {
	parser *gofeed.Parser
}

// NewParser creates a new feed parser
func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Parse reads a feed document and returns its entries in document order
func (p *Parser) Parse(r io.Reader) ([]domain.Entry, error) {
	feed, err := p.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]domain.Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entry := domain.Entry{
			Title: strings.TrimSpace(item.Title),
			Link:  itemLink(item),
		}

		// set id, fall back to link and then to feed and item titles
		switch {
		case item.GUID != "":
			entry.ID = item.GUID
		case entry.Link != "":
			entry.ID = entry.Link
		default:
			entry.ID = fmt.Sprintf("%s-%s", feed.Title, item.Title)
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

func itemLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, link := range item.Links {
		if link = strings.TrimSpace(link); link != "" {
			return link
		}
	}
	return ""
}
