package event

import (
	"fmt"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ContentExtractor turns a markup description into plain text.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}
