package extract

import (
	"fmt"

	"github.com/JakeFAU/yoweb-scraper/internal/crawler"
)

// ParseError reports a missing structural anchor.
type ParseError struct {
	Page   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Page, e.Reason)
}

// Kind implements crawler.Kinder.
func (e *ParseError) Kind() string {
	return crawler.KindParse
}

func parseErr(page, format string, args ...any) error {
	return &ParseError{Page: page, Reason: fmt.Sprintf(format, args...)}
}
