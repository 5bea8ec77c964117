// Package crawler defines the collaborator interfaces and shared types used by
// the extraction pipeline.
package crawler

import "time"

// Page is a fetched document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Text returns the document body as a string.
func (p Page) Text() string {
	return string(p.Body)
}
