// Package extraction turns a snapshot of a LinkedIn profile page into a
// CandidateProfile. Every field is extracted by an ordered cascade of
// strategies; a field that cannot be found is left empty.
package extraction

import (
	"errors"
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/dom"
)

// ErrNoMemberID is returned when no candidate identifier can be resolved
// from the page. It is the only condition that stops extraction.
var ErrNoMemberID = errors.New("no member id found on page")

// Page is a snapshot of a loaded profile page.
type Page struct {
	URL  string
	Root dom.Node
}

// NewPage parses html into a Page located at pageURL.
func NewPage(pageURL, html string) (*Page, error) {
	root, err := dom.ParseString(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", pageURL, err)
	}
	return &Page{URL: pageURL, Root: root}, nil
}

// emptyRoot stands in for pages that were captured without a document.
func emptyRoot() dom.Node {
	root, err := dom.ParseString("")
	if err != nil {
		panic(err)
	}
	return root
}
