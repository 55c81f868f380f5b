package extraction

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-tracker/internal/dom"
)

func parseHTML(t *testing.T, html string) dom.Node {
	t.Helper()
	root, err := dom.ParseString(html)
	require.NoError(t, err)
	return root
}

func loadPage(t *testing.T, pageURL, fixture string) *Page {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	page, err := NewPage(pageURL, string(data))
	require.NoError(t, err)
	return page
}

// experienceHTML wraps list items in an experience section.
func experienceHTML(items ...string) string {
	return `<html><body><section><div id="experience"></div><h2>Experience</h2><div><ul>` +
		strings.Join(items, "") +
		`</ul></div></section></body></html>`
}

// singleRole renders a single-role experience entry.
func singleRole(title, subtitle, caption string) string {
	return fmt.Sprintf(`<li class="artdeco-list__item"><div class="pvs-entity">`+
		`<div class="t-bold"><span aria-hidden="true">%s</span></div> `+
		`<span class="t-14 t-normal"><span aria-hidden="true">%s</span></span> `+
		`<span class="t-14 t-normal t-black--light"><span aria-hidden="true">%s</span></span>`+
		`</div></li>`, title, subtitle, caption)
}

// multiRole renders an employer entry with nested roles. rollup may be empty.
func multiRole(company, rollup string, roles ...[2]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<li class="artdeco-list__item"><div class="pvs-entity">`+
		`<a href="https://www.linkedin.com/company/42/"><div class="t-bold"><span aria-hidden="true">%s</span></div>`+
		`<span class="t-14 t-normal"><span aria-hidden="true">%s</span></span></a>`+
		`<div class="pvs-entity__sub-components"><ul>`, company, rollup)
	for _, r := range roles {
		fmt.Fprintf(&b, `<li><div class="pvs-entity"><div class="t-bold"><span aria-hidden="true">%s</span></div>`+
			`<span class="t-14 t-normal t-black--light"><span aria-hidden="true">%s</span></span></div></li>`, r[0], r[1])
	}
	b.WriteString(`</ul></div></div></li>`)
	return b.String()
}

func sectionOf(t *testing.T, html string) dom.Node {
	t.Helper()
	root := parseHTML(t, html)
	section := ExperienceSection(&Page{URL: "https://www.linkedin.com/in/someone/", Root: root})
	require.NotNil(t, section)
	return section
}
