package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func profileHTML(slug, name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>%[2]s | LinkedIn</title>
  <link rel="canonical" href="https://www.linkedin.com/in/%[1]s/">
</head>
<body>
<main>
  <section class="pv-top-card">
    <h1 class="text-heading-xlarge">%[2]s</h1>
    <div class="text-body-medium break-words">Engineer at Example Co</div>
  </section>
</main>
</body>
</html>`, slug, name)
}

// writeProfile saves a minimal profile page and returns its path.
func writeProfile(t *testing.T, dir, slug, name string) string {
	t.Helper()
	path := filepath.Join(dir, slug+".html")
	require.NoError(t, os.WriteFile(path, []byte(profileHTML(slug, name)), 0o644))
	return path
}
