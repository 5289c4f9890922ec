package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/feeds"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// windowsReservedNames are device names that must never become a path
// component on a checkout of the generated site.
var windowsReservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// isSafeRedirectPath rejects spellings that could escape the output tree or
// break on other filesystems. Unsafe redirects are skipped, not fatal.
func isSafeRedirectPath(clean string) bool {
	if clean == "" || strings.Contains(clean, "..") || strings.Contains(clean, ":") {
		return false
	}
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, `\`) {
		return false
	}
	for _, component := range strings.Split(clean, "/") {
		name := component
		if dot := strings.IndexByte(component, '.'); dot >= 0 {
			name = component[:dot]
		}
		if windowsReservedNames[strings.ToLower(name)] {
			return false
		}
	}
	for i := 0; i < len(clean); i++ {
		if clean[i] < 0x20 {
			return false
		}
	}
	return true
}

func redirectHTML(target string) string {
	url := feeds.Escape(target)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta http-equiv="refresh" content="0; url=%[1]s">
<link rel="canonical" href="%[1]s">
<title>Redirecting...</title>
</head>
<body>
<p>Redirecting to <a href="%[1]s">%[1]s</a></p>
</body>
</html>
`, url)
}

// WriteRedirects writes a stub page for every redirect in the model. A stub
// never overwrites an existing output page.
func WriteRedirects(w *Writer, m *site.Model) error {
	baseURL := strings.TrimRight(m.Config.BaseURL, "/")
	for _, r := range m.Redirects {
		clean := strings.Trim(r.From, "/")
		if !isSafeRedirectPath(clean) {
			continue
		}
		stub := clean + "/index.html"
		if w.Exists(stub) {
			continue
		}
		if err := w.WriteFile(stub, []byte(redirectHTML(baseURL+r.To))); err != nil {
			return err
		}
	}
	return nil
}
