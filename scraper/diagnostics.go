package scraper

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-rod/rod"
)

// DiagnosticCapture dumps page HTML and a screenshot when an extraction comes
// up empty, so selector drift can be diagnosed offline. Capture failures are
// logged and swallowed, they must never affect the scrape outcome.
type DiagnosticCapture struct {
	dir string
}

func NewDiagnosticCapture(dir string) *DiagnosticCapture {
	return &DiagnosticCapture{dir: dir}
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// sanitizeURL turns a URL into a filesystem-safe name fragment
func sanitizeURL(rawURL string) string {
	name := unsafeFileChars.ReplaceAllString(rawURL, "_")
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}

// Capture writes <url>_<reason>.html and <url>_<reason>.png into the debug
// directory. Best effort only.
func (d *DiagnosticCapture) Capture(page *rod.Page, url, reason string) {
	if page == nil {
		return
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		log.Printf("⚠️ Failed to create debug dir %s: %v", d.dir, err)
		return
	}

	base := fmt.Sprintf("%s_%s", sanitizeURL(url), reason)

	html, err := page.HTML()
	if err != nil {
		log.Printf("⚠️ Failed to capture HTML for %s: %v", url, err)
	} else {
		htmlPath := filepath.Join(d.dir, base+".html")
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
			log.Printf("⚠️ Failed to write %s: %v", htmlPath, err)
		}
	}

	shot, err := page.Screenshot(true, nil)
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot for %s: %v", url, err)
		return
	}
	pngPath := filepath.Join(d.dir, base+".png")
	if err := os.WriteFile(pngPath, shot, 0644); err != nil {
		log.Printf("⚠️ Failed to write %s: %v", pngPath, err)
	}
}
