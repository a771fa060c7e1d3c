package edgar

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// archiveIndexURLTemplate is the EDGAR directory listing for one accession:
// an HTML table of every file in the submission.
const archiveIndexURLTemplate = "https://www.sec.gov/Archives/edgar/data/%d/%s/"

// PrimaryDocumentURL builds the canonical URL of a filing's primary document
// from the name the submissions feed advertises.
func PrimaryDocumentURL(cik, accession, document string) string {
	if document == "" {
		return ""
	}
	cikInt, err := strconv.Atoi(strings.TrimLeft(cik, "0"))
	if err != nil {
		return ""
	}
	noDash := strings.ReplaceAll(accession, "-", "")
	return fmt.Sprintf(archiveIndexURLTemplate, cikInt, noDash) + document
}

// ResolvePrimaryDocument scrapes the archive directory listing to find the
// filing's main HTML document when the submissions feed did not name one.
// Older filings predate the primaryDocument field, so this is the fallback
// path. The first non-index .htm/.html entry in the file table wins.
func (c *Client) ResolvePrimaryDocument(ctx context.Context, cik, accession string) (string, error) {
	cikInt, err := strconv.Atoi(strings.TrimLeft(cik, "0"))
	if err != nil {
		return "", fmt.Errorf("invalid cik %q: %w", cik, err)
	}
	noDash := strings.ReplaceAll(accession, "-", "")
	indexURL := fmt.Sprintf(archiveIndexURLTemplate, cikInt, noDash)

	body, err := c.GetRaw(ctx, indexURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch archive index for %s: %w", accession, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse archive index for %s: %w", accession, err)
	}

	var found string
	doc.Find("table a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		name := strings.ToLower(href)
		if !strings.HasSuffix(name, ".htm") && !strings.HasSuffix(name, ".html") {
			return true
		}
		// "-index" pages and XBRL viewer stubs (R1.htm etc.) are not the
		// filing body.
		base := name[strings.LastIndex(name, "/")+1:]
		if strings.Contains(base, "-index") || isViewerStub(base) {
			return true
		}
		if strings.HasPrefix(href, "/") {
			found = "https://www.sec.gov" + href
		} else {
			found = indexURL + href
		}
		return false
	})

	if found == "" {
		return "", fmt.Errorf("no primary document in archive index for %s", accession)
	}
	return found, nil
}

func isViewerStub(name string) bool {
	if len(name) < 2 || name[0] != 'r' {
		return false
	}
	dot := strings.IndexByte(name, '.')
	if dot <= 1 {
		return false
	}
	for i := 1; i < dot; i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}
