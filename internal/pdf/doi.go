// Package pdf extracts DOIs from PDF files so entries the sanitizer flags
// as DOI-less can be filled in.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// maxPages limits the scan; the DOI is almost always on the first page.
const maxPages = 3

// ExtractDOI extracts a DOI from a PDF file. An empty result with a nil
// error means no DOI was found.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := FindDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// FindDOI returns the first DOI-shaped substring in text, with trailing
// punctuation that text extraction tends to glue on removed.
func FindDOI(text string) string {
	doi := doiPattern.FindString(text)
	if doi == "" {
		return ""
	}
	return strings.TrimRight(doi, ".,;)")
}
