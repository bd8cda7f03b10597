package scraper

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"statuspulse/models"
)

var errNoStatusInHTML = errors.New("no recognizable status in HTML page")

// Statuspage renders the overall state as a class on .page-status.
var pageStatusClasses = map[string]models.Level{
	"status-none":        models.Operational,
	"status-minor":       models.Degraded,
	"status-maintenance": models.Degraded,
	"status-major":       models.PartialOutage,
	"status-critical":    models.MajorOutage,
}

// Ordered from most to least severe so a page mentioning several states
// reports the worst one.
var statusPhrases = []struct {
	phrase string
	level  models.Level
}{
	{"major outage", models.MajorOutage},
	{"partial outage", models.PartialOutage},
	{"degraded performance", models.Degraded},
	{"under maintenance", models.Degraded},
	{"all systems operational", models.Operational},
	{"fully operational", models.Operational},
}

// parseStatusHTML applies DOM heuristics to a rendered status page.
func parseStatusHTML(body []byte) (models.Level, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.Unknown, "", err
	}

	if sel := doc.Find(".page-status").First(); sel.Length() > 0 {
		for class, level := range pageStatusClasses {
			if sel.HasClass(class) {
				return level, strings.TrimSpace(sel.Find(".status").Text()), nil
			}
		}
	}

	var texts []string
	doc.Find(".page-status, .status, [data-testid*='status'], [class*='status'], h1, h2").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			texts = append(texts, t)
		}
	})
	if level, msg, ok := matchPhrase(texts); ok {
		return level, msg, nil
	}

	// Last resort: the whole page body.
	if level, msg, ok := matchPhrase([]string{doc.Find("body").Text()}); ok {
		return level, msg, nil
	}
	return models.Unknown, "", errNoStatusInHTML
}

func matchPhrase(texts []string) (models.Level, string, bool) {
	for _, p := range statusPhrases {
		for _, t := range texts {
			if strings.Contains(strings.ToLower(t), p.phrase) {
				return p.level, titleCase(p.phrase), true
			}
		}
	}
	return models.Unknown, "", false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
