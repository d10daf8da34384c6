// Package schema builds the schema.org JSON-LD graph appended to every
// finished article. The output is a deterministic formatting of pipeline
// data; nothing here calls external services.
package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"seoforge/internal/core"
)

// QA is one FAQ question/answer pair.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Input collects everything the graph needs.
type Input struct {
	Title         string
	Description   string
	CanonicalURL  string
	SiteURL       string
	SiteName      string
	AuthorName    string
	DatePublished time.Time
	ImageURLs     []string
	FAQs          []QA
	Videos        []core.VideoResult
	HowToSteps    []string // Optional; emits a HowTo node when non-empty
	Breadcrumbs   []Crumb
}

// Crumb is one breadcrumb trail entry, ordered root first.
type Crumb struct {
	Name string
	URL  string
}

// Generate builds the @graph JSON-LD object for one article.
func Generate(in Input) map[string]any {
	orgID := in.SiteURL + "#organization"
	siteID := in.SiteURL + "#website"

	graph := []map[string]any{
		{
			"@type": "Organization",
			"@id":   orgID,
			"name":  in.SiteName,
			"url":   in.SiteURL,
		},
		{
			"@type":     "WebSite",
			"@id":       siteID,
			"name":      in.SiteName,
			"url":       in.SiteURL,
			"publisher": map[string]any{"@id": orgID},
		},
		articleNode(in, orgID),
	}

	if in.AuthorName != "" {
		graph = append(graph, map[string]any{
			"@type": "Person",
			"@id":   in.SiteURL + "#author",
			"name":  in.AuthorName,
		})
	}
	if len(in.Breadcrumbs) > 0 {
		graph = append(graph, breadcrumbNode(in))
	}
	if len(in.FAQs) > 0 {
		graph = append(graph, faqNode(in))
	}
	if len(in.HowToSteps) > 0 {
		graph = append(graph, howToNode(in))
	}
	for i, video := range in.Videos {
		graph = append(graph, map[string]any{
			"@type":      "VideoObject",
			"@id":        fmt.Sprintf("%s#video-%d", in.CanonicalURL, i+1),
			"name":       video.Title,
			"embedUrl":   "https://www.youtube.com/embed/" + video.ID,
			"contentUrl": video.URL,
		})
	}

	return map[string]any{
		"@context": "https://schema.org",
		"@graph":   graph,
	}
}

// RenderScript serializes the graph into the script tag appended to the
// article body.
func RenderScript(graph map[string]any) string {
	data, err := json.Marshal(graph)
	if err != nil {
		return ""
	}
	return `<script type="application/ld+json">` + string(data) + `</script>`
}

func articleNode(in Input, orgID string) map[string]any {
	node := map[string]any{
		"@type":            "Article",
		"@id":              in.CanonicalURL + "#article",
		"headline":         in.Title,
		"description":      in.Description,
		"mainEntityOfPage": in.CanonicalURL,
		"publisher":        map[string]any{"@id": orgID},
	}
	if in.AuthorName != "" {
		node["author"] = map[string]any{"@id": in.SiteURL + "#author"}
	}
	if !in.DatePublished.IsZero() {
		node["datePublished"] = in.DatePublished.UTC().Format(time.RFC3339)
	}
	if len(in.ImageURLs) > 0 {
		node["image"] = in.ImageURLs
	}
	return node
}

func breadcrumbNode(in Input) map[string]any {
	items := make([]map[string]any, 0, len(in.Breadcrumbs))
	for i, crumb := range in.Breadcrumbs {
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     crumb.Name,
			"item":     crumb.URL,
		})
	}
	return map[string]any{
		"@type":           "BreadcrumbList",
		"@id":             in.CanonicalURL + "#breadcrumbs",
		"itemListElement": items,
	}
}

func faqNode(in Input) map[string]any {
	questions := make([]map[string]any, 0, len(in.FAQs))
	for _, qa := range in.FAQs {
		questions = append(questions, map[string]any{
			"@type": "Question",
			"name":  qa.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  qa.Answer,
			},
		})
	}
	return map[string]any{
		"@type":      "FAQPage",
		"@id":        in.CanonicalURL + "#faq",
		"mainEntity": questions,
	}
}

func howToNode(in Input) map[string]any {
	steps := make([]map[string]any, 0, len(in.HowToSteps))
	for i, step := range in.HowToSteps {
		steps = append(steps, map[string]any{
			"@type":    "HowToStep",
			"position": i + 1,
			"text":     step,
		})
	}
	return map[string]any{
		"@type": "HowTo",
		"@id":   in.CanonicalURL + "#howto",
		"name":  in.Title,
		"step":  steps,
	}
}
