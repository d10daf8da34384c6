package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"seoforge/internal/core"
	"seoforge/internal/textrepair"
)

// researchPayload is the JSON shape the research stage asks the model
// for. Every field is optional on the wire; normalization fills gaps.
type researchPayload struct {
	Title            string               `json:"title"`
	Slug             string               `json:"slug"`
	MetaDescription  string               `json:"meta_description"`
	PrimaryKeyword   string               `json:"primary_keyword"`
	Strategy         string               `json:"strategy"`
	SemanticKeywords []core.KeywordMetric `json:"semantic_keywords"`
}

// outlineSection is one planned article section.
type outlineSection struct {
	Heading string `json:"heading"`
	Summary string `json:"summary"`
}

// outlinePayload is the JSON shape the outline stage asks for.
type outlinePayload struct {
	Sections     []outlineSection `json:"sections"`
	FAQQuestions []string         `json:"faq_questions"`
}

// parseResearch repairs and decodes a research response, then fills
// every missing field with a safe default derived from the item.
func parseResearch(raw, fallbackTitle string) (researchPayload, error) {
	var payload researchPayload
	cleaned, err := textrepair.ExtractJSON(raw)
	if err != nil {
		return payload, fmt.Errorf("research response was not JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return payload, fmt.Errorf("research response did not match expected shape: %w", err)
	}
	normalizeResearch(&payload, fallbackTitle)
	return payload, nil
}

func normalizeResearch(p *researchPayload, fallbackTitle string) {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = fallbackTitle
	}
	if strings.TrimSpace(p.PrimaryKeyword) == "" {
		p.PrimaryKeyword = strings.ToLower(fallbackTitle)
	}
	if strings.TrimSpace(p.Slug) == "" {
		p.Slug = Slugify(p.Title)
	} else {
		p.Slug = Slugify(p.Slug)
	}
	if strings.TrimSpace(p.MetaDescription) == "" {
		p.MetaDescription = p.Title
	}
	if len(p.MetaDescription) > 160 {
		p.MetaDescription = p.MetaDescription[:157] + "..."
	}
	if p.SemanticKeywords == nil {
		p.SemanticKeywords = []core.KeywordMetric{}
	}
	for i := range p.SemanticKeywords {
		k := &p.SemanticKeywords[i]
		k.Keyword = strings.TrimSpace(k.Keyword)
		k.DemandScore = clampScore(k.DemandScore)
		k.CompetitionScore = clampScore(k.CompetitionScore)
		k.RelevanceScore = clampScore(k.RelevanceScore)
		if k.SerpFeatures == nil {
			k.SerpFeatures = []string{}
		}
		switch k.Intent {
		case "informational", "commercial", "transactional", "navigational":
		default:
			k.Intent = "informational"
		}
	}
}

// parseOutline repairs and decodes an outline response. A response with
// no usable sections is an error; everything else gets defaults.
func parseOutline(raw, title string) (outlinePayload, error) {
	var payload outlinePayload
	cleaned, err := textrepair.ExtractJSON(raw)
	if err != nil {
		return payload, fmt.Errorf("outline response was not JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return payload, fmt.Errorf("outline response did not match expected shape: %w", err)
	}
	normalizeOutline(&payload, title)
	if len(payload.Sections) == 0 {
		return payload, fmt.Errorf("outline response contained no sections")
	}
	return payload, nil
}

func normalizeOutline(p *outlinePayload, title string) {
	kept := p.Sections[:0]
	for i := range p.Sections {
		s := p.Sections[i]
		s.Heading = strings.TrimSpace(s.Heading)
		s.Summary = strings.TrimSpace(s.Summary)
		if s.Heading == "" {
			continue
		}
		if s.Summary == "" {
			s.Summary = fmt.Sprintf("Cover %s as it relates to %s.", s.Heading, title)
		}
		kept = append(kept, s)
	}
	p.Sections = kept

	if p.FAQQuestions == nil {
		p.FAQQuestions = []string{}
	}
	questions := p.FAQQuestions[:0]
	for _, q := range p.FAQQuestions {
		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
		}
	}
	p.FAQQuestions = questions
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts arbitrary text into a URL slug.
func Slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = slugStripRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
