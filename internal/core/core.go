package core

import "time"

// ContentKind classifies what kind of article a ContentItem produces.
type ContentKind string

const (
	KindPillar        ContentKind = "pillar"         // Long-form pillar page
	KindCluster       ContentKind = "cluster"        // Cluster article supporting a pillar
	KindStandard      ContentKind = "standard"       // Standalone article
	KindLinkOptimizer ContentKind = "link-optimizer" // Rewrite pass that only improves internal linking
)

// ContentStatus is the lifecycle state of a ContentItem.
type ContentStatus string

const (
	StatusIdle       ContentStatus = "idle"
	StatusGenerating ContentStatus = "generating"
	StatusDone       ContentStatus = "done"
	StatusError      ContentStatus = "error"
)

// ContentItem is the unit of work for the generation pipeline.
type ContentItem struct {
	ID            string            `json:"id"`                    // Unique identifier
	Title         string            `json:"title"`                 // Working title / target keyword
	Kind          ContentKind       `json:"kind"`                  // pillar, cluster, standard, link-optimizer
	Status        ContentStatus     `json:"status"`                // Lifecycle state
	StatusMessage string            `json:"status_message"`        // Human-readable stage or error text
	SourceURL     string            `json:"source_url,omitempty"`  // Set when rewriting an existing page
	SourceText    string            `json:"source_text,omitempty"` // Previously crawled text of SourceURL
	Analysis      *ContentAnalysis  `json:"analysis,omitempty"`    // Prior health analysis, if any
	Generated     *GeneratedContent `json:"generated,omitempty"`   // Attached once the pipeline completes
	DateAdded     time.Time         `json:"date_added"`            // When the item entered the plan
}

// GeneratedContent is the finished artifact produced by one pipeline run.
// After the finalize stage the Content field never contains unresolved
// link or image placeholders.
type GeneratedContent struct {
	Title            string            `json:"title"`             // Final article title
	Slug             string            `json:"slug"`              // URL slug
	MetaDescription  string            `json:"meta_description"`  // SEO meta description
	PrimaryKeyword   string            `json:"primary_keyword"`   // The keyword the article targets
	SemanticKeywords []KeywordMetric   `json:"semantic_keywords"` // Supporting keywords with scores
	Content          string            `json:"content"`           // Final HTML body
	Images           []ImageDescriptor `json:"images"`            // Image prompts and generated references
	Strategy         string            `json:"strategy"`          // Strategy notes from the research stage
	StructuredData   map[string]any    `json:"structured_data"`   // schema.org JSON-LD graph
	SocialCopy       string            `json:"social_copy"`       // Short promotional copy
	WordCount        int               `json:"word_count"`        // Measured body word count
	DateGenerated    time.Time         `json:"date_generated"`    // When the pipeline finished
	ModelUsed        string            `json:"model_used"`        // Completion model identifier
}

// KeywordMetric carries the research scores for one keyword.
// CompetitionScore is inverted: lower means easier to rank.
type KeywordMetric struct {
	Keyword          string   `json:"keyword"`
	DemandScore      int      `json:"demand_score"`      // 0-100
	CompetitionScore int      `json:"competition_score"` // 0-100, lower is better
	RelevanceScore   int      `json:"relevance_score"`   // 0-100
	SerpFeatures     []string `json:"serp_features"`     // Observed SERP features (snippet, PAA, video...)
	Intent           string   `json:"intent"`            // informational, commercial, transactional, navigational
}

// ImageDescriptor describes one image slot in the article body.
type ImageDescriptor struct {
	Prompt      string `json:"prompt"`               // Generation prompt
	AltText     string `json:"alt_text"`             // Accessibility / SEO alt text
	Placeholder string `json:"placeholder"`          // Token in the body this image replaces
	SourceURL   string `json:"source_url,omitempty"` // CMS URL once uploaded
	MediaID     int    `json:"media_id,omitempty"`   // CMS media identifier
}

// SitemapPage is a page discovered by the crawl subsystem. The pipeline
// treats these as read-only link targets and rewrite source material.
type SitemapPage struct {
	URL            string    `json:"url"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	CrawledText    string    `json:"crawled_text,omitempty"`
	HealthScore    int       `json:"health_score"`    // 0-100 content health
	UpdatePriority string    `json:"update_priority"` // high, medium, low
	Stale          bool      `json:"stale"`           // Older than the staleness window
	LastCrawled    time.Time `json:"last_crawled"`
}

// ContentAnalysis records a health analysis of an existing page.
type ContentAnalysis struct {
	URL             string    `json:"url"`
	HealthScore     int       `json:"health_score"`
	WordCount       int       `json:"word_count"`
	Readability     float64   `json:"readability"`
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
	DateAnalyzed    time.Time `json:"date_analyzed"`
}

// VideoResult is a candidate video for embedding, already reduced to its
// canonical identifier regardless of the URL shape it was found under.
type VideoResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SearchResults is the normalized payload from the search-results capability.
type SearchResults struct {
	Organic         []OrganicResult `json:"organic"`
	PeopleAlsoAsk   []string        `json:"people_also_ask"`
	RelatedSearches []string        `json:"related_searches"`
}

// OrganicResult is one organic entry from a SERP response.
type OrganicResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
	Rank    int    `json:"rank"`
}
