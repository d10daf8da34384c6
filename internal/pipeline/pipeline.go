// Package pipeline orchestrates the generation of one article: research,
// outline, section writing, FAQ, reference discovery, imagery, and a
// finalize pass that enforces link and quality invariants before the
// structured data is attached. Stages run strictly in order for one item;
// parallelism across items belongs to the batch runner.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/batch"
	"seoforge/internal/cache"
	"seoforge/internal/core"
	"seoforge/internal/links"
	"seoforge/internal/llm"
	"seoforge/internal/logger"
	"seoforge/internal/quality"
	"seoforge/internal/retry"
	"seoforge/internal/schema"
	"seoforge/internal/search"
	"seoforge/internal/textrepair"
	"seoforge/internal/wordpress"
)

// Completer is the text-generation capability the pipeline depends on.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userPrompt string, opts llm.CompleteOptions) (string, error)
	ModelName() string
}

// ImageGenerator produces raw image bytes for a prompt.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, opts llm.ImageOptions) ([][]byte, error)
}

// Publisher is the CMS capability used by the publish operation.
type Publisher interface {
	CreateOrUpdatePost(ctx context.Context, req wordpress.PostRequest) (*wordpress.Post, error)
	UploadMedia(ctx context.Context, data []byte, mimeType, filename string) (*wordpress.Media, error)
}

// Options tunes one pipeline instance.
type Options struct {
	SiteURL          string // Base URL internal links resolve against
	SiteName         string // Publisher name for structured data
	AuthorName       string // Optional author for structured data
	MinInternalLinks int    // Link quota; defaults to links.DefaultMinLinks
	MaxVideos        int    // Unique videos per article; defaults to quality.DefaultMaxVideos
	ImageCount       int    // Images generated per article
	SectionsMin      int    // Outline sizing hints
	SectionsMax      int
	FAQCount         int
	MinRelevance     int      // Reference discovery score cutoff
	MaxReferences    int      // Reference links per article
	SpamDomains      []string // Domains never cited as references
	Retry            retry.Config
	PostStatus       string // draft or publish
}

func (o *Options) applyDefaults() {
	if o.MinInternalLinks <= 0 {
		o.MinInternalLinks = links.DefaultMinLinks
	}
	if o.MaxVideos <= 0 {
		o.MaxVideos = quality.DefaultMaxVideos
	}
	if o.ImageCount <= 0 {
		o.ImageCount = 3
	}
	if o.SectionsMin <= 0 {
		o.SectionsMin = 6
	}
	if o.SectionsMax < o.SectionsMin {
		o.SectionsMax = o.SectionsMin + 4
	}
	if o.FAQCount <= 0 {
		o.FAQCount = 8
	}
	if o.MinRelevance <= 0 {
		o.MinRelevance = 5
	}
	if o.MaxReferences <= 0 {
		o.MaxReferences = 5
	}
	if o.SpamDomains == nil {
		o.SpamDomains = defaultSpamDomains()
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = retry.DefaultConfig()
	}
	if o.PostStatus == "" {
		o.PostStatus = "draft"
	}
}

// defaultSpamDomains lists domains never cited as references when no
// policy is configured. Matches the config default.
func defaultSpamDomains() []string {
	return []string{"pinterest.com", "quora.com", "reddit.com", "facebook.com"}
}

// StatusFunc receives every item status transition.
type StatusFunc func(item *core.ContentItem)

// Pipeline generates articles. One instance serves one session: the
// response cache and the used-video set are scoped to it.
type Pipeline struct {
	completer Completer
	images    ImageGenerator
	searcher  search.Provider
	publisher Publisher // nil when publishing is not configured
	cache     *cache.ResponseCache
	pages     []core.SitemapPage
	opts      Options
	onStatus  StatusFunc

	mu         sync.Mutex
	stopAll    bool
	stopItems  map[string]bool
	usedVideos map[string]bool
}

// New creates a pipeline. pages is the crawled site inventory used for
// internal linking; publisher may be nil.
func New(completer Completer, images ImageGenerator, searcher search.Provider, publisher Publisher, responseCache *cache.ResponseCache, pages []core.SitemapPage, opts Options, onStatus StatusFunc) *Pipeline {
	opts.applyDefaults()
	if responseCache == nil {
		responseCache = cache.New(cache.DefaultTTL)
	}
	if onStatus == nil {
		onStatus = func(*core.ContentItem) {}
	}
	return &Pipeline{
		completer:  completer,
		images:     images,
		searcher:   searcher,
		publisher:  publisher,
		cache:      responseCache,
		pages:      pages,
		opts:       opts,
		onStatus:   onStatus,
		stopItems:  make(map[string]bool),
		usedVideos: make(map[string]bool),
	}
}

// NewItem creates a ContentItem ready for generation.
func NewItem(title string, kind core.ContentKind) *core.ContentItem {
	return &core.ContentItem{
		ID:        uuid.NewString(),
		Title:     title,
		Kind:      kind,
		Status:    core.StatusIdle,
		DateAdded: time.Now().UTC(),
	}
}

// Stop requests cancellation of one item. The request is honored at the
// next stage boundary or inner loop iteration.
func (p *Pipeline) Stop(itemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopItems[itemID] = true
}

// StopAll requests cancellation of every in-flight and queued item.
func (p *Pipeline) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopAll = true
}

// ResetStops clears all cancellation requests, e.g. before a new batch.
func (p *Pipeline) ResetStops() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopAll = false
	p.stopItems = make(map[string]bool)
}

func (p *Pipeline) stopRequested(itemID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopAll || p.stopItems[itemID]
}

func (p *Pipeline) stopAllRequested() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopAll
}

// errStopped signals a cooperative stop; the item goes back to idle.
var errStopped = errors.New("stopped by user")

// GenerateOne runs the full stage sequence for one item. Failures mark
// the item and return the error; siblings in a batch are unaffected.
func (p *Pipeline) GenerateOne(ctx context.Context, item *core.ContentItem) error {
	err := p.generate(ctx, item)
	switch {
	case err == nil:
		item.Status = core.StatusDone
		item.StatusMessage = "done"
	case errors.Is(err, errStopped):
		item.Status = core.StatusIdle
		item.StatusMessage = "stopped by user"
	default:
		// A short-content failure keeps the deficient body attached for
		// manual review; every other failure discards partial content.
		var short *quality.ShortContentError
		if errors.As(err, &short) {
			item.Generated = p.deficientContent(item, short)
		} else {
			item.Generated = nil
		}
		item.Status = core.StatusError
		item.StatusMessage = truncateError(err)
		logger.Error("item generation failed", err, map[string]any{"item": item.ID, "title": item.Title})
	}
	p.onStatus(item)
	if err != nil && !errors.Is(err, errStopped) {
		return err
	}
	return nil
}

func (p *Pipeline) generate(ctx context.Context, item *core.ContentItem) error {
	if err := p.checkpoint(ctx, item); err != nil {
		return err
	}

	if item.Kind == core.KindLinkOptimizer {
		return p.optimizeLinks(item)
	}

	p.setStage(item, "research")
	research, serp, err := p.stageResearch(ctx, item)
	if err != nil {
		return err
	}

	p.setStage(item, "outline")
	outline, err := p.stageOutline(ctx, item, research, serp)
	if err != nil {
		return err
	}

	body, err := p.stageSections(ctx, item, research, outline)
	if err != nil {
		return err
	}

	faqs, faqHTML, err := p.stageFAQ(ctx, item, research, outline)
	if err != nil {
		return err
	}

	p.setStage(item, "references")
	refsHTML := p.stageReferences(ctx, research, serp)

	videos := p.pickVideos(serp)

	imgs, imageURLs, err := p.stageImages(ctx, item, research, outline)
	if err != nil {
		return err
	}

	p.setStage(item, "finalize")
	social := p.stageSocial(ctx, research)
	content := body + faqHTML + refsHTML + videoEmbeds(videos)
	return p.finalize(item, research, content, faqs, videos, imgs, imageURLs, social)
}

// checkpoint is consulted between stages and inner loop iterations.
func (p *Pipeline) checkpoint(ctx context.Context, item *core.ContentItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.stopRequested(item.ID) {
		return errStopped
	}
	return nil
}

func (p *Pipeline) setStage(item *core.ContentItem, stage string) {
	item.Status = core.StatusGenerating
	item.StatusMessage = "generating: " + stage
	p.onStatus(item)
	logger.Debug("stage transition", map[string]any{"item": item.ID, "stage": stage})
}

// completeCached runs one completion through the retrying invoker,
// consulting the response cache first when a cache stage name is given.
func (p *Pipeline) completeCached(ctx context.Context, cacheStage, cacheInput, system, user string, opts llm.CompleteOptions) (string, error) {
	var key string
	if cacheStage != "" {
		key = cache.Key(cacheStage, cacheInput)
		if v, ok := p.cache.Get(key); ok {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
	}

	var out string
	err := retry.Do(ctx, p.opts.Retry, func(ctx context.Context) error {
		text, err := p.completer.Complete(ctx, system, user, opts)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	if key != "" {
		p.cache.Set(key, out)
	}
	return out, nil
}

func (p *Pipeline) searchCached(ctx context.Context, query string) (*core.SearchResults, error) {
	key := cache.Key("serp", query)
	if v, ok := p.cache.Get(key); ok {
		if r, ok := v.(*core.SearchResults); ok {
			return r, nil
		}
	}

	var results *core.SearchResults
	err := retry.Do(ctx, p.opts.Retry, func(ctx context.Context) error {
		r, err := p.searcher.Search(ctx, query, search.Config{MaxResults: 10})
		if err != nil {
			return err
		}
		results = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, results)
	return results, nil
}

func (p *Pipeline) stageResearch(ctx context.Context, item *core.ContentItem) (researchPayload, *core.SearchResults, error) {
	serp, err := p.searchCached(ctx, item.Title)
	if err != nil {
		// Research degrades without SERP context rather than failing the
		// item; reference discovery and videos will be empty.
		logger.Warn("search unavailable, continuing without SERP context", map[string]any{"item": item.ID, "error": err.Error()})
		serp = &core.SearchResults{}
	}

	prompt := fmt.Sprintf(researchPrompt, item.Title, p.opts.SiteURL, formatSERP(serp))
	raw, err := p.completeCached(ctx, "research", item.Title, researchSystem, prompt, llm.CompleteOptions{JSONMode: true, Grounding: true})
	if err != nil {
		return researchPayload{}, nil, fmt.Errorf("research stage: %w", err)
	}

	payload, err := parseResearch(raw, item.Title)
	if err != nil {
		return researchPayload{}, nil, fmt.Errorf("research stage: %w", err)
	}
	return payload, serp, nil
}

func (p *Pipeline) stageOutline(ctx context.Context, item *core.ContentItem, research researchPayload, serp *core.SearchResults) (outlinePayload, error) {
	sectionCount := p.opts.SectionsMax
	if item.Kind == core.KindPillar {
		sectionCount += 4
	}
	prompt := fmt.Sprintf(outlinePrompt,
		research.Title, research.PrimaryKeyword, research.Strategy,
		strings.Join(serp.PeopleAlsoAsk, "; "),
		p.opts.SectionsMin, sectionCount, p.opts.FAQCount)

	raw, err := p.completeCached(ctx, "outline", research.Title, outlineSystem, prompt, llm.CompleteOptions{JSONMode: true})
	if err != nil {
		return outlinePayload{}, fmt.Errorf("outline stage: %w", err)
	}

	payload, err := parseOutline(raw, research.Title)
	if err != nil {
		return outlinePayload{}, fmt.Errorf("outline stage: %w", err)
	}
	return payload, nil
}

func (p *Pipeline) stageSections(ctx context.Context, item *core.ContentItem, research researchPayload, outline outlinePayload) (string, error) {
	keywords := make([]string, 0, len(research.SemanticKeywords))
	for _, k := range research.SemanticKeywords {
		keywords = append(keywords, k.Keyword)
	}
	pageList := formatPageTitles(p.pages)

	var sb strings.Builder
	total := len(outline.Sections)
	for i, section := range outline.Sections {
		if err := p.checkpoint(ctx, item); err != nil {
			return "", err
		}
		p.setStage(item, fmt.Sprintf("section %d/%d", i+1, total))

		prompt := fmt.Sprintf(sectionPrompt,
			section.Heading, research.Title, research.PrimaryKeyword,
			section.Summary, strings.Join(keywords, ", "), pageList)
		raw, err := p.completeCached(ctx, "", "", sectionSystem, prompt, llm.CompleteOptions{})
		if err != nil {
			return "", fmt.Errorf("section %q: %w", section.Heading, err)
		}
		sb.WriteString(textrepair.SanitizeHTMLResponse(raw))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (p *Pipeline) stageFAQ(ctx context.Context, item *core.ContentItem, research researchPayload, outline outlinePayload) ([]schema.QA, string, error) {
	questions := outline.FAQQuestions
	if len(questions) > p.opts.FAQCount {
		questions = questions[:p.opts.FAQCount]
	}
	if len(questions) == 0 {
		return nil, "", nil
	}

	var sb strings.Builder
	sb.WriteString("<h2>Frequently Asked Questions</h2>\n")
	faqs := make([]schema.QA, 0, len(questions))
	for i, question := range questions {
		if err := p.checkpoint(ctx, item); err != nil {
			return nil, "", err
		}
		p.setStage(item, fmt.Sprintf("faq %d/%d", i+1, len(questions)))

		prompt := fmt.Sprintf(faqPrompt, research.PrimaryKeyword, question)
		raw, err := p.completeCached(ctx, "", "", faqSystem, prompt, llm.CompleteOptions{})
		if err != nil {
			return nil, "", fmt.Errorf("faq %q: %w", question, err)
		}
		answer := textrepair.SanitizeHTMLResponse(raw)
		faqs = append(faqs, schema.QA{Question: question, Answer: quality.StripTags(answer)})
		sb.WriteString(fmt.Sprintf("<h3>%s</h3>\n%s\n", question, answer))
	}
	return faqs, sb.String(), nil
}

// stageReferences selects citable external links from the SERP results.
// Reference discovery is best-effort: no results means no section.
func (p *Pipeline) stageReferences(ctx context.Context, research researchPayload, serp *core.SearchResults) string {
	if serp == nil || len(serp.Organic) == 0 {
		return ""
	}

	type scored struct {
		result core.OrganicResult
		score  int
	}
	var picked []scored
	for _, r := range serp.Organic {
		if p.isSpamDomain(r.Domain) || p.isOwnDomain(r.Domain) {
			continue
		}
		s := referenceScore(research.PrimaryKeyword, r)
		if s >= p.opts.MinRelevance {
			picked = append(picked, scored{result: r, score: s})
		}
		if len(picked) >= p.opts.MaxReferences {
			break
		}
	}
	if len(picked) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<h2>References</h2>\n<ul>\n")
	for _, s := range picked {
		sb.WriteString(fmt.Sprintf("<li><a href=%q rel=\"nofollow noopener\" target=\"_blank\">%s</a></li>\n", s.result.URL, s.result.Title))
	}
	sb.WriteString("</ul>\n")
	return sb.String()
}

// referenceScore rates how citable a result is for the keyword: 3 points
// per keyword term in the title, 1 per term in the snippet, 2 for a
// top-three ranking.
func referenceScore(keyword string, r core.OrganicResult) int {
	title := strings.ToLower(r.Title)
	snippet := strings.ToLower(r.Snippet)
	score := 0
	for _, term := range strings.Fields(strings.ToLower(keyword)) {
		if strings.Contains(title, term) {
			score += 3
		}
		if strings.Contains(snippet, term) {
			score++
		}
	}
	if r.Rank > 0 && r.Rank <= 3 {
		score += 2
	}
	return score
}

func (p *Pipeline) isSpamDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, spam := range p.opts.SpamDomains {
		if domain == spam || strings.HasSuffix(domain, "."+spam) {
			return true
		}
	}
	return false
}

func (p *Pipeline) isOwnDomain(domain string) bool {
	site := strings.TrimPrefix(strings.TrimPrefix(p.opts.SiteURL, "https://"), "http://")
	site = strings.TrimPrefix(strings.SplitN(site, "/", 2)[0], "www.")
	return site != "" && strings.TrimPrefix(domain, "www.") == site
}

// pickVideos selects videos from SERP results that have not been embedded
// elsewhere in this session. The used set is shared across items.
func (p *Pipeline) pickVideos(serp *core.SearchResults) []core.VideoResult {
	if serp == nil {
		return nil
	}
	var candidates []core.VideoResult
	for _, r := range serp.Organic {
		id := quality.ExtractVideoID(r.URL)
		if id == "" {
			continue
		}
		candidates = append(candidates, core.VideoResult{ID: id, Title: r.Title, URL: r.URL})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var fresh []core.VideoResult
	for _, c := range candidates {
		if !p.usedVideos[c.ID] {
			fresh = append(fresh, c)
		}
	}
	selected := quality.SelectUniqueVideos(fresh, p.opts.MaxVideos)
	for _, v := range selected {
		p.usedVideos[v.ID] = true
	}
	return selected
}

func videoEmbeds(videos []core.VideoResult) string {
	var sb strings.Builder
	for _, v := range videos {
		sb.WriteString(quality.VideoEmbed(v.ID, v.Title))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (p *Pipeline) stageImages(ctx context.Context, item *core.ContentItem, research researchPayload, outline outlinePayload) ([]core.ImageDescriptor, []string, error) {
	if p.images == nil || p.opts.ImageCount == 0 {
		return nil, nil, nil
	}

	count := p.opts.ImageCount
	if count > len(outline.Sections) {
		count = len(outline.Sections)
	}

	var descriptors []core.ImageDescriptor
	var urls []string
	for i := 0; i < count; i++ {
		if err := p.checkpoint(ctx, item); err != nil {
			return nil, nil, err
		}
		p.setStage(item, fmt.Sprintf("image %d/%d", i+1, count))

		heading := outline.Sections[i].Heading
		promptReq := fmt.Sprintf(imagePromptTemplate, heading, research.Title)
		imagePrompt, err := p.completeCached(ctx, "", "", imagePromptSystem, promptReq, llm.CompleteOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("image prompt %d: %w", i+1, err)
		}
		imagePrompt = strings.TrimSpace(imagePrompt)

		desc := core.ImageDescriptor{
			Prompt:  imagePrompt,
			AltText: fmt.Sprintf("%s - %s", research.Title, heading),
		}

		var data [][]byte
		genErr := retry.Do(ctx, p.opts.Retry, func(ctx context.Context) error {
			d, err := p.images.GenerateImages(ctx, imagePrompt, llm.ImageOptions{Count: 1, AspectRatio: "16:9"})
			if err != nil {
				return err
			}
			data = d
			return nil
		})
		if genErr != nil {
			// Imagery is enhancement, not substance. Keep the descriptor
			// so the prompt survives for a manual retry.
			logger.Warn("image generation failed", map[string]any{"item": item.ID, "error": genErr.Error()})
			descriptors = append(descriptors, desc)
			continue
		}

		if p.publisher != nil && len(data) > 0 {
			filename := fmt.Sprintf("%s-%s.png", research.Slug, uuid.NewString()[:8])
			media, upErr := p.publisher.UploadMedia(ctx, data[0], "image/png", filename)
			if upErr != nil {
				logger.Warn("media upload failed", map[string]any{"item": item.ID, "error": upErr.Error()})
			} else {
				desc.SourceURL = media.SourceURL
				desc.MediaID = media.ID
				urls = append(urls, media.SourceURL)
			}
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, urls, nil
}

// stageSocial produces short promotional copy. Failures degrade to an
// empty field rather than failing the item.
func (p *Pipeline) stageSocial(ctx context.Context, research researchPayload) string {
	prompt := fmt.Sprintf(socialPrompt, research.Title, research.MetaDescription)
	copyText, err := p.completeCached(ctx, "", "", socialSystem, prompt, llm.CompleteOptions{})
	if err != nil {
		logger.Warn("social copy generation failed", map[string]any{"error": err.Error()})
		return ""
	}
	return strings.TrimSpace(copyText)
}

// finalize applies the fixed post-processing order. Each step consumes
// the previous step's output; reordering breaks the link invariants.
func (p *Pipeline) finalize(item *core.ContentItem, research researchPayload, content string, faqs []schema.QA, videos []core.VideoResult, imgs []core.ImageDescriptor, imageURLs []string, social string) error {
	content = links.SanitizeBrokenPlaceholders(content)
	content = links.ValidateAndRepairInternalLinks(content, p.pages)
	content = links.EnforceInternalLinkQuota(content, p.pages, p.opts.MinInternalLinks)
	content = links.ProcessInternalLinks(content, p.pages)
	// Final sweep: nothing that still looks like a placeholder may reach
	// the published body.
	content = links.SanitizeBrokenPlaceholders(content)
	content = quality.RepairDuplicateVideos(content, videos)

	if err := quality.EnforceWordCount(content, quality.MinWordsFor(item.Kind)); err != nil {
		return err
	}

	wordCount := quality.CountWords(content)
	readability := quality.AnalyzeReadability(content)
	human := quality.ScoreHumanWriting(content)
	logger.Info("quality report", map[string]any{
		"item":        item.ID,
		"words":       wordCount,
		"readability": readability.Score,
		"human_score": human.Score,
	})

	canonical := strings.TrimRight(p.opts.SiteURL, "/") + "/" + research.Slug
	graph := schema.Generate(schema.Input{
		Title:         research.Title,
		Description:   research.MetaDescription,
		CanonicalURL:  canonical,
		SiteURL:       p.opts.SiteURL,
		SiteName:      p.opts.SiteName,
		AuthorName:    p.opts.AuthorName,
		DatePublished: time.Now().UTC(),
		ImageURLs:     imageURLs,
		FAQs:          faqs,
		Videos:        videos,
		Breadcrumbs: []schema.Crumb{
			{Name: "Home", URL: p.opts.SiteURL},
			{Name: research.Title, URL: canonical},
		},
	})
	content += "\n" + schema.RenderScript(graph)

	item.Generated = &core.GeneratedContent{
		Title:            research.Title,
		Slug:             research.Slug,
		MetaDescription:  research.MetaDescription,
		PrimaryKeyword:   research.PrimaryKeyword,
		SemanticKeywords: research.SemanticKeywords,
		Content:          content,
		Images:           imgs,
		Strategy:         research.Strategy,
		StructuredData:   graph,
		SocialCopy:       social,
		WordCount:        wordCount,
		DateGenerated:    time.Now().UTC(),
		ModelUsed:        p.completer.ModelName(),
	}
	return nil
}

// optimizeLinks reruns only the link integrity sequence over an existing
// page body. Word-count gates do not apply to this kind.
func (p *Pipeline) optimizeLinks(item *core.ContentItem) error {
	if strings.TrimSpace(item.SourceText) == "" {
		return fmt.Errorf("link optimization requires crawled source text for %s", item.SourceURL)
	}
	p.setStage(item, "finalize")

	content := links.SanitizeBrokenPlaceholders(item.SourceText)
	content = links.ValidateAndRepairInternalLinks(content, p.pages)
	content = links.EnforceInternalLinkQuota(content, p.pages, p.opts.MinInternalLinks)
	content = links.ProcessInternalLinks(content, p.pages)
	content = links.SanitizeBrokenPlaceholders(content)

	item.Generated = &core.GeneratedContent{
		Title:         item.Title,
		Slug:          Slugify(item.Title),
		Content:       content,
		WordCount:     quality.CountWords(content),
		DateGenerated: time.Now().UTC(),
		ModelUsed:     p.completer.ModelName(),
	}
	return nil
}

// deficientContent wraps a short-content failure's body so it stays
// inspectable on the item.
func (p *Pipeline) deficientContent(item *core.ContentItem, short *quality.ShortContentError) *core.GeneratedContent {
	return &core.GeneratedContent{
		Title:         item.Title,
		Slug:          Slugify(item.Title),
		Content:       short.Content,
		WordCount:     short.WordCount,
		DateGenerated: time.Now().UTC(),
		ModelUsed:     p.completer.ModelName(),
	}
}

// RunBatch generates every item with bounded parallelism. Per-item
// failures are recorded on the items; the batch always runs to
// completion unless stopped.
func (p *Pipeline) RunBatch(ctx context.Context, items []*core.ContentItem, concurrency int, onProgress batch.ProgressFunc) {
	batch.Run(ctx, items, func(ctx context.Context, item *core.ContentItem) error {
		return p.GenerateOne(ctx, item)
	}, concurrency, onProgress, p.stopAllRequested)
}

// Publish pushes one generated item to the CMS.
func (p *Pipeline) Publish(ctx context.Context, item *core.ContentItem) (*wordpress.Post, error) {
	if p.publisher == nil {
		return nil, fmt.Errorf("publishing is not configured")
	}
	if item.Generated == nil {
		return nil, fmt.Errorf("item %s has no generated content to publish", item.ID)
	}

	req := wordpress.PostRequest{
		Title:   item.Generated.Title,
		Slug:    item.Generated.Slug,
		Content: item.Generated.Content,
		Status:  p.opts.PostStatus,
		Excerpt: item.Generated.MetaDescription,
	}
	for _, img := range item.Generated.Images {
		if img.MediaID != 0 {
			req.FeaturedMediaID = img.MediaID
			break
		}
	}

	var post *wordpress.Post
	err := retry.Do(ctx, p.opts.Retry, func(ctx context.Context) error {
		created, err := p.publisher.CreateOrUpdatePost(ctx, req)
		if err != nil {
			return err
		}
		post = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", item.Generated.Slug, err)
	}
	logger.Info("published", map[string]any{"slug": post.Slug, "link": post.Link})
	return post, nil
}

// PublishBatch publishes every generated item with bounded parallelism.
func (p *Pipeline) PublishBatch(ctx context.Context, items []*core.ContentItem, concurrency int, onProgress batch.ProgressFunc) {
	batch.Run(ctx, items, func(ctx context.Context, item *core.ContentItem) error {
		_, err := p.Publish(ctx, item)
		if err != nil {
			item.Status = core.StatusError
			item.StatusMessage = truncateError(err)
			p.onStatus(item)
		}
		return err
	}, concurrency, onProgress, p.stopAllRequested)
}

func formatSERP(serp *core.SearchResults) string {
	if serp == nil || len(serp.Organic) == 0 {
		return "(none available)"
	}
	var sb strings.Builder
	for _, r := range serp.Organic {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", r.Title, r.Domain, r.Snippet))
	}
	return sb.String()
}

func formatPageTitles(pages []core.SitemapPage) string {
	if len(pages) == 0 {
		return "(no existing pages)"
	}
	var sb strings.Builder
	limit := len(pages)
	if limit > 50 {
		limit = 50
	}
	for _, page := range pages[:limit] {
		sb.WriteString(fmt.Sprintf("- slug=%q title=%q\n", page.Slug, page.Title))
	}
	return sb.String()
}

const statusMessageLimit = 200

// truncateError produces the short status string shown to users.
func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > statusMessageLimit {
		msg = msg[:statusMessageLimit] + "..."
	}
	return msg
}
