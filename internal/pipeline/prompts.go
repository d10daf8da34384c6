package pipeline

// Prompt templates for each generation stage. Stages that need machine
// readable output ask for JSON and describe the exact shape; the parse
// side still runs through textrepair and normalization, so a model that
// drifts from the shape degrades rather than fails.

const researchSystem = `You are an SEO content strategist. You research keywords and plan article strategy. Respond only with JSON matching the requested shape.`

const researchPrompt = `Research the topic %q for a new article on %s.

Return JSON:
{
  "title": "final article title",
  "slug": "url-slug",
  "meta_description": "under 160 characters",
  "primary_keyword": "main keyword to target",
  "strategy": "2-3 sentences on angle and audience",
  "semantic_keywords": [
    {"keyword": "...", "demand_score": 0-100, "competition_score": 0-100, "relevance_score": 0-100, "serp_features": ["snippet"], "intent": "informational|commercial|transactional|navigational"}
  ]
}

Top search results for context:
%s`

const outlineSystem = `You are an SEO content strategist. You produce article outlines. Respond only with JSON matching the requested shape.`

const outlinePrompt = `Create an outline for an article titled %q targeting the keyword %q.
Strategy: %s
Questions people also ask: %s

Return JSON:
{
  "sections": [{"heading": "H2 heading", "summary": "what this section covers"}],
  "faq_questions": ["question 1", "question 2"]
}

Use %d to %d sections and %d FAQ questions.`

const sectionSystem = `You are an expert long-form writer producing HTML article sections. Write naturally, avoid filler phrases, vary sentence length. Output HTML only: one <h2> followed by <p>, <ul>, or <h3> elements. No <html>, <head>, or <body> wrappers, no markdown.`

const sectionPrompt = `Write the section %q for an article titled %q targeting the keyword %q.
Section focus: %s
Weave in these supporting keywords where natural: %s

When a phrase matches one of these existing page titles, mark it for internal linking using the exact token form [INTERNAL_LINK slug="the-page-slug" text="the anchor text"] instead of an <a> tag:
%s

Write 250-400 words for this section.`

const faqSystem = `You answer reader questions concisely for an article FAQ section. Output a single HTML <p> element with the answer. No heading, no markdown.`

const faqPrompt = `Answer this question for readers of an article about %q: %s
Keep the answer to 2-4 sentences.`

const socialSystem = `You write short social media promotional copy. Output plain text, no hashtags beyond two, under 280 characters.`

const socialPrompt = `Write promotional copy for an article titled %q. Meta description: %s`

const imagePromptSystem = `You write prompts for an image generation model. Output plain text describing one photographic image. No text overlays, no logos.`

const imagePromptTemplate = `Describe an image to illustrate the section %q of an article titled %q.`
