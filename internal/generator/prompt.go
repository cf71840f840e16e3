package generator

import (
	"fmt"
	"strings"
	"text/template"

	"seo-writer/internal/domain"
)

// ArticleWords is the requested article length.
const ArticleWords = 1500

const systemPromptFormat = "Use %s as closely as possible"

var userPrompt = template.Must(template.New("article").Parse(`
DO NOT START WITH ANYTHING EXCEPT <h1>. Start the page immediately and do not talk back to me in any way.
Use {{.Research}} to inform all of your decisions and claims.
You are writing for {{.BrandName}}. Write from the perspective of this brand.
DO NOT INCLUDE ANY EXTERNAL LINKS TO COMPETITORS.
Please write a long-form SEO-optimized article with {{.Words}} words about the following keyword: {{.Keyword}}.
Answer in HTML, starting with one single <h1> tag, as this is going on a blog, and do not add unnecessary HTML tags.
Please use a lot of formatting, tables are great for ranking on Google.
Always include a key takeaways table at the very top of the article giving the key information for this topic.

The article should be written in a {{.ContentType}} tone and framed as an expert piece.
Incorporate the brand guidelines:
{{.BrandGuidelines}}

This is a {{.BusinessType}} so write from the perspective of that business.
`))

type promptData struct {
	Keyword         string
	Research        string
	BrandName       string
	BusinessType    string
	BrandGuidelines string
	ContentType     string
	Words           int
}

// Prompt is the pair of prompts handed to the writer.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt embeds the keyword, research text and brand settings verbatim.
func BuildPrompt(settings domain.Settings, keyword, research string) (Prompt, error) {
	var b strings.Builder
	if err := userPrompt.Execute(&b, promptData{
		Keyword:         keyword,
		Research:        research,
		BrandName:       settings.BrandName,
		BusinessType:    settings.BusinessType,
		BrandGuidelines: settings.BrandGuidelines,
		ContentType:     settings.ContentType,
		Words:           ArticleWords,
	}); err != nil {
		return Prompt{}, fmt.Errorf("render prompt: %w", err)
	}
	return Prompt{
		System: fmt.Sprintf(systemPromptFormat, research),
		User:   b.String(),
	}, nil
}
