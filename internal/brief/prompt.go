// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"strings"
	"text/template"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

var promptFuncs = template.FuncMap{"join": strings.Join}

// briefPromptTmpl asks for a brief in the line-oriented layout ParseBrief
// reads: "Title:" and "H1:" lines, outline headings and FAQs as bullets.
var briefPromptTmpl = template.Must(template.New("brief").Funcs(promptFuncs).Parse(`You are an SEO content strategist. Build a detailed content brief.
Seed or topic: {{.Topic}}
Target keywords: {{join .Keywords ", "}}

Include:
- A line "Title: <working title>" and a line "H1: <page heading>"
- 8-14 section headings as "- " bullets, one per line
- 8-10 suggested FAQs (People Also Ask style) as "- " bullets ending in "?"
- Suggested schema types (Article, FAQ, HowTo, etc.)
- Notes on E-E-A-T and topical gaps to fill
Return a concise plan in Markdown.
`))

var articlePromptTmpl = template.Must(template.New("article").Funcs(promptFuncs).Parse(`You are an expert SEO writer. Write a comprehensive, accurate, human-like article.
Topic: {{.Topic}}
Tone: {{.Tone}}
Audience: {{if .Audience}}{{.Audience}}{{else}}general readers{{end}}
Target length (words): {{.TargetLength}}

{{if .Outline}}Use this outline:
{{range .Outline}}- {{.Heading}}{{if .Description}}: {{.Description}}{{end}}
{{end}}{{else}}Create an intuitive outline.
{{end}}{{if .FAQs}}
Answer these questions in an FAQ section at the end:
{{range .FAQs}}- {{.}}
{{end}}{{end}}
Requirements:
- Factually accurate and current; cite sources inline as (Source: name, URL) when relevant
- Natural language, varied sentence structures, avoid fluff
- Include these entities naturally: {{join .Entities ", "}}
- Include a concise intro and a clear conclusion

Return Markdown only.
`))

var socialPromptTmpl = template.Must(template.New("social").Parse(`From the article below, generate:
- 5 LinkedIn post angles (2-3 sentences each)
- 8 Tweet/X snippets (max 260 chars)
Return each as a "- " bullet.

Article:
{{.}}
`))

type briefPromptData struct {
	Topic    string
	Keywords []string
}

type articlePromptData struct {
	Topic        string
	Tone         string
	Audience     string
	TargetLength int
	Outline      []types.BriefSection
	FAQs         []string
	Entities     []string
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
