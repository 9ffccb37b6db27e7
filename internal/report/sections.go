package report

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Section is a heading of the report and the text that follows it.
type Section struct {
	Level int
	Title string
	Body  string
}

// SectionParser splits markdown reports into heading sections.
type SectionParser struct {
	md goldmark.Markdown
}

// NewSectionParser creates a SectionParser.
func NewSectionParser() *SectionParser {
	return &SectionParser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Sections returns the report's sections in document order. Text before
// the first heading is dropped.
func (p *SectionParser) Sections(markdown string) []Section {
	content := []byte(markdown)
	doc := p.md.Parser().Parse(text.NewReader(content))

	var sections []Section
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			sections = append(sections, Section{
				Level: heading.Level,
				Title: extractTextFromNode(heading, content),
			})
			continue
		}
		if len(sections) == 0 {
			continue
		}
		body := extractTextFromNode(n, content)
		if body == "" {
			continue
		}
		cur := &sections[len(sections)-1]
		if cur.Body != "" {
			cur.Body += "\n"
		}
		cur.Body += body
	}
	return sections
}

// MissingSections returns the RequiredSections that no heading of the
// report mentions. Matching is case insensitive.
func (p *SectionParser) MissingSections(markdown string) []string {
	var titles []string
	for _, s := range p.Sections(markdown) {
		titles = append(titles, strings.ToLower(s.Title))
	}

	var missing []string
	for _, req := range RequiredSections {
		want := strings.ToLower(req)
		found := false
		for _, title := range titles {
			if strings.Contains(title, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	return missing
}

// extractTextFromNode concatenates the text of n and its descendants.
func extractTextFromNode(n ast.Node, content []byte) string {
	var sb strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(content))
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(sb.String())
}
