package export

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/tsago2003/gpt/internal/model"
)

// ErrNotReady is returned for tasks that have no completed summary yet.
var ErrNotReady = errors.New("task is not completed")

const (
	fontName = "Calibri"
	fontSize = 12
	black    = "000000"
	grey     = "555555"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
)

// WriteDocx renders a completed task as a document at path: title, summary, then transcript.
func WriteDocx(task *model.Task, path string) error {
	if task.Status != model.StatusCompleted {
		return ErrNotReady
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	title := deref(task.Title)
	if e := deref(task.Emoji); e != "" {
		title = e + " " + title
	}
	addRun(doc.AddParagraph(""), strings.TrimSpace(title), true, 18, black)
	addRun(doc.AddParagraph(""), task.SourceLink, false, 10, grey)

	addRun(doc.AddParagraph(""), "Summary", true, 15, black)
	writeMarkdown(doc, deref(task.Summary))

	addRun(doc.AddParagraph(""), "Transcript", true, 15, black)
	for _, para := range strings.Split(deref(task.Transcript), "\n") {
		if p := strings.TrimSpace(para); p != "" {
			addRun(doc.AddParagraph(""), p, false, fontSize, black)
		}
	}

	return doc.SaveTo(path)
}

func writeMarkdown(doc *docx.RootDoc, markdown string) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])), black)
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		addRichText(doc.AddParagraph(""), trimmed)
	}
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	default:
		return 13
	}
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64, color string) {
	run := p.AddText(stripInline(text)).Font(fontName).Size(size).Color(color)
	if bold {
		run.Bold(true)
	}
}

// addRichText keeps **bold** spans bold and drops the markers.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(stripInline(part)).Font(fontName).Size(fontSize).Color(black)
		}
		if i < len(matches) {
			p.AddText(stripInline(matches[i][1])).Font(fontName).Size(fontSize).Color(black).Bold(true)
		}
	}
}

func stripInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.ReplaceAll(s, "`", "")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
