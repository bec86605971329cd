// Package statusmail extracts task records from free-form status-report
// mail bodies. Lines are classified as module headers (whole-line bracket
// groups) or numbered task lines; everything else is prose and ignored.
package statusmail

import (
	"bufio"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/harrisonrobin/mailtask/pkg/model"
)

var (
	taskLineRe    = regexp.MustCompile(`^(\d+)[.)、]\s*(.+)$`)
	moduleLineRe  = regexp.MustCompile(`^(\[[^\]]+\](?:\[[^\]]+\])*)\s*$`)
	firstGroupRe  = regexp.MustCompile(`^\[([^\]]+)\]`)
	starRe        = regexp.MustCompile(`^(\*{1,3})\s*`)
	dueRe         = regexp.MustCompile(`(?i)\[\s*due\s*(?:date)?\s*[:\s]\s*(\d{2,4}/?\d{0,2})\s*\]`)
	bareDueRe     = regexp.MustCompile(`\[\s*(\d{1,2}/\d{1,2})\s*\]`)
	statusRe      = regexp.MustCompile(`(?i)\[status[:\s]*([^\]]+)\]`)
	bareStatusRe  = regexp.MustCompile(`(?i)\[\s*(pending|resolved|done|completed|in[\s-]*progress)\s*\]`)
	dashSplitRe   = regexp.MustCompile(`\s*[–—]\s*`)
	hyphenSplitRe = regexp.MustCompile(`\s+-\s+`)
	ownerSplitRe  = regexp.MustCompile(`[/,、]`)
	cjkNameRe     = regexp.MustCompile(`^[\x{4e00}-\x{9fff}]{1,10}$`)
	asciiNameRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,19}$`)
	bracketRe     = regexp.MustCompile(`\[[^\]]*\]`)
	spaceRe       = regexp.MustCompile(`\s+`)

	statusMarkerPrefixRe = regexp.MustCompile(`^(?:status|due(?:\s*date)?)\s*:`)
	statusMarkerWordRe   = regexp.MustCompile(`^(?:pending|resolved|done|completed|in[\s-]*progress)$`)
	dateTokenRes         = []*regexp.Regexp{
		regexp.MustCompile(`^\d{8}$`),
		regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`),
		regexp.MustCompile(`^\d{1,2}/\d{1,2}$`),
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}(?:\d{2})?$`),
	}

	styleBlockRe = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	htmlEntityRe = regexp.MustCompile(`&[a-z]+;`)
)

// Parser walks message bodies and accumulates raw task records. It keeps
// the active module context between lines of one message and resets it for
// the next one.
type Parser struct {
	// ExcludeMiddlePriority halts a message at the first line mentioning
	// "middle priority" or "low priority"; everything below that marker is
	// backlog, not active work.
	ExcludeMiddlePriority bool

	tasks         []model.Task
	currentModule string
}

// New returns a Parser. excludeMiddlePriority is on by default in the
// caller's configuration.
func New(excludeMiddlePriority bool) *Parser {
	return &Parser{ExcludeMiddlePriority: excludeMiddlePriority}
}

// Tasks returns all records accumulated so far, in extraction order.
func (p *Parser) Tasks() []model.Task {
	return p.tasks
}

// Parse extracts task records from one message and appends them to the
// parser's accumulated list.
func (p *Parser) Parse(msg model.Message) {
	body := msg.Body
	if strings.Contains(strings.ToLower(body), "<html") || strings.Contains(body, "<") {
		body = stripHTML(body)
	}

	p.currentModule = ""

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if p.ExcludeMiddlePriority && isPriorityCutoff(line) {
			break
		}

		if m := moduleLineRe.FindStringSubmatch(line); m != nil {
			if g := firstGroupRe.FindStringSubmatch(m[1]); g != nil && isModuleName(g[1]) {
				p.currentModule = m[1]
			}
			continue
		}

		if m := taskLineRe.FindStringSubmatch(line); m != nil {
			if task, ok := p.parseTask(strings.TrimSpace(m[2]), msg); ok {
				task.Module = p.currentModule
				p.tasks = append(p.tasks, task)
			}
		}
	}
}

// parseTask parses the content of one numbered line. A line without a due
// token, without any valid owner, or with a degenerate title is not a task;
// most numbered lines in prose are not.
func (p *Parser) parseTask(content string, msg model.Message) (model.Task, bool) {
	task := model.Task{
		Priority:    model.PriorityNormal,
		MailDate:    msg.Date,
		MailSubject: msg.Subject,
		MailID:      msg.ID,
	}

	if m := starRe.FindStringSubmatch(content); m != nil {
		switch len(m[1]) {
		case 2:
			task.Priority = model.PriorityMedium
		case 3:
			task.Priority = model.PriorityHigh
		}
		content = strings.TrimSpace(content[len(m[0]):])
	}

	loc := dueRe.FindStringSubmatchIndex(content)
	if loc == nil {
		loc = bareDueRe.FindStringSubmatchIndex(content)
	}
	if loc == nil {
		return model.Task{}, false
	}
	task.Due = normalizeDue(content[loc[2]:loc[3]])
	content = strings.TrimSpace(content[:loc[0]] + content[loc[1]:])

	if sl := statusRe.FindStringSubmatchIndex(content); sl != nil {
		task.Status = strings.TrimSpace(content[sl[2]:sl[3]])
		content = strings.TrimSpace(content[:sl[0]] + content[sl[1]:])
	} else if sl := bareStatusRe.FindStringSubmatchIndex(content); sl != nil {
		task.Status = content[sl[2]:sl[3]]
		content = strings.TrimSpace(content[:sl[0]] + content[sl[1]:])
	}

	title, ownerText, ok := splitTitleOwners(content)
	if !ok {
		return model.Task{}, false
	}

	task.Owners = parseOwners(ownerText)
	if len(task.Owners) == 0 {
		return model.Task{}, false
	}

	title = bracketRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(spaceRe.ReplaceAllString(title, " "))
	if utf8.RuneCountInString(title) < 2 {
		return model.Task{}, false
	}
	task.Title = title

	return task, true
}

// splitTitleOwners splits on the first dash separator (en/em dash, or a
// hyphen surrounded by spaces). When no dash is present it falls back to
// the first whitespace run, which misattributes titles containing internal
// spaces; known limitation of the input format.
func splitTitleOwners(content string) (title, owners string, ok bool) {
	parts := dashSplitRe.Split(content, 2)
	if len(parts) < 2 {
		parts = hyphenSplitRe.Split(content, 2)
	}
	if len(parts) < 2 {
		parts = spaceRe.Split(content, 2)
	}
	if len(parts) < 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// parseOwners splits an owner segment on /, comma or ideographic comma and
// keeps tokens that look like names: 1-10 CJK ideographs or an ASCII
// identifier up to 20 characters. Duplicates are dropped, order kept.
func parseOwners(text string) []string {
	text = strings.TrimSpace(bracketRe.ReplaceAllString(text, ""))
	if text == "" {
		return nil
	}
	var owners []string
	seen := make(map[string]bool)
	for _, part := range ownerSplitRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		if cjkNameRe.MatchString(part) || asciiNameRe.MatchString(part) {
			owners = append(owners, part)
			seen[part] = true
		}
	}
	return owners
}

// normalizeDue turns a slash-less 3- or 4-digit due payload into "MM/DD".
func normalizeDue(payload string) string {
	if strings.Contains(payload, "/") {
		return payload
	}
	switch len(payload) {
	case 3:
		return payload[:1] + "/" + payload[1:]
	case 4:
		return payload[:2] + "/" + payload[2:]
	}
	return payload
}

// isModuleName reports whether the first bracket group of a candidate
// header names a module rather than a status marker or a date.
func isModuleName(inner string) bool {
	inner = strings.ToLower(strings.TrimSpace(inner))
	if statusMarkerPrefixRe.MatchString(inner) || statusMarkerWordRe.MatchString(inner) {
		return false
	}
	for _, re := range dateTokenRes {
		if re.MatchString(inner) {
			return false
		}
	}
	return true
}

// isPriorityCutoff reports whether the line marks the start of the
// middle/low priority backlog section.
func isPriorityCutoff(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "middle priority") || strings.Contains(lower, "low priority")
}

// stripHTML flattens an HTML body to plain text lines. Tags become line
// breaks so that adjacent cells or paragraphs do not merge into one line.
func stripHTML(body string) string {
	body = styleBlockRe.ReplaceAllString(body, "")
	body = htmlTagRe.ReplaceAllString(body, "\n")
	body = strings.ReplaceAll(body, "&nbsp;", " ")
	body = htmlEntityRe.ReplaceAllString(body, " ")
	return body
}
