package service

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/lettora/lettora/internal/domain/agreement"
)

// The agreement templating grammar, embedded in author-supplied HTML:
//
//	{{name}}                     scalar interpolation (HTML-escaped)
//	{{#if_X}}...{{/if_X}}        named boolean conditional on flag X
//	{{#if name}}...{{/if}}       generic truthiness conditional
//	{{#each list}}...{{/each}}   iteration over a named record list
//
// Conditionals nest inside loops; loops do not nest. Malformed or
// unterminated blocks fail open: the raw text is kept verbatim and a
// non-blocking authoring warning is recorded instead of an error.

type tagKind int

const (
	tagVar tagKind = iota
	tagOpenIf
	tagCloseIf
	tagOpenIfNamed
	tagCloseIfNamed
	tagOpenEach
	tagCloseEach
)

// tag is one recognised {{...}} directive with its byte span in the template.
type tag struct {
	kind       tagKind
	name       string
	start, end int
}

// node is one element of the parsed template tree.
type node interface{ isNode() }

type textNode string

type varNode string

type condNode struct {
	name     string
	named    bool
	children []node
}

type loopNode struct {
	name     string
	children []node
}

func (textNode) isNode() {}
func (varNode) isNode()  {}
func (condNode) isNode() {}
func (loopNode) isNode() {}

// RenderTemplate renders one section template against the given context.
// It is pure and deterministic: the same (template, context) pair always
// yields byte-identical output. It never fails; authoring anomalies are
// returned as warnings alongside the degraded output.
func RenderTemplate(tmpl string, rctx *agreement.RenderContext) (string, []agreement.Warning) {
	if rctx == nil {
		rctx = agreement.NewRenderContext()
	}

	p := &parser{tmpl: tmpl, tags: scanTags(tmpl)}
	nodes := p.parseRegion(0, len(p.tags), 0, len(tmpl), false)

	var sb strings.Builder
	sb.Grow(len(tmpl))
	ev := &evaluator{ctx: rctx}
	ev.eval(nodes, nil, &sb)

	return sb.String(), append(p.warnings, ev.warnings...)
}

// scanTags finds every recognised directive in a single left-to-right pass.
// Brace pairs that do not form a valid directive are left to render as
// ordinary text.
func scanTags(tmpl string) []tag {
	var tags []tag
	pos := 0
	for {
		open := strings.Index(tmpl[pos:], "{{")
		if open < 0 {
			return tags
		}
		open += pos
		closing := strings.Index(tmpl[open+2:], "}}")
		if closing < 0 {
			return tags
		}
		closing += open + 2
		inner := tmpl[open+2 : closing]
		t, ok := classify(inner)
		if !ok {
			pos = open + 2
			continue
		}
		t.start = open
		t.end = closing + 2
		tags = append(tags, t)
		pos = t.end
	}
}

// classify maps the inside of a brace pair to a directive.
func classify(inner string) (tag, bool) {
	switch {
	case strings.HasPrefix(inner, "#if_"):
		name := inner[len("#if_"):]
		if isIdent(name) {
			return tag{kind: tagOpenIfNamed, name: name}, true
		}
	case strings.HasPrefix(inner, "#if "):
		name := strings.TrimSpace(inner[len("#if "):])
		if isIdent(name) {
			return tag{kind: tagOpenIf, name: name}, true
		}
	case strings.HasPrefix(inner, "#each "):
		name := strings.TrimSpace(inner[len("#each "):])
		if isIdent(name) {
			return tag{kind: tagOpenEach, name: name}, true
		}
	case strings.HasPrefix(inner, "/if_"):
		name := inner[len("/if_"):]
		if isIdent(name) {
			return tag{kind: tagCloseIfNamed, name: name}, true
		}
	case inner == "/if":
		return tag{kind: tagCloseIf}, true
	case inner == "/each":
		return tag{kind: tagCloseEach}, true
	default:
		if isIdent(inner) {
			return tag{kind: tagVar, name: inner}, true
		}
	}
	return tag{}, false
}

// isIdent reports whether s is a plain identifier: a letter or underscore
// followed by letters, digits or underscores.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type parser struct {
	tmpl     string
	tags     []tag
	warnings []agreement.Warning
}

func (p *parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, agreement.Warning{Message: fmt.Sprintf(format, args...)})
}

// parseRegion parses tags[ti:tj] covering tmpl[lo:hi) into a node list.
// inLoop tracks whether the region is inside an {{#each}} block, where a
// further loop is rejected (kept literal) rather than recursed into.
func (p *parser) parseRegion(ti, tj, lo, hi int, inLoop bool) []node {
	var nodes []node
	cursor := lo

	for k := ti; k < tj; k++ {
		t := p.tags[k]
		if t.start > cursor {
			nodes = append(nodes, textNode(p.tmpl[cursor:t.start]))
		}

		switch t.kind {
		case tagVar:
			nodes = append(nodes, varNode(t.name))
			cursor = t.end

		case tagOpenIf, tagOpenIfNamed, tagOpenEach:
			if t.kind == tagOpenEach && inLoop {
				// Loops do not nest: keep the whole inner block literal.
				m := p.findClose(k, tj)
				end := hi
				if m >= 0 {
					end = p.tags[m].end
					k = m
				} else {
					k = tj - 1
				}
				p.warnf("nested {{#each %s}} is not supported; block kept verbatim", t.name)
				nodes = append(nodes, textNode(p.tmpl[t.start:end]))
				cursor = end
				continue
			}

			m := p.findClose(k, tj)
			if m < 0 {
				// Unterminated block: fail open, everything from the open
				// tag onward renders verbatim.
				p.warnf("unterminated %s block; content kept verbatim", p.tagLabel(t))
				nodes = append(nodes, textNode(p.tmpl[t.start:hi]))
				return nodes
			}

			children := p.parseRegion(k+1, m, t.end, p.tags[m].start, inLoop || t.kind == tagOpenEach)
			switch t.kind {
			case tagOpenEach:
				nodes = append(nodes, loopNode{name: t.name, children: children})
			default:
				nodes = append(nodes, condNode{name: t.name, named: t.kind == tagOpenIfNamed, children: children})
			}
			k = m
			cursor = p.tags[m].end

		case tagCloseIf, tagCloseIfNamed, tagCloseEach:
			// Close with no matching open in this region: keep it literal.
			p.warnf("unmatched %s; kept verbatim", p.tagLabel(t))
			nodes = append(nodes, textNode(p.tmpl[t.start:t.end]))
			cursor = t.end
		}
	}

	if cursor < hi {
		nodes = append(nodes, textNode(p.tmpl[cursor:hi]))
	}
	return nodes
}

// findClose returns the index of the close tag matching the open tag at k,
// counting nesting within the same directive family, or -1 if the block is
// unterminated before tj.
func (p *parser) findClose(k, tj int) int {
	open := p.tags[k]
	depth := 1
	for m := k + 1; m < tj; m++ {
		t := p.tags[m]
		switch open.kind {
		case tagOpenIf:
			if t.kind == tagOpenIf {
				depth++
			} else if t.kind == tagCloseIf {
				depth--
			}
		case tagOpenIfNamed:
			if t.kind == tagOpenIfNamed && t.name == open.name {
				depth++
			} else if t.kind == tagCloseIfNamed && t.name == open.name {
				depth--
			}
		case tagOpenEach:
			if t.kind == tagOpenEach {
				depth++
			} else if t.kind == tagCloseEach {
				depth--
			}
		}
		if depth == 0 {
			return m
		}
	}
	return -1
}

// tagLabel reconstructs the source form of a tag for warning messages.
func (p *parser) tagLabel(t tag) string {
	return p.tmpl[t.start:t.end]
}

type evaluator struct {
	ctx      *agreement.RenderContext
	warnings []agreement.Warning
}

func (e *evaluator) warnf(format string, args ...any) {
	e.warnings = append(e.warnings, agreement.Warning{Message: fmt.Sprintf(format, args...)})
}

// eval renders the node tree into sb. rec is the current loop record, whose
// fields shadow outer variables for the duration of one iteration.
func (e *evaluator) eval(nodes []node, rec map[string]string, sb *strings.Builder) {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			sb.WriteString(string(n))

		case varNode:
			sb.WriteString(html.EscapeString(e.lookup(string(n), rec)))

		case condNode:
			if e.truthy(n, rec) {
				e.eval(n.children, rec, sb)
			}

		case loopNode:
			records, ok := e.ctx.Lists[n.name]
			if !ok {
				e.warnf("{{#each %s}}: no such list", n.name)
				continue
			}
			for _, r := range records {
				e.eval(n.children, r, sb)
			}
		}
	}
}

// lookup resolves a scalar name: loop record fields first, then variables,
// then flags rendered as "true"/"false". Unresolved names degrade to the
// empty string so a document with a blank field still generates.
func (e *evaluator) lookup(name string, rec map[string]string) string {
	if rec != nil {
		if v, ok := rec[name]; ok {
			return v
		}
	}
	if v, ok := e.ctx.Variables[name]; ok {
		return v
	}
	if b, ok := e.ctx.Flags[name]; ok {
		return strconv.FormatBool(b)
	}
	return ""
}

// truthy decides whether a conditional block renders.
func (e *evaluator) truthy(n condNode, rec map[string]string) bool {
	if n.named {
		b, ok := e.ctx.Flags[n.name]
		if !ok {
			e.warnf("{{#if_%s}}: no such flag", n.name)
		}
		return b
	}
	if rec != nil {
		if v, ok := rec[n.name]; ok {
			return agreement.Truthy(v)
		}
	}
	if v, ok := e.ctx.Variables[n.name]; ok {
		return agreement.Truthy(v)
	}
	if b, ok := e.ctx.Flags[n.name]; ok {
		return b
	}
	if l, ok := e.ctx.Lists[n.name]; ok {
		return len(l) > 0
	}
	return false
}
