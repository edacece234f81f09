package markdown

import (
	"errors"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/graphblog/internal/apperr"
	"github.com/starford/graphblog/internal/models"
)

// ErrEmptyTarget is reported for a site-relative link with nothing after "/".
var ErrEmptyTarget = errors.New("link target is empty after leading slash")

var inlineLinkAttr = []byte("graphblog-inline")

// inlineLinkMarker wraps goldmark's link parser and tags links written as
// [text](destination). goldmark resolves reference links into the same
// *ast.Link type, so the form has to be recorded while parsing.
type inlineLinkMarker struct {
	parser.InlineParser
}

func (m *inlineLinkMarker) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) == 0 || line[0] != ']' {
		return m.InlineParser.Parse(parent, block, pc)
	}
	paren := len(line) > 1 && line[1] == '('
	beforeLine, before := block.Position()

	node := m.InlineParser.Parse(parent, block, pc)
	link, ok := node.(*ast.Link)
	if !ok || !paren {
		return node
	}
	// A failed inline destination falls back to a shortcut reference and
	// rewinds to just past the "]".
	afterLine, after := block.Position()
	if afterLine != beforeLine || after.Start > before.Start+1 {
		link.SetAttribute(inlineLinkAttr, true)
	}
	return node
}

func (m *inlineLinkMarker) CloseBlock(parent ast.Node, block text.Reader, pc parser.Context) {
	if cb, ok := m.InlineParser.(parser.CloseBlocker); ok {
		cb.CloseBlock(parent, block, pc)
	}
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithStrict makes a malformed site-relative target fail extraction instead of
// being skipped.
func WithStrict(strict bool) ExtractorOption {
	return func(e *Extractor) {
		e.strict = strict
	}
}

// WithMalformedHook registers fn to be told about skipped malformed targets.
func WithMalformedHook(fn func(source, destination string)) ExtractorOption {
	return func(e *Extractor) {
		e.onMalformed = fn
	}
}

// Extractor finds outbound site-relative references in a markdown body.
// It is safe for concurrent use.
type Extractor struct {
	parser      parser.Parser
	strict      bool
	onMalformed func(source, destination string)
}

// NewExtractor returns an Extractor using the lenient policy unless overridden.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		parser: parser.NewParser(
			parser.WithBlockParsers(parser.DefaultBlockParsers()...),
			parser.WithInlineParsers(
				util.Prioritized(parser.NewCodeSpanParser(), 100),
				util.Prioritized(&inlineLinkMarker{InlineParser: parser.NewLinkParser()}, 200),
				util.Prioritized(parser.NewAutoLinkParser(), 300),
				util.Prioritized(parser.NewRawHTMLParser(), 400),
				util.Prioritized(parser.NewEmphasisParser(), 500),
			),
			parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
		),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one link per inline link in body whose destination is a
// site-relative path, in document order. Reference-style links, autolinks,
// images, absolute URLs and protocol-relative URLs produce nothing.
func (e *Extractor) Extract(body string, meta models.Metadata) ([]models.Link, error) {
	src := []byte(body)
	doc := e.parser.Parse(text.NewReader(src))

	var links []models.Link
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if _, inline := link.Attribute(inlineLinkAttr); !inline {
			return ast.WalkContinue, nil
		}
		dest := destination(link)
		if !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
			return ast.WalkContinue, nil
		}
		target := strings.TrimPrefix(dest, "/")
		if target == "" {
			if e.strict {
				return ast.WalkStop, apperr.Reference("", ErrEmptyTarget)
			}
			if e.onMalformed != nil {
				e.onMalformed(meta.ID, dest)
			}
			return ast.WalkContinue, nil
		}
		links = append(links, models.Link{Source: meta.ID, Target: target})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// destination returns the link destination with backslash escapes and
// character references resolved, as CommonMark defines its value.
func destination(link *ast.Link) string {
	d := util.UnescapePunctuations(link.Destination)
	d = util.ResolveNumericReferences(d)
	d = util.ResolveEntityNames(d)
	return string(d)
}
