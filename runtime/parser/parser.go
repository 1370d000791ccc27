// Package parser turns the procedure-division token stream into paragraphs
// of structured statements. It is a single-pass recursive-descent parser
// that never rejects input: unknown syntax degrades to generic statements
// and stray tokens are skipped with a diagnostic.
package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
	"github.com/aledsdavies/cobolscope/core/invariant"
	"github.com/aledsdavies/cobolscope/core/logging"
	"github.com/aledsdavies/cobolscope/runtime/lexer"
)

// debugEnv turns on parser tracing without touching the caller's logger.
const debugEnv = "COBOLSCOPE_DEBUG_PARSER"

// Result is the outcome of parsing one procedure division.
type Result struct {
	// Procedure maps paragraph names to statements in first-seen order.
	// It always contains document.RootParagraph.
	Procedure   document.OrderedMap[[]document.Statement]
	Diagnostics []errors.Diagnostic
	Telemetry   *ParseTelemetry // nil unless telemetry is enabled
	DebugEvents []DebugEvent    // nil unless debug tracing is enabled
}

// Paragraph returns the statements recorded under name.
func (r *Result) Paragraph(name string) ([]document.Statement, bool) {
	return r.Procedure.Get(name)
}

// Parse consumes tokens and returns the paragraph map. The only error is
// ErrNestingTooDeep, returned when blocks nest deeper than the configured
// limit; no partial result is returned in that case.
func Parse(tokens []lexer.Token, opts ...ParserOpt) (*Result, error) {
	config := &ParserConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.maxDepth < 1 {
		config.maxDepth = DefaultMaxDepth
	}
	if config.logger == nil {
		config.logger = logging.FromEnv(debugEnv)
	}

	var telemetry *ParseTelemetry
	var startParse time.Time
	if config.telemetry >= TelemetryBasic {
		telemetry = &ParseTelemetry{TokenCount: len(tokens)}
		if config.telemetry >= TelemetryTiming {
			startParse = time.Now()
		}
	}

	p := &parser{
		tokens:    tokens,
		config:    config,
		logger:    config.logger,
		paragraph: document.RootParagraph,
	}
	if config.debug > DebugOff {
		p.debugEvents = make([]DebugEvent, 0, 64)
	}
	p.result.Procedure.Set(document.RootParagraph, []document.Statement{})

	p.procedure()

	if p.err != nil {
		p.logger.Debug("[PARSER] aborted", "error", p.err)
		return nil, p.err
	}
	invariant.Postcondition(p.pos == len(tokens), "parser stopped at token %d of %d", p.pos, len(tokens))
	invariant.Postcondition(p.result.Procedure.Has(document.RootParagraph), "%s paragraph missing", document.RootParagraph)

	if telemetry != nil {
		for _, name := range p.result.Procedure.Keys() {
			stmts, _ := p.result.Procedure.Get(name)
			telemetry.StatementCount += document.Count(stmts)
		}
		telemetry.ParagraphCount = p.result.Procedure.Len()
		telemetry.SkippedTokens = p.skipped
		telemetry.MaxDepth = p.maxSeen
		if config.telemetry >= TelemetryTiming {
			telemetry.ParseTime = time.Since(startParse)
		}
	}

	p.logger.Debug("[PARSER] done",
		"tokens", len(tokens),
		"paragraphs", p.result.Procedure.Len(),
		"diagnostics", len(p.result.Diagnostics))

	p.result.Telemetry = telemetry
	p.result.DebugEvents = p.debugEvents
	return &p.result, nil
}

// parser is the internal parser state
type parser struct {
	tokens      []lexer.Token
	pos         int
	depth       int
	maxSeen     int
	skipped     int
	paragraph   string
	err         error
	result      Result
	config      *ParserConfig
	logger      *slog.Logger
	debugEvents []DebugEvent
}

// recordDebugEvent records debug events when debug tracing is enabled
func (p *parser) recordDebugEvent(event, context string) {
	if p.config.debug == DebugOff || p.debugEvents == nil {
		return
	}

	p.debugEvents = append(p.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		TokenPos:  p.pos,
		Context:   context,
	})
}

// procedure is the top-level loop: paragraph labels and statements.
func (p *parser) procedure() {
	for !p.done() {
		if p.atParagraphStart() {
			name := p.advance().Text
			p.advance() // "."
			p.paragraph = name
			p.result.Procedure.Set(name, []document.Statement{})
			if p.config.debug > DebugOff {
				p.recordDebugEvent("paragraph", name)
			}
			continue
		}

		prevPos := p.pos
		stmt := p.statement()
		if p.err != nil {
			return
		}
		if stmt != nil {
			stmts, _ := p.result.Procedure.Get(p.paragraph)
			p.result.Procedure.Set(p.paragraph, append(stmts, stmt))
			continue
		}

		// INVARIANT: every iteration consumes at least one token
		if p.pos == prevPos {
			tok := p.advance()
			p.skipped++
			if p.config.debug >= DebugDetailed {
				p.recordDebugEvent("force_progress", tok.String())
			}
			p.diagnose(errors.TokenizationGap, tok, fmt.Sprintf("skipped %q outside any enclosing statement", tok.Text))
		}
		invariant.Invariant(p.pos > prevPos, "parser stuck at token %d", p.pos)
	}
}

// atParagraphStart reports whether the cursor sits on "NAME ." where NAME is
// a word that is not a reserved terminator.
func (p *parser) atParagraphStart() bool {
	tok, ok := p.peek(0)
	if !ok || tok.Type != lexer.WORD {
		return false
	}
	next, ok := p.peek(1)
	if !ok || !next.IsPeriod() {
		return false
	}
	return !paragraphReserved.has(upper(tok))
}

// statement dispatches on the upper-cased first token. It returns nil for a
// bare "." (consumed) and for scope closers (left in place).
func (p *parser) statement() document.Statement {
	tok, ok := p.peek(0)
	if !ok {
		return nil
	}
	if tok.IsPeriod() {
		p.advance()
		return nil
	}

	word := upper(tok)
	switch word {
	case "IF":
		return p.parseIf()
	case "EVALUATE":
		return p.parseEvaluate()
	case "PERFORM":
		return p.parsePerform()
	case "CALL":
		return p.parseCall()
	case "MOVE":
		return p.parseMove()
	case "GO":
		return p.parseGoTo()
	}
	if scopeClosers.has(word) {
		return nil
	}
	return p.parseGeneric()
}

// block parses statements until a terminator, the end of input, or a
// dispatch that yields nothing. Terminators are not consumed.
func (p *parser) block(terminators wordSet) []document.Statement {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxSeen {
		p.maxSeen = p.depth
	}
	if p.depth > p.config.maxDepth {
		if p.err == nil {
			p.err = errors.NewNestingError(p.line(), p.config.maxDepth)
		}
		return nil
	}

	var stmts []document.Statement
	for !p.done() && p.err == nil {
		if terminators.has(p.currentUpper()) {
			break
		}
		prevPos := p.pos
		stmt := p.statement()
		if stmt == nil {
			break
		}
		invariant.Invariant(p.pos > prevPos, "%T consumed no tokens at %d", stmt, prevPos)
		stmts = append(stmts, stmt)
	}
	return stmts
}

// collect consumes tokens until stop returns true for the upper-cased
// current token and returns their text joined by single spaces.
func (p *parser) collect(stop func(word string) bool) string {
	var words []string
	for !p.done() {
		if stop(p.currentUpper()) {
			break
		}
		words = append(words, p.advance().Text)
	}
	return strings.Join(words, " ")
}

func (p *parser) diagnose(kind errors.DiagnosticKind, tok lexer.Token, message string) {
	p.result.Diagnostics = append(p.result.Diagnostics, errors.Diagnostic{
		Kind:    kind,
		Line:    tok.Position.Line,
		Message: message,
	})
	p.logger.Debug("[PARSER] diagnostic", "kind", kind, "line", tok.Position.Line, "message", message)
}

// done reports whether every token has been consumed or parsing has failed.
func (p *parser) done() bool {
	return p.pos >= len(p.tokens) || p.err != nil
}

// peek returns the token offset places ahead of the cursor.
func (p *parser) peek(offset int) (lexer.Token, bool) {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[i], true
}

// currentUpper returns the upper-cased current token text, or "" at the end.
func (p *parser) currentUpper() string {
	tok, ok := p.peek(0)
	if !ok {
		return ""
	}
	return upper(tok)
}

// at reports whether the current token is word, case-insensitively.
func (p *parser) at(word string) bool {
	return p.currentUpper() == word
}

// advance consumes and returns the current token.
func (p *parser) advance() lexer.Token {
	tok, ok := p.peek(0)
	if ok {
		p.pos++
	}
	return tok
}

// line returns the source line of the current token, or of the last token
// once input is exhausted.
func (p *parser) line() int {
	if tok, ok := p.peek(0); ok {
		return tok.Position.Line
	}
	if n := len(p.tokens); n > 0 {
		return p.tokens[n-1].Position.Line
	}
	return 0
}

func upper(tok lexer.Token) string {
	return strings.ToUpper(tok.Text)
}
