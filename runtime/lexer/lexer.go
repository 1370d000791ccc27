// Package lexer splits buffered PROCEDURE DIVISION lines into one flat token
// stream. Every token remembers the raw source line it came from.
package lexer

import (
	"log/slog"
	"unicode"

	"github.com/aledsdavies/cobolscope/core/logging"
	"github.com/aledsdavies/cobolscope/runtime/source"
)

// debugEnv turns on lexer tracing without touching the caller's logger.
const debugEnv = "COBOLSCOPE_DEBUG_LEXER"

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	logger *slog.Logger
}

// WithLogger sends debug traces to logger
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		c.logger = logger
	}
}

// Tokenize lexes lines in order. Per line it extracts, left to right, a
// single-quoted string, a double-quoted string, a run of word characters and
// hyphens, or any single other non-space character. Whitespace yields nothing.
func Tokenize(lines []source.Line, opts ...LexerOpt) []Token {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = logging.FromEnv(debugEnv)
	}

	var tokens []Token
	for _, line := range lines {
		before := len(tokens)
		tokens = lexLine(tokens, line)
		config.logger.Debug("[LEXER] line",
			"line", line.Number,
			"tokens", len(tokens)-before)
	}
	config.logger.Debug("[LEXER] done", "lines", len(lines), "tokens", len(tokens))
	return tokens
}

func lexLine(tokens []Token, line source.Line) []Token {
	runes := []rune(line.Text)
	emit := func(typ TokenType, start, end int) {
		tokens = append(tokens, Token{
			Type:     typ,
			Text:     string(runes[start:end]),
			Position: Position{Line: line.Number, Column: start + 1},
		})
	}

	for i := 0; i < len(runes); {
		ch := runes[i]
		start := i
		switch {
		case unicode.IsSpace(ch):
			i++

		case ch == '\'' || ch == '"':
			if end := closingQuote(runes, i+1, ch); end >= 0 {
				i = end + 1
				emit(STRING, start, i)
			} else {
				// Unterminated: the quote stands alone
				i++
				emit(PUNCTUATION, start, i)
			}

		case isWordPart(ch):
			for i < len(runes) && isWordPart(runes[i]) {
				i++
			}
			emit(WORD, start, i)

		default:
			i++
			emit(PUNCTUATION, start, i)
		}
	}
	return tokens
}

// closingQuote returns the index of the next quote rune at or after from, or -1.
func closingQuote(runes []rune, from int, quote rune) int {
	for j := from; j < len(runes); j++ {
		if runes[j] == quote {
			return j
		}
	}
	return -1
}

func isWordPart(ch rune) bool {
	return ch == '_' || ch == '-' || unicode.IsLetter(ch) || unicode.IsDigit(ch) || unicode.IsMark(ch)
}
