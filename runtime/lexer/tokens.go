package lexer

import "fmt"

// TokenType classifies a procedure-division token. The parser compares token
// text, not types; the type is kept for diagnostics and tooling.
type TokenType int

const (
	WORD        TokenType = iota // identifiers, verbs, numbers, hyphenated names
	STRING                       // 'quoted' or "quoted", quotes included
	PUNCTUATION                  // any other single non-space character, notably "."
)

// Position represents a position in the procedure-division source
type Position struct {
	Line   int // 1-based line number in the raw input
	Column int // 1-based column within the normalized line
}

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Text     string
	Position Position
}

// IsPeriod reports whether the token is the statement terminator ".".
func (t Token) IsPeriod() bool {
	return t.Text == "."
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Text, t.Position.Line, t.Position.Column)
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case WORD:
		return "WORD"
	case STRING:
		return "STRING"
	case PUNCTUATION:
		return "PUNCTUATION"
	default:
		return "UNKNOWN"
	}
}
