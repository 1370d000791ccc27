package document

// Kind identifies a Statement variant.
type Kind int

const (
	KindGeneric Kind = iota
	KindIf
	KindEvaluate
	KindPerform
	KindCall
	KindMove
	KindGoTo
)

// String returns the wire name used in the "type" field.
func (k Kind) String() string {
	switch k {
	case KindIf:
		return "IF"
	case KindEvaluate:
		return "EVALUATE"
	case KindPerform:
		return "PERFORM"
	case KindCall:
		return "CALL"
	case KindMove:
		return "MOVE"
	case KindGoTo:
		return "GO TO"
	default:
		return "STATEMENT"
	}
}

// Statement is one procedure-division statement. The set of variants is
// closed: If, Evaluate, Perform, Call, Move, GoTo and Generic.
type Statement interface {
	Kind() Kind
	record() record
}

// If is IF condition [THEN] ... [ELSE ...] [END-IF].
type If struct {
	Condition string
	Then      []Statement
	Else      []Statement
}

// Evaluate is EVALUATE subject WHEN ... [END-EVALUATE].
type Evaluate struct {
	Subject string
	Cases   []Case
}

// Case is one WHEN arm of an Evaluate.
type Case struct {
	Condition string
	Body      []Statement
}

// Perform is a PERFORM. An empty Body means an out-of-line perform whose
// Header names the procedure; a non-empty Body is an inline perform.
type Perform struct {
	Header string
	Body   []Statement
}

// Call is CALL target [USING ...].
type Call struct {
	Target    string
	Arguments string
}

// Move keeps the whole MOVE statement text, verb included.
type Move struct {
	Text string
}

// GoTo is GO [TO] target.
type GoTo struct {
	Target string
}

// Generic is any statement without a dedicated variant.
type Generic struct {
	Verb string
	Text string
}

func (If) Kind() Kind       { return KindIf }
func (Evaluate) Kind() Kind { return KindEvaluate }
func (Perform) Kind() Kind  { return KindPerform }
func (Call) Kind() Kind     { return KindCall }
func (Move) Kind() Kind     { return KindMove }
func (GoTo) Kind() Kind     { return KindGoTo }
func (Generic) Kind() Kind  { return KindGeneric }

func (s If) record() record {
	return record{
		{"type", KindIf.String()},
		{"condition", s.Condition},
		{"then", statementList(s.Then)},
		{"else", statementList(s.Else)},
	}
}

func (s Evaluate) record() record {
	cases := make([]record, 0, len(s.Cases))
	for _, c := range s.Cases {
		cases = append(cases, record{
			{"condition", c.Condition},
			{"statements", statementList(c.Body)},
		})
	}
	return record{
		{"type", KindEvaluate.String()},
		{"subject", s.Subject},
		{"cases", cases},
	}
}

func (s Perform) record() record {
	return record{
		{"type", KindPerform.String()},
		{"details", s.Header},
		{"body", statementList(s.Body)},
	}
}

func (s Call) record() record {
	return record{
		{"type", KindCall.String()},
		{"target", s.Target},
		{"arguments", s.Arguments},
	}
}

func (s Move) record() record {
	return record{
		{"type", KindMove.String()},
		{"statement", s.Text},
	}
}

func (s GoTo) record() record {
	return record{
		{"type", KindGoTo.String()},
		{"target", s.Target},
	}
}

func (s Generic) record() record {
	return record{
		{"type", KindGeneric.String()},
		{"verb", s.Verb},
		{"text", s.Text},
	}
}

func (s If) MarshalJSON() ([]byte, error)       { return s.record().MarshalJSON() }
func (s Evaluate) MarshalJSON() ([]byte, error) { return s.record().MarshalJSON() }
func (s Perform) MarshalJSON() ([]byte, error)  { return s.record().MarshalJSON() }
func (s Call) MarshalJSON() ([]byte, error)     { return s.record().MarshalJSON() }
func (s Move) MarshalJSON() ([]byte, error)     { return s.record().MarshalJSON() }
func (s GoTo) MarshalJSON() ([]byte, error)     { return s.record().MarshalJSON() }
func (s Generic) MarshalJSON() ([]byte, error)  { return s.record().MarshalJSON() }

func (s If) MarshalCBOR() ([]byte, error)       { return s.record().MarshalCBOR() }
func (s Evaluate) MarshalCBOR() ([]byte, error) { return s.record().MarshalCBOR() }
func (s Perform) MarshalCBOR() ([]byte, error)  { return s.record().MarshalCBOR() }
func (s Call) MarshalCBOR() ([]byte, error)     { return s.record().MarshalCBOR() }
func (s Move) MarshalCBOR() ([]byte, error)     { return s.record().MarshalCBOR() }
func (s GoTo) MarshalCBOR() ([]byte, error)     { return s.record().MarshalCBOR() }
func (s Generic) MarshalCBOR() ([]byte, error)  { return s.record().MarshalCBOR() }

// statementList never returns nil so empty blocks encode as [] rather than null.
func statementList(s []Statement) []Statement {
	if s == nil {
		return []Statement{}
	}
	return s
}

// Walk visits statements depth-first in source order. Nested blocks are
// visited with depth+1. Returning false from fn skips the statement's children.
func Walk(stmts []Statement, fn func(s Statement, depth int) bool) {
	walk(stmts, 0, fn)
}

func walk(stmts []Statement, depth int, fn func(Statement, int) bool) {
	for _, s := range stmts {
		if !fn(s, depth) {
			continue
		}
		switch s := s.(type) {
		case If:
			walk(s.Then, depth+1, fn)
			walk(s.Else, depth+1, fn)
		case Evaluate:
			for _, c := range s.Cases {
				walk(c.Body, depth+1, fn)
			}
		case Perform:
			walk(s.Body, depth+1, fn)
		}
	}
}

// Count returns the number of statements in stmts, nested ones included.
func Count(stmts []Statement) int {
	n := 0
	Walk(stmts, func(Statement, int) bool {
		n++
		return true
	})
	return n
}
