package parser

// wordSet is a read-only set of upper-cased words.
type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(word string) bool {
	_, ok := s[word]
	return ok
}

var (
	// paragraphReserved words never open a paragraph even when followed by ".".
	paragraphReserved = newWordSet(
		"EXIT", "GOBACK", "STOP", "RUN",
		"END-IF", "END-PERFORM", "END-EVALUATE", "END-READ",
		"END-CALL", "END-STRING", "END-UNSTRING", "ELSE",
	)

	// scopeClosers are left in place by statement dispatch for the enclosing
	// block to handle.
	scopeClosers = newWordSet("END-IF", "END-EVALUATE", "END-PERFORM", "ELSE", "WHEN")

	// ifConditionVerbs end an IF condition that has no THEN.
	ifConditionVerbs = newWordSet(
		"MOVE", "DISPLAY", "PERFORM", "IF", "GO", "CALL", "ADD", "SUBTRACT",
		"COMPUTE", "SET", "EVALUATE", "NEXT",
	)

	// conditionWords may appear inside a condition and never end it.
	conditionWords = newWordSet("IS", "NOT", "OR", "AND", "GREATER", "LESS", "EQUAL", "THAN")

	// whenStops end a WHEN condition.
	whenStops = newWordSet(
		"MOVE", "DISPLAY", "PERFORM", "IF", "GO", "CALL", "ADD", "SUBTRACT",
		"SET", "CONTINUE", "WHEN", "END-EVALUATE", ".",
	)

	// performLoopWords start a PERFORM header without a procedure name.
	performLoopWords = newWordSet("END-PERFORM", ".", "VARYING", "UNTIL", "TIMES", "WITH", "TEST")

	// performBodyVerbs end a PERFORM header. Without a procedure name they
	// also start the inline body.
	performBodyVerbs = newWordSet(
		"MOVE", "IF", "DISPLAY", "CALL", "SET", "ADD", "SUBTRACT", "GO",
		"EVALUATE", "CONTINUE", "STOP", "EXIT", "READ", "WRITE",
	)

	// callStops end a CALL argument list.
	callStops = newWordSet(".", "END-CALL", "ON", "EXCEPTION")

	// moveStops end a MOVE statement.
	moveStops = newWordSet(".", "MOVE", "IF", "PERFORM", "CALL")

	// blockTerminators end a MOVE or generic statement so the enclosing
	// IF, EVALUATE or PERFORM sees its own keywords.
	blockTerminators = newWordSet("ELSE", "END-IF", "WHEN", "END-EVALUATE", "END-PERFORM", "END-CALL")

	// genericStops end a generic statement.
	genericStops = newWordSet(
		"MOVE", "DISPLAY", "PERFORM", "IF", "GO", "CALL", "ADD", "SUBTRACT",
		"COMPUTE", "SET", "EVALUATE", "CONTINUE", "RETURN", "OPEN", "CLOSE",
		"READ", "WRITE", "REWRITE", "DELETE", "START", "STOP", "EXIT",
	)

	// knownVerbs are generic statement verbs that are not reported as
	// unrecognized.
	knownVerbs = newWordSet(
		"DISPLAY", "ADD", "SUBTRACT", "MULTIPLY", "DIVIDE", "COMPUTE", "SET",
		"INITIALIZE", "STRING", "UNSTRING", "INSPECT", "ACCEPT", "CONTINUE",
		"RETURN", "OPEN", "CLOSE", "READ", "WRITE", "REWRITE", "DELETE",
		"START", "STOP", "EXIT", "GOBACK", "SEARCH", "SORT", "MERGE",
		"RELEASE", "NEXT", "CANCEL", "EXEC", "ALTER", "ENTRY", "INVOKE",
	)

	ifThenStops   = newWordSet("ELSE", "END-IF", ".")
	ifElseStops   = newWordSet("END-IF", ".")
	whenBodyStops = newWordSet("WHEN", "END-EVALUATE", ".")
	performStops  = newWordSet("END-PERFORM", ".")
)
