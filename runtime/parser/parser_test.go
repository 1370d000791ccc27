package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
	"github.com/aledsdavies/cobolscope/runtime/lexer"
	"github.com/aledsdavies/cobolscope/runtime/source"
)

type paragraph struct {
	Name       string
	Statements []document.Statement
}

func tokens(src string) []lexer.Token {
	var lines []source.Line
	for i, text := range strings.Split(src, "\n") {
		lines = append(lines, source.Line{Number: i + 1, Text: text})
	}
	return lexer.Tokenize(lines)
}

func mustParse(t *testing.T, src string, opts ...ParserOpt) *Result {
	t.Helper()
	result, err := Parse(tokens(src), opts...)
	require.NoError(t, err)
	return result
}

func paragraphs(r *Result) []paragraph {
	var out []paragraph
	for _, name := range r.Procedure.Keys() {
		stmts, _ := r.Procedure.Get(name)
		out = append(out, paragraph{name, stmts})
	}
	return out
}

func root(stmts ...document.Statement) []paragraph {
	return []paragraph{{document.RootParagraph, stmts}}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []paragraph
	}{
		{
			name:  "if with then and else",
			input: "IF A > B THEN MOVE X TO Y ELSE MOVE Z TO Y END-IF.",
			want: root(document.If{
				Condition: "A > B",
				Then:      []document.Statement{document.Move{Text: "MOVE X TO Y"}},
				Else:      []document.Statement{document.Move{Text: "MOVE Z TO Y"}},
			}),
		},
		{
			name:  "if without then ends condition at verb",
			input: "IF WS-FLAG = 'Y' DISPLAY 'YES'.",
			want: root(document.If{
				Condition: "WS-FLAG = 'Y'",
				Then:      []document.Statement{document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'YES'"}},
			}),
		},
		{
			name:  "condition words do not end the condition",
			input: "IF A IS NOT GREATER THAN B AND C EQUAL D THEN CONTINUE END-IF",
			want: root(document.If{
				Condition: "A IS NOT GREATER THAN B AND C EQUAL D",
				Then:      []document.Statement{document.Generic{Verb: "CONTINUE", Text: "CONTINUE"}},
			}),
		},
		{
			name:  "nested if",
			input: "IF A = 1\n  IF B = 2\n    MOVE 1 TO C\n  END-IF\nEND-IF.",
			want: root(document.If{
				Condition: "A = 1",
				Then: []document.Statement{document.If{
					Condition: "B = 2",
					Then:      []document.Statement{document.Move{Text: "MOVE 1 TO C"}},
				}},
			}),
		},
		{
			name:  "keywords are case insensitive and text keeps case",
			input: "if a > b then move x to y end-if.",
			want: root(document.If{
				Condition: "a > b",
				Then:      []document.Statement{document.Move{Text: "MOVE x to y"}},
			}),
		},
		{
			name: "evaluate with when other",
			input: "EVALUATE WS-CODE\n" +
				"  WHEN 1 DISPLAY 'ONE'\n" +
				"  WHEN OTHER CONTINUE\n" +
				"END-EVALUATE.",
			want: root(document.Evaluate{
				Subject: "WS-CODE",
				Cases: []document.Case{
					{Condition: "1", Body: []document.Statement{document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'ONE'"}}},
					{Condition: "OTHER", Body: []document.Statement{document.Generic{Verb: "CONTINUE", Text: "CONTINUE"}}},
				},
			}),
		},
		{
			name:  "evaluate true with several statements per case",
			input: "EVALUATE TRUE WHEN X > 1 MOVE 1 TO Y MOVE 2 TO Z WHEN OTHER GO TO DONE END-EVALUATE",
			want: root(document.Evaluate{
				Subject: "TRUE",
				Cases: []document.Case{
					{Condition: "X > 1", Body: []document.Statement{
						document.Move{Text: "MOVE 1 TO Y"},
						document.Move{Text: "MOVE 2 TO Z"},
					}},
					{Condition: "OTHER", Body: []document.Statement{document.GoTo{Target: "DONE"}}},
				},
			}),
		},
		{
			name:  "out-of-line perform",
			input: "PERFORM PARA-ONE.",
			want:  root(document.Perform{Header: "PARA-ONE"}),
		},
		{
			name:  "out-of-line perform leaves the next verb alone",
			input: "PERFORM PARA-ONE THRU PARA-TWO DISPLAY 'DONE'.",
			want: root(
				document.Perform{Header: "PARA-ONE THRU PARA-TWO"},
				document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'DONE'"},
			),
		},
		{
			name:  "inline perform with repeat count",
			input: "PERFORM 100 TIMES MOVE A TO B END-PERFORM.",
			want: root(document.Perform{
				Header: "100 TIMES",
				Body:   []document.Statement{document.Move{Text: "MOVE A TO B"}},
			}),
		},
		{
			name:  "inline perform until",
			input: "PERFORM UNTIL WS-I > 5\n  ADD 1 TO WS-I\n  DISPLAY WS-I\nEND-PERFORM",
			want: root(document.Perform{
				Header: "UNTIL WS-I > 5",
				Body: []document.Statement{
					document.Generic{Verb: "ADD", Text: "ADD 1 TO WS-I"},
					document.Generic{Verb: "DISPLAY", Text: "DISPLAY WS-I"},
				},
			}),
		},
		{
			name:  "out-of-line perform with a counted loop",
			input: "PERFORM PARA-ONE WS-N TIMES.",
			want:  root(document.Perform{Header: "PARA-ONE WS-N TIMES"}),
		},
		{
			name:  "perform followed directly by a verb is inline",
			input: "IF X PERFORM CALL X.",
			want: root(document.If{
				Condition: "X",
				Then: []document.Statement{document.Perform{
					Body: []document.Statement{document.Call{Target: "X"}},
				}},
			}),
		},
		{
			name:  "empty inline perform",
			input: "PERFORM VARYING I FROM 1 BY 1 UNTIL I > 9 END-PERFORM.",
			want:  root(document.Perform{Header: "VARYING I FROM 1 BY 1 UNTIL I > 9"}),
		},
		{
			name:  "call with using and end-call",
			input: "CALL 'SUBPROG' USING WS-A WS-B END-CALL.",
			want:  root(document.Call{Target: "'SUBPROG'", Arguments: "USING WS-A WS-B"}),
		},
		{
			name:  "call without arguments",
			input: "CALL WS-PROG.",
			want:  root(document.Call{Target: "WS-PROG"}),
		},
		{
			name:  "go to and bare go",
			input: "GO TO EXIT-PARA.\nGO FINISH.",
			want:  root(document.GoTo{Target: "EXIT-PARA"}, document.GoTo{Target: "FINISH"}),
		},
		{
			name:  "moves split on the next move",
			input: "MOVE 1 TO A MOVE 2 TO B.",
			want:  root(document.Move{Text: "MOVE 1 TO A"}, document.Move{Text: "MOVE 2 TO B"}),
		},
		{
			name:  "generic statements split on verbs",
			input: "DISPLAY 'A' DISPLAY 'B'\nSTOP RUN.",
			want: root(
				document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'A'"},
				document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'B'"},
				document.Generic{Verb: "STOP", Text: "STOP RUN"},
			),
		},
		{
			name:  "reserved words are not paragraphs",
			input: "EXIT.\nGOBACK.",
			want: root(
				document.Generic{Verb: "EXIT", Text: "EXIT"},
				document.Generic{Verb: "GOBACK", Text: "GOBACK"},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paragraphs(mustParse(t, tt.input))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParagraphs(t *testing.T) {
	src := strings.Join([]string{
		"INIT-PARA.",
		"    MOVE 0 TO WS-COUNT.",
		"MAIN-PARA.",
		"    PERFORM INIT-PARA.",
		"    STOP RUN.",
	}, "\n")

	result := mustParse(t, src)
	want := []paragraph{
		{document.RootParagraph, nil},
		{"INIT-PARA", []document.Statement{document.Move{Text: "MOVE 0 TO WS-COUNT"}}},
		{"MAIN-PARA", []document.Statement{
			document.Perform{Header: "INIT-PARA"},
			document.Generic{Verb: "STOP", Text: "STOP RUN"},
		}},
	}
	if diff := cmp.Diff(want, paragraphs(result), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("paragraphs mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Diagnostics)
}

func TestParseRepeatedParagraphOverwrites(t *testing.T) {
	src := "A-PARA.\nDISPLAY 1.\nB-PARA.\nDISPLAY 2.\nA-PARA.\nDISPLAY 3."

	result := mustParse(t, src)
	assert.Equal(t, []string{document.RootParagraph, "A-PARA", "B-PARA"}, result.Procedure.Keys())

	stmts, ok := result.Paragraph("A-PARA")
	require.True(t, ok)
	assert.Equal(t, []document.Statement{document.Generic{Verb: "DISPLAY", Text: "DISPLAY 3"}}, stmts)
}

func TestParseStatementsBeforeFirstParagraph(t *testing.T) {
	result := mustParse(t, "DISPLAY 'START'.\nMAIN.\nSTOP RUN.")

	rootStmts, ok := result.Paragraph(document.RootParagraph)
	require.True(t, ok)
	assert.Equal(t, []document.Statement{document.Generic{Verb: "DISPLAY", Text: "DISPLAY 'START'"}}, rootStmts)
	assert.True(t, result.Procedure.Has("MAIN"))
}

func TestParseEmpty(t *testing.T) {
	result, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{document.RootParagraph}, result.Procedure.Keys())

	data, err := result.Procedure.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"_ROOT_":[]}`, string(data))
}

func TestParseDiagnostics(t *testing.T) {
	t.Run("stray scope closer is skipped", func(t *testing.T) {
		result := mustParse(t, "END-IF.\nSTOP RUN.")

		if diff := cmp.Diff(root(document.Generic{Verb: "STOP", Text: "STOP RUN"}), paragraphs(result)); diff != "" {
			t.Errorf("paragraphs mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, errors.TokenizationGap, result.Diagnostics[0].Kind)
		assert.Equal(t, 1, result.Diagnostics[0].Line)
	})

	t.Run("unknown verb degrades to generic", func(t *testing.T) {
		result := mustParse(t, "\nFROBNICATE WS-A.")

		if diff := cmp.Diff(root(document.Generic{Verb: "FROBNICATE", Text: "FROBNICATE WS-A"}), paragraphs(result)); diff != "" {
			t.Errorf("paragraphs mismatch (-want +got):\n%s", diff)
		}
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, errors.UnrecognizedStatement, result.Diagnostics[0].Kind)
		assert.Equal(t, 2, result.Diagnostics[0].Line)
	})

	t.Run("known verbs are not reported", func(t *testing.T) {
		result := mustParse(t, "DISPLAY 'X'. ACCEPT WS-A. COMPUTE X = Y + 1.")
		assert.Empty(t, result.Diagnostics)
	})
}

func TestParseMalformedInputTerminates(t *testing.T) {
	inputs := []string{
		"IF",
		"IF THEN ELSE END-IF END-IF END-IF",
		"EVALUATE WHEN WHEN WHEN",
		"PERFORM",
		"PERFORM END-PERFORM END-PERFORM",
		"CALL",
		"GO",
		"GO TO",
		"MOVE",
		". . . .",
		"ELSE WHEN END-EVALUATE END-PERFORM",
		"'unterminated",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result, err := Parse(tokens(input))
			require.NoError(t, err)
			assert.True(t, result.Procedure.Has(document.RootParagraph))
		})
	}
}

func nestedIfs(depth int) string {
	return strings.Repeat("IF A = 1 ", depth) + "MOVE 1 TO B."
}

func TestParseDepthGuard(t *testing.T) {
	_, err := Parse(tokens(nestedIfs(6)), WithMaxDepth(5))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrNestingTooDeep))

	limit, ok := err.(*errors.Error).GetContext("limit")
	require.True(t, ok)
	assert.Equal(t, 5, limit)

	result, err := Parse(tokens(nestedIfs(5)), WithMaxDepth(5), WithTelemetryBasic())
	require.NoError(t, err)
	assert.Equal(t, 5, result.Telemetry.MaxDepth)
}

func TestParseDefaultDepthAllowsDeepNesting(t *testing.T) {
	_, err := Parse(tokens(nestedIfs(DefaultMaxDepth)))
	require.NoError(t, err)

	_, err = Parse(tokens(nestedIfs(DefaultMaxDepth + 1)))
	assert.True(t, errors.IsErrorType(err, errors.ErrNestingTooDeep))
}

func TestParseTelemetry(t *testing.T) {
	src := "MAIN.\nIF A > B THEN MOVE X TO Y ELSE MOVE Z TO Y END-IF.\nEND-IF."
	toks := tokens(src)

	result, err := Parse(toks, WithTelemetryTiming())
	require.NoError(t, err)
	require.NotNil(t, result.Telemetry)
	assert.Equal(t, len(toks), result.Telemetry.TokenCount)
	assert.Equal(t, 3, result.Telemetry.StatementCount)
	assert.Equal(t, 2, result.Telemetry.ParagraphCount)
	assert.Equal(t, 1, result.Telemetry.SkippedTokens)
	assert.Equal(t, 1, result.Telemetry.MaxDepth)

	result, err = Parse(toks)
	require.NoError(t, err)
	assert.Nil(t, result.Telemetry)
}

func TestParseDebugEvents(t *testing.T) {
	result := mustParse(t, "MAIN.\nIF A = 1 PERFORM X.", WithDebugPaths())

	var events []string
	for _, ev := range result.DebugEvents {
		events = append(events, ev.Event)
	}
	assert.Equal(t, []string{
		"paragraph",
		"enter_parseIf",
		"enter_parsePerform",
		"exit_parsePerform",
		"exit_parseIf",
	}, events)

	assert.Nil(t, mustParse(t, "MAIN.").DebugEvents)
}

func TestParseDeterministic(t *testing.T) {
	src := strings.Join([]string{
		"MAIN-PARA.",
		"    EVALUATE TRUE",
		"      WHEN WS-A > 1",
		"        PERFORM UNTIL WS-B = 0",
		"          SUBTRACT 1 FROM WS-B",
		"        END-PERFORM",
		"      WHEN OTHER",
		"        CALL 'LOGGER' USING WS-A",
		"    END-EVALUATE.",
		"    GOBACK.",
	}, "\n")

	first := mustParse(t, src)
	second := mustParse(t, src)

	a, err := first.Procedure.MarshalJSON()
	require.NoError(t, err)
	b, err := second.Procedure.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestParseJSONShape(t *testing.T) {
	result := mustParse(t, "IF A > B THEN MOVE X TO Y ELSE MOVE Z TO Y END-IF.")

	data, err := result.Procedure.MarshalJSON()
	require.NoError(t, err)
	want := `{"_ROOT_":[{"type":"IF","condition":"A > B",` +
		`"then":[{"type":"MOVE","statement":"MOVE X TO Y"}],` +
		`"else":[{"type":"MOVE","statement":"MOVE Z TO Y"}]}]}`
	assert.Equal(t, want, string(data))
}
