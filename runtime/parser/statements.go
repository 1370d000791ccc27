package parser

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
)

// parseIf parses IF condition [THEN] stmts [ELSE stmts] [END-IF].
func (p *parser) parseIf() document.Statement {
	if p.config.debug > DebugOff {
		p.recordDebugEvent("enter_parseIf", "parsing IF")
	}
	p.advance() // IF

	var stmt document.If
	stmt.Condition = p.collect(func(word string) bool {
		return word == "." || word == "THEN" ||
			(ifConditionVerbs.has(word) && !conditionWords.has(word))
	})
	if p.at("THEN") {
		p.advance()
	}

	stmt.Then = p.block(ifThenStops)
	if p.at("ELSE") {
		p.advance()
		stmt.Else = p.block(ifElseStops)
	}
	if p.at("END-IF") {
		p.advance()
	}

	if p.config.debug > DebugOff {
		p.recordDebugEvent("exit_parseIf", stmt.Condition)
	}
	return stmt
}

// parseEvaluate parses EVALUATE subject (WHEN condition stmts)* [END-EVALUATE].
func (p *parser) parseEvaluate() document.Statement {
	if p.config.debug > DebugOff {
		p.recordDebugEvent("enter_parseEvaluate", "parsing EVALUATE")
	}
	p.advance() // EVALUATE

	var stmt document.Evaluate
	stmt.Subject = p.collect(func(word string) bool {
		return word == "WHEN" || word == "."
	})

	for p.at("WHEN") && p.err == nil {
		p.advance()
		c := document.Case{Condition: p.collect(whenStops.has)}
		c.Body = p.block(whenBodyStops)
		stmt.Cases = append(stmt.Cases, c)
	}
	if p.at("END-EVALUATE") {
		p.advance()
	}

	if p.config.debug > DebugOff {
		p.recordDebugEvent("exit_parseEvaluate", fmt.Sprintf("%d cases", len(stmt.Cases)))
	}
	return stmt
}

// parsePerform parses both PERFORM forms. A header that opens with a
// procedure name is out-of-line and ends before the next statement verb. A
// header that opens with a loop phrase continues into an inline body. A
// header whose second word is TIMES opens with a repeat count, not a name.
func (p *parser) parsePerform() document.Statement {
	if p.config.debug > DebugOff {
		p.recordDebugEvent("enter_parsePerform", "parsing PERFORM")
	}
	p.advance() // PERFORM

	var header []string
	hasProcedure := false
	inline := false
	for !p.done() {
		word := p.currentUpper()
		if word == "END-PERFORM" {
			inline = true
			break
		}
		if word == "." {
			break
		}
		if performBodyVerbs.has(word) {
			inline = !hasProcedure
			break
		}
		if len(header) == 0 {
			hasProcedure = !performLoopWords.has(word)
		} else if len(header) == 1 && word == "TIMES" {
			hasProcedure = false
		}
		header = append(header, p.advance().Text)
	}

	stmt := document.Perform{Header: strings.Join(header, " ")}
	if inline {
		stmt.Body = p.block(performStops)
	}
	if p.at("END-PERFORM") {
		p.advance()
	}

	if p.config.debug > DebugOff {
		p.recordDebugEvent("exit_parsePerform", fmt.Sprintf("inline: %v", inline))
	}
	return stmt
}

// parseCall parses CALL target [args] [END-CALL].
func (p *parser) parseCall() document.Statement {
	p.advance() // CALL

	var stmt document.Call
	if !p.done() {
		stmt.Target = p.advance().Text
	}
	stmt.Arguments = p.collect(callStops.has)
	if p.at("END-CALL") {
		p.advance()
	}
	return stmt
}

// parseMove keeps the MOVE text up to the next period, the next MOVE, IF,
// PERFORM or CALL, or a keyword that closes the enclosing block.
func (p *parser) parseMove() document.Statement {
	p.advance() // MOVE
	rest := p.collect(func(word string) bool {
		return moveStops.has(word) || blockTerminators.has(word)
	})
	return document.Move{Text: "MOVE " + rest}
}

// parseGoTo parses GO [TO] target.
func (p *parser) parseGoTo() document.Statement {
	p.advance() // GO
	if p.at("TO") {
		p.advance()
	}

	var stmt document.GoTo
	if !p.done() {
		stmt.Target = p.advance().Text
	}
	return stmt
}

// parseGeneric keeps the statement text up to the next period, block
// terminator or statement verb.
func (p *parser) parseGeneric() document.Statement {
	first := p.advance()
	verb := upper(first)
	rest := p.collect(func(word string) bool {
		return word == "." || blockTerminators.has(word) || genericStops.has(word)
	})

	text := first.Text
	if rest != "" {
		text += " " + rest
	}
	if !knownVerbs.has(verb) {
		p.diagnose(errors.UnrecognizedStatement, first, fmt.Sprintf("kept %q as generic text", text))
	}
	return document.Generic{Verb: verb, Text: text}
}
