package compiler

import (
	"errors"

	"plzero/pkg/tac"
)

// Artifacts collects what the pipeline produced for one source text.
// When Compile fails, the stages that completed before the failure are
// still populated so callers can dump them for inspection.
type Artifacts struct {
	Tokens  []Token
	Program *Block
	Table   *SymbolTable
	TAC     *tac.Program
}

// Compile runs the whole pipeline: lex, parse, resolve names, lower to
// three-address code. It stops at the first failing stage; later stages
// never see a broken artifact.
func Compile(src string) (*Artifacts, error) {
	art := &Artifacts{Tokens: Lex(src)}

	if lexErrs := LexErrors(art.Tokens); len(lexErrs) > 0 {
		errs := make([]error, len(lexErrs))
		for i, e := range lexErrs {
			errs[i] = e
		}
		return art, errors.Join(errs...)
	}

	block, err := Parse(art.Tokens, src)
	if err != nil {
		return art, err
	}
	art.Program = block

	table, err := Resolve(block, src)
	if err != nil {
		return art, err
	}
	art.Table = table

	prog, err := Generate(block)
	if err != nil {
		return art, err
	}
	art.TAC = prog
	return art, nil
}
