// Package compiler translates PL/0 source into three-address code.
//
// Pipeline: PL/0 source → Lex → Parse → Resolve → Generate → TAC listing
//
// Compile runs the stages in order and stops at the first failure; Eval
// interprets the resolved AST directly, as an independent check on the
// generated code.
package compiler
