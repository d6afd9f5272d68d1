package flow

import "strings"

// validate performs the single forward pass described for the DSL
// grammar: a grouping-depth counter and an expectingOperand flag,
// initialised true, walked once over tokens. registry supplies the set of
// known node names; an unknown bareword fails with CodeUnknownNode.
func validate(tokens []Token, registry *Registry) error {
	depth := 0
	expectingOperand := true

	for _, tok := range tokens {
		switch {
		case expectingOperand:
			switch tok.Kind {
			case TokenLParen:
				depth++
			case TokenName:
				if !registry.has(tok.Text) {
					return &Error{
						Message: "unknown node \"" + tok.Text + "\"; registered nodes: " + registry.names(),
						Code:    CodeUnknownNode,
					}
				}
				expectingOperand = false
			default:
				return &Error{
					Message: "expected a node name or \"(\", found \"" + tok.Text + "\"",
					Code:    CodeSyntaxError,
				}
			}
		default:
			switch {
			case tok.Kind == TokenRParen:
				depth--
				if depth < 0 {
					return &Error{
						Message: "unbalanced grouping: unexpected \")\"",
						Code:    CodeSyntaxError,
					}
				}
			case tok.Kind == TokenLoop:
				if tok.LoopN <= 0 {
					return &Error{
						Message: "loop count must be positive, got " + tok.Text,
						Code:    CodeSyntaxError,
					}
				}
				expectingOperand = true
			case tok.isOperator():
				expectingOperand = true
			default:
				return &Error{
					Message: "expected an operator or \")\", found \"" + tok.Text + "\"",
					Code:    CodeSyntaxError,
				}
			}
		}
	}

	if depth != 0 {
		return &Error{Message: "unbalanced grouping: missing \")\"", Code: CodeSyntaxError}
	}
	if expectingOperand {
		return &Error{Message: "expression ends with a trailing operator", Code: CodeSyntaxError}
	}
	return nil
}

// normalize strips all whitespace from expr, the form both the lexer and
// the compiled-expression cache key operate on.
func normalize(expr string) string {
	var b strings.Builder
	b.Grow(len(expr))
	for _, r := range expr {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
