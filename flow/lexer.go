package flow

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches one token by the longest-match rule, in the order
// the alternation is written: grouping, the four binary operators, a loop
// marker "<N>", and finally a maximal run of characters that are none of
// the parens or the operator symbols. The input is whitespace-stripped
// before matching, so the bareword class does not exclude whitespace.
var tokenPattern = regexp.MustCompile(`\(|\)|>>|&|\?|\||<[0-9]+>|[^()&|?<>]+`)

// lex tokenizes expr, an expression already stripped of whitespace, using
// the longest-match rule over the alphabet: "(", ")", ">>", "&", "?", "|",
// "<N>" and barewords. If the concatenation of matched tokens does not
// reconstruct expr exactly, the input contains an illegal character and
// lex returns a SyntaxError.
func lex(expr string) ([]Token, error) {
	matches := tokenPattern.FindAllString(expr, -1)

	var rebuilt strings.Builder
	for _, m := range matches {
		rebuilt.WriteString(m)
	}
	if rebuilt.String() != expr {
		return nil, &Error{
			Message: "expression contains an illegal character: " + expr,
			Code:    CodeSyntaxError,
		}
	}

	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		switch m {
		case "(":
			tokens = append(tokens, Token{Kind: TokenLParen, Text: m})
		case ")":
			tokens = append(tokens, Token{Kind: TokenRParen, Text: m})
		case ">>":
			tokens = append(tokens, Token{Kind: TokenSeq, Text: m})
		case "&":
			tokens = append(tokens, Token{Kind: TokenPar, Text: m})
		case "?":
			tokens = append(tokens, Token{Kind: TokenCond, Text: m})
		case "|":
			tokens = append(tokens, Token{Kind: TokenFallback, Text: m})
		default:
			if len(m) >= 3 && m[0] == '<' && m[len(m)-1] == '>' {
				n, err := strconv.Atoi(m[1 : len(m)-1])
				if err == nil {
					tokens = append(tokens, Token{Kind: TokenLoop, Text: m, LoopN: n})
					continue
				}
			}
			tokens = append(tokens, Token{Kind: TokenName, Text: m})
		}
	}
	return tokens, nil
}
