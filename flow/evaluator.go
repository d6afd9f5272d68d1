package flow

import (
	"context"
	"strings"
)

// seqPath is the ordered, append-only set of node names reached by
// following ">>", "?", "|", and the implicit sequencing inside "<N>" from
// the root to the current evaluation point. It is threaded by value
// through the recursive evaluator; branches of "&" and iterations of a
// loop each get their own copy rather than sharing one slice, since the
// set is augmented only along sequential chains.
type seqPath []string

// with returns a copy of p with name appended, used when crossing a
// sequencing boundary so sibling branches do not observe each other's
// path extensions.
func (p seqPath) with(names ...string) seqPath {
	out := make(seqPath, len(p), len(p)+len(names))
	copy(out, p)
	return append(out, names...)
}

func (p seqPath) contains(name string) bool {
	for _, n := range p {
		if n == name {
			return true
		}
	}
	return false
}

// mergeNames concatenates a and b, preserving order and dropping any name
// from b already present in a, so the accumulated "names traversed" set
// used for path extension stays duplicate-free without losing the order
// names were first encountered in.
func mergeNames(a, b []string) []string {
	out := make([]string, len(a), len(a)+len(b))
	copy(out, a)
	for _, n := range b {
		dup := false
		for _, existing := range out {
			if existing == n {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, n)
		}
	}
	return out
}

// evalResult carries an operand's outcome plus the node names it
// traversed, the latter needed to extend the sequential path across a
// ">>" (and, implicitly, "?"/"|"/loop) boundary.
type evalResult struct {
	ok    bool
	names []string
}

// evaluator holds everything the recursive evaluation needs that does not
// change across a single Flow.Run call.
type evaluator struct {
	ctx      context.Context
	tokens   []Token
	registry *Registry
	state    *State
	metrics  *Metrics
}

// eval evaluates tokens[start:end] under the sequential path p, following
// the lowest-precedence-split algorithm: an empty slice is false; a
// single token is a node invocation (subject to cycle detection); a fully
// parenthesised slice recurses inside the parens; otherwise the top-level
// operator at the lowest precedence (rightmost on ties) splits the slice
// and dispatches on operator semantics.
func (e *evaluator) eval(start, end int, p seqPath) (evalResult, error) {
	if start >= end {
		return evalResult{ok: false}, nil
	}
	if end-start == 1 {
		return e.evalLeaf(e.tokens[start], p)
	}

	opIdx, found := e.findSplit(start, end)
	if !found {
		// A validated multi-token slice with no top-level operator can
		// only be a fully parenthesised atom: "(" expr ")".
		return e.eval(start+1, end-1, p)
	}

	switch e.tokens[opIdx].Kind {
	case TokenSeq:
		return e.evalSeq(start, opIdx, end, p)
	case TokenCond:
		return e.evalCond(start, opIdx, end, p)
	case TokenFallback:
		return e.evalFallback(start, opIdx, end, p)
	case TokenPar:
		return e.evalPar(start, opIdx, end, p)
	case TokenLoop:
		return e.evalLoop(start, opIdx, end, p)
	}
	return evalResult{}, &Error{Message: "internal error: unrecognized split operator", Code: CodeSyntaxError}
}

func (e *evaluator) evalLeaf(tok Token, p seqPath) (evalResult, error) {
	name := tok.Text
	if p.contains(name) {
		return evalResult{}, &Error{
			Message: "cycle detected: \"" + name + "\" already on path " + strings.Join(p, " -> "),
			Code:    CodeCycleDetected,
		}
	}

	node, ok := e.registry.Lookup(name)
	if !ok {
		return evalResult{}, &Error{
			Message: "unknown node \"" + name + "\" encountered during evaluation",
			Code:    CodeUnknownNode,
		}
	}

	result, err := execute(e.ctx, node, e.state, e.metrics)
	if err != nil {
		return evalResult{}, err
	}
	return evalResult{ok: result, names: []string{name}}, nil
}

// evalSeq and evalCond share an identical semantics: evaluate L; on
// failure return L's outcome and the names it alone traversed without
// evaluating R; on success extend the path with L's names and return R's
// outcome merged with L's names.
func (e *evaluator) evalSeq(start, opIdx, end int, p seqPath) (evalResult, error) {
	return e.evalSeqLike(start, opIdx, end, p)
}

func (e *evaluator) evalCond(start, opIdx, end int, p seqPath) (evalResult, error) {
	return e.evalSeqLike(start, opIdx, end, p)
}

func (e *evaluator) evalSeqLike(start, opIdx, end int, p seqPath) (evalResult, error) {
	left, err := e.eval(start, opIdx, p)
	if err != nil {
		return evalResult{}, err
	}
	if !left.ok {
		return left, nil
	}
	right, err := e.eval(opIdx+1, end, p.with(left.names...))
	if err != nil {
		return evalResult{}, err
	}
	return evalResult{ok: right.ok, names: mergeNames(left.names, right.names)}, nil
}

// evalFallback implements "A | B": on L's success, return L's outcome
// without evaluating R; otherwise extend the path with L's names and
// return R's outcome merged with L's names.
func (e *evaluator) evalFallback(start, opIdx, end int, p seqPath) (evalResult, error) {
	left, err := e.eval(start, opIdx, p)
	if err != nil {
		return evalResult{}, err
	}
	if left.ok {
		return left, nil
	}
	right, err := e.eval(opIdx+1, end, p.with(left.names...))
	if err != nil {
		return evalResult{}, err
	}
	return evalResult{ok: right.ok, names: mergeNames(left.names, right.names)}, nil
}

// evalPar runs the left sub-evaluation in a new goroutine and the right
// one on the calling goroutine, and joins both before continuing. Each branch gets its own
// copy of the sequential path: parallel siblings are independent, so a
// name appearing on both sides is not a cycle.
func (e *evaluator) evalPar(start, opIdx, end int, p seqPath) (evalResult, error) {
	type branchResult struct {
		res evalResult
		err error
	}

	leftCh := make(chan branchResult, 1)
	go func() {
		res, err := e.eval(start, opIdx, p.with())
		leftCh <- branchResult{res, err}
	}()

	rightRes, rightErr := e.eval(opIdx+1, end, p.with())
	left := <-leftCh

	if left.err != nil {
		return evalResult{}, left.err
	}
	if rightErr != nil {
		return evalResult{}, rightErr
	}

	names := mergeNames(left.res.names, rightRes.names)
	return evalResult{ok: left.res.ok && rightRes.ok, names: names}, nil
}

// evalLoop implements "A <N> B": up to N iterations, each evaluating L
// then R in sequence; the loop stops as soon as R succeeds. The overall
// boolean result is R's outcome on the final iteration performed, but the
// names reported upward accumulate across every iteration actually run
// (deduplicated, first-seen order), since all of them become part of the
// ambient sequential path for whatever follows the loop. Loop iterations
// do not extend the sequential path across iteration boundaries, only
// within one: each iteration's L and R are evaluated starting from the
// path the loop itself was entered with, not the previous iteration's.
func (e *evaluator) evalLoop(start, opIdx, end int, p seqPath) (evalResult, error) {
	n := e.tokens[opIdx].LoopN

	var lastOK bool
	var seen []string
	for i := 0; i < n; i++ {
		left, err := e.eval(start, opIdx, p)
		if err != nil {
			return evalResult{}, err
		}

		iterPath := p.with(left.names...)
		right, err := e.eval(opIdx+1, end, iterPath)
		if err != nil {
			return evalResult{}, err
		}

		lastOK = right.ok
		seen = mergeNames(seen, mergeNames(left.names, right.names))
		if right.ok {
			break
		}
	}
	return evalResult{ok: lastOK, names: seen}, nil
}

// findSplit scans tokens[start:end] for the top-level operator (grouping
// depth zero relative to start) with the lowest precedence, breaking ties
// by taking the rightmost candidate so binary operators associate left to
// right. found is false when no top-level operator exists, meaning the
// slice is a fully parenthesised atom.
func (e *evaluator) findSplit(start, end int) (idx int, found bool) {
	depth := 0
	bestIdx := -1
	bestPrec := 1<<63 - 1

	for i := start; i < end; i++ {
		tok := e.tokens[i]
		switch tok.Kind {
		case TokenLParen:
			depth++
			continue
		case TokenRParen:
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if !tok.isOperator() {
			continue
		}
		prec := tok.precedence()
		if prec <= bestPrec {
			bestPrec = prec
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return -1, false
	}
	return bestIdx, true
}
