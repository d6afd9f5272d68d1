// Package flow implements the node algebra and its evaluator: a small set
// of composable asynchronous work units combined by an infix expression
// language whose evaluator is simultaneously the parser and the scheduler.
package flow

// Error codes returned on *Error.Code.
const (
	// CodeSyntaxError means the expression text could not be tokenized, or
	// failed structural validation (unbalanced grouping, bad alternation of
	// operands/operators, non-positive loop count).
	CodeSyntaxError = "SyntaxError"
	// CodeUnknownNode means the expression references a name absent from
	// the registry at validation time.
	CodeUnknownNode = "UnknownNode"
	// CodeInvalidConfig means RegisterNode was called with a nil function,
	// a non-positive timeout, or negative retries.
	CodeInvalidConfig = "InvalidConfig"
	// CodeCycleDetected means the evaluator was about to invoke a node
	// already present on the current sequential path.
	CodeCycleDetected = "CycleDetected"
	// CodeFatalSignal means the context passed to Run was cancelled, or a
	// node configured raiseErrors failed on an attempt with an error other
	// than a timeout.
	CodeFatalSignal = "FatalSignal"
)

// Error represents a parse-, validation-, or evaluation-level failure:
// malformed expressions, unknown nodes, cycles, and fatal signals. It
// implements Unwrap so callers can use errors.As/errors.Is against Cause.
type Error struct {
	Message string
	Code    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NodeError represents a single failed attempt at invoking a node. Kind
// classifies the failure ("timeout" for a deadline, "error" for any other
// failure, including a recovered panic) and is the classifier embedded in
// trace labels of the shape "name:ERR(<kind>):<dur>s".
type NodeError struct {
	Message string
	Kind    string
	NodeID  string
	Cause   error
}

func (e *NodeError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *NodeError) Unwrap() error {
	return e.Cause
}
