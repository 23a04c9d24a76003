// Package rules defines the per-operation deny/allow interface the engine
// consults before any read, write, or delete takes effect (spec.md §4.8).
//
// The Firestore-syntax rules language itself — a parser and AST evaluator
// over a document's path and auth context — is an external collaborator
// spec.md §1 places out of this core's scope; this package only ships the
// Evaluator contract plus the two stock evaluators a deployment picks
// between when no real rules document is loaded (spec.md §4.8 "When no
// rule set is loaded, behavior is deployment-configurable"). The
// pluggable-adapter shape follows the teacher's compactionFilterAdapter in
// db/background.go: a narrow interface the engine calls through, with a
// couple of trivial built-in implementations.
package rules

import "github.com/embeddb/firelocal/internal/apperrors"

// Operation names the kind of access being checked.
type Operation string

const (
	OpRead   Operation = "read"
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
)

// AuthContext carries whatever identity information the caller supplied;
// the core never interprets its contents, only passes it through to the
// evaluator (spec.md §4.8 "auth_ctx").
type AuthContext map[string]interface{}

// Decision is the evaluator's verdict for one operation.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Evaluator decides whether an operation against path is permitted.
// payload is non-nil only for write operations and is never logged or
// otherwise retained by the core beyond this call (spec.md §7 "No
// sensitive payload bytes are logged").
type Evaluator interface {
	Evaluate(op Operation, path string, payload []byte, auth AuthContext) Decision
}

// AllowAllEvaluator permits every operation unconditionally: the
// development-mode default spec.md §4.8 describes.
type AllowAllEvaluator struct{}

// Evaluate implements Evaluator.
func (AllowAllEvaluator) Evaluate(Operation, string, []byte, AuthContext) Decision {
	return Allow
}

// DenyAllEvaluator rejects every operation unconditionally: the
// production-safe default when no rules document has been loaded.
type DenyAllEvaluator struct{}

// Evaluate implements Evaluator.
func (DenyAllEvaluator) Evaluate(Operation, string, []byte, AuthContext) Decision {
	return Deny
}

// DefaultMode selects which stock evaluator backs a freshly opened engine
// before LoadRules installs a real rule set.
type DefaultMode int

const (
	// ModeAllowAll is appropriate for local development.
	ModeAllowAll DefaultMode = iota
	// ModeDenyAll is the safe default for a production deployment.
	ModeDenyAll
)

// StockEvaluator returns the evaluator corresponding to mode.
func StockEvaluator(mode DefaultMode) Evaluator {
	if mode == ModeDenyAll {
		return DenyAllEvaluator{}
	}
	return AllowAllEvaluator{}
}

// MaxRulesSize is the ceiling on an installed rule document, spec.md §4.9
// "Rule document: ≤ 1 MiB when installed".
const MaxRulesSize = 1 << 20

// ValidateRulesText performs the core's half of "load_rules(text)": the
// size gate spec.md §4.9 requires before handing text to the external
// parser/evaluator. It never inspects the text's grammar — that belongs to
// the replaceable collaborator spec.md §1 and §9 describe.
func ValidateRulesText(text []byte) error {
	if len(text) > MaxRulesSize {
		return apperrors.New(apperrors.KindInvalidRules, "rules document exceeds max size", nil)
	}
	return nil
}

// Check runs eval and translates a Deny into the core's PermissionDenied
// error, the non-retryable failure spec.md §4.8 specifies ("Deny results
// in a non-retryable permission error to the caller; no WAL bytes are
// written").
func Check(eval Evaluator, op Operation, path string, payload []byte, auth AuthContext) error {
	if eval == nil {
		eval = AllowAllEvaluator{}
	}
	if eval.Evaluate(op, path, payload, auth) == Deny {
		return apperrors.New(apperrors.KindPermissionDenied, string(op)+" "+path, nil)
	}
	return nil
}
