// Package optimizer applies a small set of rewrite rules to a logical
// plan before it is lowered to a physical plan. Grounded on the
// teacher's Rule/HepOptimizer shape (pkg/ppl/optimizer/optimizer.go),
// narrowed to a single declared-order pass rather than the teacher's
// iterate-to-fixpoint loop (see DESIGN.md's Open Question decision).
package optimizer

import (
	"go.uber.org/zap"

	"github.com/coldframe/coldframe/pkg/logical"
)

// Rule rewrites a logical plan tree into an equivalent, hopefully
// cheaper, one. Implementations are responsible for their own
// recursion into children.
type Rule interface {
	Name() string
	Apply(plan logical.Plan) logical.Plan
}

// Optimizer runs a fixed, ordered sequence of rules over a plan.
type Optimizer struct {
	rules  []Rule
	logger *zap.Logger
}

// New builds an Optimizer from the given rules, applied in the order
// given, each exactly once.
func New(logger *zap.Logger, rules ...Rule) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{rules: rules, logger: logger}
}

// Default returns the optimizer's standard rule set. Projection
// push-down is opt-in (see ProjectionPushDown's doc comment), so it is
// not included here; pkg/driver adds it when pkg/engineconfig enables
// it.
func Default(logger *zap.Logger) *Optimizer {
	return New(logger)
}

func (o *Optimizer) Optimize(plan logical.Plan) logical.Plan {
	for _, r := range o.rules {
		o.logger.Debug("optimizer: applying rule", zap.String("rule", r.Name()))
		plan = r.Apply(plan)
	}
	return plan
}
