package engine

import "github.com/rob-gra/gridsim-core/aggregate"

// Aggregate compiles an aggregator/group-expression pair against this
// engine's registries and wires this Engine as both the Loadshape and
// Enduse source, so an aggregation over a Loadshape- or Enduse-typed
// property resolves through whatever this engine has attached (spec
// §4.6; aggregate.DoubleSource/ComplexSource exist precisely so the
// aggregate package never needs to import loadshape/enduse directly).
func (e *Engine) Aggregate(aggregator, groupExpr string) (*aggregate.Aggregation, error) {
	agg, err := aggregate.Compile(e.Classes, e.Objects, e.Units, aggregator, groupExpr)
	if err != nil {
		return nil, err
	}
	agg.Loadshapes = e
	agg.Enduses = e
	return agg, nil
}
