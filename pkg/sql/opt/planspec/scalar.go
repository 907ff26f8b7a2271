// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package planspec

import (
	"strconv"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
	"github.com/cockroachdb/cascades/pkg/sql/opt/memo"
	"github.com/cockroachdb/cascades/pkg/sql/sem/tree"
	"github.com/cockroachdb/cascades/pkg/sql/types"
	"gopkg.in/yaml.v3"
)

// aggregateTypes fixes the result type of functions whose type does not
// follow their first argument.
var aggregateTypes = map[string]*types.T{
	"count":      types.Int,
	"count_rows": types.Int,
	"avg":        types.Decimal,
	"bool_and":   types.Bool,
	"bool_or":    types.Bool,
}

func (s *scope) buildScalar(n *yaml.Node) (opt.ScalarExpr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return s.buildLeaf(n)
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, errorf(n, "scalar expression must have exactly one operator")
		}
		return s.buildOperator(n, n.Content[0].Value, n.Content[1])
	case yaml.AliasNode:
		return s.buildScalar(n.Alias)
	default:
		return nil, errorf(n, "invalid scalar expression")
	}
}

func (s *scope) buildLeaf(n *yaml.Node) (opt.ScalarExpr, error) {
	switch n.ShortTag() {
	case "!!null":
		return memo.NewConst(tree.DNull), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, errorf(n, "invalid bool %q", n.Value)
		}
		if b {
			return memo.TrueSingleton, nil
		}
		return memo.FalseSingleton, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, errorf(n, "invalid int %q", n.Value)
		}
		return memo.NewConst(tree.NewDInt(tree.DInt(i))), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, errorf(n, "invalid float %q", n.Value)
		}
		return memo.NewConst(tree.NewDFloat(tree.DFloat(f))), nil
	case "!!str":
		col, err := s.resolve(n, n.Value)
		if err != nil {
			return nil, err
		}
		return memo.NewVariable(s.b.md, col), nil
	default:
		return nil, errorf(n, "unsupported scalar %q", n.Value)
	}
}

func (s *scope) buildOperator(n *yaml.Node, name string, arg *yaml.Node) (opt.ScalarExpr, error) {
	switch name {
	case "string":
		if arg.Kind != yaml.ScalarNode {
			return nil, errorf(arg, "string constant must be a scalar")
		}
		return memo.NewConst(tree.NewDString(arg.Value)), nil

	case "decimal":
		if arg.Kind != yaml.ScalarNode {
			return nil, errorf(arg, "decimal constant must be a scalar")
		}
		d, err := tree.ParseDDecimal(arg.Value)
		if err != nil {
			return nil, errorf(arg, "%v", err)
		}
		return memo.NewConst(d), nil
	}

	operands, err := s.buildOperands(arg)
	if err != nil {
		return nil, err
	}
	op, ok := opt.OperatorByName(name)
	if !ok || !opt.IsScalarOp(op) {
		return s.buildFunction(name, operands), nil
	}

	switch op {
	case opt.AndOp, opt.OrOp:
		if len(operands) < 2 {
			return nil, errorf(n, "%s requires at least 2 operands", name)
		}
		res := operands[0]
		for _, e := range operands[1:] {
			if op == opt.AndOp {
				res = memo.NewAnd(res, e)
			} else {
				res = memo.NewOr(res, e)
			}
		}
		return res, nil

	case opt.NotOp, opt.IsNullOp:
		if len(operands) != 1 {
			return nil, errorf(n, "%s requires 1 operand", name)
		}
		if op == opt.NotOp {
			return memo.NewNot(operands[0]), nil
		}
		return memo.NewIsNull(operands[0]), nil
	}

	if !opt.IsBinaryOp(op) {
		return nil, errorf(n, "%s cannot be written as an operator", name)
	}
	if len(operands) != 2 {
		return nil, errorf(n, "%s requires 2 operands", name)
	}
	if opt.IsComparisonOp(op) {
		return memo.NewComparison(op, operands[0], operands[1]), nil
	}
	return memo.NewArithmetic(op, operands[0], operands[1]), nil
}

// buildOperands accepts either a sequence of operands or a single operand.
func (s *scope) buildOperands(n *yaml.Node) ([]opt.ScalarExpr, error) {
	if n.Kind != yaml.SequenceNode {
		e, err := s.buildScalar(n)
		if err != nil {
			return nil, err
		}
		return []opt.ScalarExpr{e}, nil
	}
	res := make([]opt.ScalarExpr, len(n.Content))
	for i, c := range n.Content {
		e, err := s.buildScalar(c)
		if err != nil {
			return nil, err
		}
		res[i] = e
	}
	return res, nil
}

func (s *scope) buildFunction(name string, args []opt.ScalarExpr) opt.ScalarExpr {
	typ, ok := aggregateTypes[name]
	if !ok {
		typ = types.Unknown
		if len(args) > 0 {
			typ = args[0].DataType()
		}
	}
	return memo.NewFunction(name, typ, args...)
}
