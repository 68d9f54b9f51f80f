package runtime

import (
	"io"
	"math"
	"strconv"

	"github.com/merx-lang/merx/pkg/ast"
)

// Eval evaluates expr against env, reading from in for `input`
// expressions. Both operands of && and || are always evaluated; the
// language has no short-circuit operators.
func Eval(expr ast.Expr, env *Env, in LineReader) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return IntVal(e.Value), nil
	case *ast.StrLit:
		return StrVal(e.Value), nil
	case *ast.BoolLit:
		return BoolVal(e.Value), nil

	case *ast.VarRef:
		v, ok := env.Get(e.Name)
		if !ok {
			return Value{}, &UndefinedVariableError{Name: e.Name}
		}
		return v, nil

	case *ast.InputExpr:
		line, err := in.ReadLine()
		if err != nil {
			if err == io.EOF {
				return StrVal(""), nil
			}
			return Value{}, &InputError{Err: err}
		}
		return StrVal(line), nil

	case *ast.UnaryExpr:
		v, err := Eval(e.Operand, env, in)
		if err != nil {
			return Value{}, err
		}
		return evalUnary(e.Op, v)

	case *ast.BinaryExpr:
		left, err := Eval(e.Left, env, in)
		if err != nil {
			return Value{}, err
		}
		right, err := Eval(e.Right, env, in)
		if err != nil {
			return Value{}, err
		}
		return evalBinary(e.Op, left, right)

	case *ast.CastExpr:
		v, err := Eval(e.Expr, env, in)
		if err != nil {
			return Value{}, err
		}
		return evalCast(v, e.Target)
	}
	return Value{}, &TypeError{Expected: "expression", Op: "eval"}
}

func evalUnary(op ast.UnaryOp, v Value) (Value, error) {
	switch op {
	case ast.OpNot:
		if v.Kind() != KindBool {
			return Value{}, &TypeError{Expected: "bool", Found: v.Kind(), Op: "!"}
		}
		return BoolVal(!v.Bool()), nil
	default: // ast.OpNeg
		if v.Kind() != KindInt {
			return Value{}, &TypeError{Expected: "int", Found: v.Kind(), Op: "-"}
		}
		// Wraps: -MinInt64 stays MinInt64.
		return IntVal(-v.Int()), nil
	}
}

func evalBinary(op ast.BinaryOp, left, right Value) (Value, error) {
	switch op {
	case ast.OpAdd:
		return evalAdd(left, right)

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		l, r, err := intOperands(op, left, right)
		if err != nil {
			return Value{}, err
		}
		return evalArith(op, l, r)

	case ast.OpEq:
		return BoolVal(left.Equal(right)), nil
	case ast.OpNe:
		return BoolVal(!left.Equal(right)), nil

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		l, r, err := intOperands(op, left, right)
		if err != nil {
			return Value{}, err
		}
		var result bool
		switch op {
		case ast.OpLt:
			result = l < r
		case ast.OpLe:
			result = l <= r
		case ast.OpGt:
			result = l > r
		default:
			result = l >= r
		}
		return BoolVal(result), nil

	default: // ast.OpAnd, ast.OpOr
		if left.Kind() != KindBool {
			return Value{}, &TypeError{Expected: "bool", Found: left.Kind(), Op: op.String()}
		}
		if right.Kind() != KindBool {
			return Value{}, &TypeError{Expected: "bool", Found: right.Kind(), Op: op.String()}
		}
		if op == ast.OpAnd {
			return BoolVal(left.Bool() && right.Bool()), nil
		}
		return BoolVal(left.Bool() || right.Bool()), nil
	}
}

// evalAdd adds ints (wrapping) or concatenates strings; operand kinds
// must match.
func evalAdd(left, right Value) (Value, error) {
	switch left.Kind() {
	case KindInt:
		if right.Kind() != KindInt {
			return Value{}, &TypeError{Expected: "int", Found: right.Kind(), Op: "+"}
		}
		return IntVal(left.Int() + right.Int()), nil
	case KindStr:
		if right.Kind() != KindStr {
			return Value{}, &TypeError{Expected: "str", Found: right.Kind(), Op: "+"}
		}
		return StrVal(left.Str() + right.Str()), nil
	}
	return Value{}, &TypeError{Expected: "int or str", Found: left.Kind(), Op: "+"}
}

func intOperands(op ast.BinaryOp, left, right Value) (int64, int64, error) {
	if left.Kind() != KindInt {
		return 0, 0, &TypeError{Expected: "int", Found: left.Kind(), Op: op.String()}
	}
	if right.Kind() != KindInt {
		return 0, 0, &TypeError{Expected: "int", Found: right.Kind(), Op: op.String()}
	}
	return left.Int(), right.Int(), nil
}

func evalArith(op ast.BinaryOp, l, r int64) (Value, error) {
	switch op {
	case ast.OpSub:
		return IntVal(l - r), nil
	case ast.OpMul:
		return IntVal(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return Value{}, ErrDivisionByZero
		}
		// MinInt64 / -1 wraps rather than trapping.
		if l == math.MinInt64 && r == -1 {
			return IntVal(math.MinInt64), nil
		}
		return IntVal(l / r), nil
	default: // ast.OpMod
		if r == 0 {
			return Value{}, ErrDivisionByZero
		}
		if l == math.MinInt64 && r == -1 {
			return IntVal(0), nil
		}
		// Remainder takes the sign of the dividend.
		return IntVal(l % r), nil
	}
}

func evalCast(v Value, target ast.TypeName) (Value, error) {
	switch target {
	case ast.TypeInt:
		switch v.Kind() {
		case KindInt:
			return v, nil
		case KindStr:
			n, err := strconv.ParseInt(v.Str(), 10, 64)
			if err != nil {
				return Value{}, &CastError{From: KindStr, To: "int", Value: v.Str()}
			}
			return IntVal(n), nil
		default:
			return Value{}, &TypeError{Expected: "int or str", Found: KindBool, Op: "as int"}
		}
	default: // ast.TypeStr
		return StrVal(v.Format()), nil
	}
}
