package celllib

import "github.com/sarchlab/gatesim/bitvec"

//go:generate mockgen -write_package_comment=false -package=mockcelllib -destination=mockcelllib/mock_celllib.go github.com/sarchlab/gatesim/celllib CellBehavior

// CellBehavior is the interface form of Evaluator. Entry.Eval is a plain
// function for production use (cheap to construct for 10 built-in
// gates), but tests that need to assert call counts or inject failure
// modes adapt a CellBehavior into an Evaluator via Entry.Eval =
// behavior.Eval, which is what makes the type mockgen-able.
type CellBehavior interface {
	Eval(inputs []bitvec.Bit) []bitvec.Bit
}
