package mip

// LinearExpr is a mutable integer linear expression builder.
//
//	e := mip.NewLinearExpr().Add(x).AddTerm(w, 1).AddConstant(12)
type LinearExpr struct {
	terms    []Term
	constant int
}

// NewLinearExpr returns an empty expression.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Sum returns the expression v1 + v2 + ...
func Sum(vars ...Var) *LinearExpr {
	e := NewLinearExpr()
	for _, v := range vars {
		e.Add(v)
	}
	return e
}

// Add appends v with coefficient 1.
func (e *LinearExpr) Add(v Var) *LinearExpr {
	return e.AddTerm(v, 1)
}

// Sub appends v with coefficient -1.
func (e *LinearExpr) Sub(v Var) *LinearExpr {
	return e.AddTerm(v, -1)
}

// AddTerm appends coef*v.
func (e *LinearExpr) AddTerm(v Var, coef int) *LinearExpr {
	if coef != 0 {
		e.terms = append(e.terms, Term{Var: v, Coef: coef})
	}
	return e
}

// AddConstant adds c to the expression constant.
func (e *LinearExpr) AddConstant(c int) *LinearExpr {
	e.constant += c
	return e
}

// AddExpr appends scale*other.
func (e *LinearExpr) AddExpr(other *LinearExpr, scale int) *LinearExpr {
	for _, t := range other.terms {
		e.AddTerm(t.Var, t.Coef*scale)
	}
	e.constant += other.constant * scale
	return e
}

// Clone returns an independent copy.
func (e *LinearExpr) Clone() *LinearExpr {
	c := &LinearExpr{constant: e.constant}
	c.terms = append(c.terms, e.terms...)
	return c
}

// Terms returns the raw (unmerged) terms.
func (e *LinearExpr) Terms() []Term { return e.terms }

// Constant returns the expression constant.
func (e *LinearExpr) Constant() int { return e.constant }

// Eval computes the expression value for an assignment.
func (e *LinearExpr) Eval(values []int) int {
	total := e.constant
	for _, t := range e.terms {
		total += t.Coef * values[t.Var.index]
	}
	return total
}
