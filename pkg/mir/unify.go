package mir

import "fmt"

// UnificationError reports that x could not be unified with y.
type UnificationError struct {
	X, Y string
}

func (e *UnificationError) Error() string {
	return fmt.Sprintf("cannot unify %s and %s", e.X, e.Y)
}

// OccursError reports a would-be recursive (infinite) unification.
type OccursError struct{}

func (e *OccursError) Error() string { return "recursive unification encountered" }

func (c *UnifyContext) addSubst(v, x TypeId) error {
	n := c.at(v)
	if n.tag != nodeVar {
		return fmt.Errorf("expected a variable")
	}
	c.subst[n.varNum] = x
	return nil
}

func (c *UnifyContext) lookupSubst(ty TypeId) (TypeId, bool) {
	n := c.at(ty)
	if n.tag != nodeVar {
		return TypeId{}, false
	}
	t, ok := c.subst[n.varNum]
	return t, ok
}

// Apply follows ty's substitution chain to a fixed point, path-compressing
// as it goes for applications.
func (c *UnifyContext) Apply(ty TypeId) TypeId {
	n := c.at(ty)
	switch n.tag {
	case nodeVar:
		if t, ok := c.subst[n.varNum]; ok {
			return c.Apply(t)
		}
		return ty
	case nodeApp:
		return c.applyApp(ty)
	default:
		return ty
	}
}

func (c *UnifyContext) applyApp(ty TypeId) TypeId {
	n := *c.at(ty)
	switch n.aTag {
	case appBits:
		n.bitsSignFlag = c.Apply(n.bitsSignFlag)
		n.bitsLen = c.Apply(n.bitsLen)
	case appSignal:
		n.sigData = c.Apply(n.sigData)
		n.sigClock = c.Apply(n.sigClock)
	case appArray:
		n.arrBase = c.Apply(n.arrBase)
		n.arrLen = c.Apply(n.arrLen)
	case appStruct:
		fields := make([]structField, len(n.structFields))
		for i, f := range n.structFields {
			fields[i] = structField{Name: f.Name, Ty: c.Apply(f.Ty)}
		}
		n.structFields = fields
	case appEnum:
		n.enumDiscriminant = c.Apply(n.enumDiscriminant)
		tys := make([]TypeId, len(n.enumVariantTys))
		for i, t := range n.enumVariantTys {
			tys[i] = c.Apply(t)
		}
		n.enumVariantTys = tys
	case appTuple:
		elems := make([]TypeId, len(n.tupleElems))
		for i, e := range n.tupleElems {
			elems[i] = c.Apply(e)
		}
		n.tupleElems = elems
	}
	return TypeId{handle: c.push(n), Loc: ty.Loc}
}

// Equal reports whether x and y, after substitution, describe the same
// type node.
func (c *UnifyContext) Equal(x, y TypeId) bool {
	x, y = c.Apply(x), c.Apply(y)
	return c.equalNodes(x, y)
}

func (c *UnifyContext) equalNodes(x, y TypeId) bool {
	nx, ny := c.at(x), c.at(y)
	if nx.tag != ny.tag {
		return false
	}
	switch nx.tag {
	case nodeVar:
		return nx.varNum == ny.varNum
	case nodeConst:
		if nx.cTag != ny.cTag {
			return false
		}
		switch nx.cTag {
		case constClock:
			return nx.color == ny.color
		case constLength:
			return nx.length == ny.length
		case constSignFlag:
			return nx.signFlag == ny.signFlag
		default:
			return true
		}
	default:
		if nx.aTag != ny.aTag {
			return false
		}
		switch nx.aTag {
		case appBits:
			return c.equalNodes(nx.bitsSignFlag, ny.bitsSignFlag) && c.equalNodes(nx.bitsLen, ny.bitsLen)
		case appSignal:
			return c.equalNodes(nx.sigData, ny.sigData) && c.equalNodes(nx.sigClock, ny.sigClock)
		case appArray:
			return c.equalNodes(nx.arrBase, ny.arrBase) && c.equalNodes(nx.arrLen, ny.arrLen)
		case appStruct:
			if nx.structName != ny.structName || len(nx.structFields) != len(ny.structFields) {
				return false
			}
			for i := range nx.structFields {
				if nx.structFields[i].Name != ny.structFields[i].Name ||
					!c.equalNodes(nx.structFields[i].Ty, ny.structFields[i].Ty) {
					return false
				}
			}
			return true
		case appEnum:
			if nx.enumName != ny.enumName || len(nx.enumVariants) != len(ny.enumVariants) {
				return false
			}
			for i := range nx.enumVariants {
				if nx.enumVariants[i] != ny.enumVariants[i] ||
					!c.equalNodes(nx.enumVariantTys[i], ny.enumVariantTys[i]) {
					return false
				}
			}
			return c.equalNodes(nx.enumDiscriminant, ny.enumDiscriminant)
		default: // appTuple
			if len(nx.tupleElems) != len(ny.tupleElems) {
				return false
			}
			for i := range nx.tupleElems {
				if !c.equalNodes(nx.tupleElems[i], ny.tupleElems[i]) {
					return false
				}
			}
			return true
		}
	}
}

// Unify makes x and y describe the same type, recording substitutions for
// any free variables encountered; it fails if their shapes are
// irreconcilable or doing so would create a recursive type.
func (c *UnifyContext) Unify(x, y TypeId) error {
	if c.equalNodes(x, y) {
		return nil
	}
	nx, ny := c.at(x), c.at(y)
	switch {
	case nx.tag == nodeVar:
		return c.unifyVariable(x, y)
	case ny.tag == nodeVar:
		return c.unifyVariable(y, x)
	case nx.tag == nodeConst && ny.tag == nodeConst:
		if c.equalNodes(x, y) {
			return nil
		}
		return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
	case nx.tag == nodeApp && ny.tag == nodeApp:
		return c.unifyApp(x, y)
	default:
		return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
	}
}

func (c *UnifyContext) unifyVariable(v, x TypeId) error {
	if t, ok := c.lookupSubst(v); ok {
		return c.Unify(t, x)
	}
	if c.isVar(x) {
		if t, ok := c.lookupSubst(x); ok {
			return c.Unify(v, t)
		}
	}
	if c.occurs(v, x) {
		return &OccursError{}
	}
	return c.addSubst(v, x)
}

func (c *UnifyContext) unifyApp(x, y TypeId) error {
	nx, ny := c.at(x), c.at(y)
	if nx.aTag != ny.aTag {
		return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
	}
	switch nx.aTag {
	case appTuple:
		if len(nx.tupleElems) != len(ny.tupleElems) {
			return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
		}
		for i := range nx.tupleElems {
			if err := c.Unify(nx.tupleElems[i], ny.tupleElems[i]); err != nil {
				return err
			}
		}
		return nil
	case appArray:
		if err := c.Unify(nx.arrBase, ny.arrBase); err != nil {
			return err
		}
		return c.Unify(nx.arrLen, ny.arrLen)
	case appStruct:
		if nx.structName != ny.structName || len(nx.structFields) != len(ny.structFields) {
			return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
		}
		for i := range nx.structFields {
			if nx.structFields[i].Name != ny.structFields[i].Name {
				return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
			}
			if err := c.Unify(nx.structFields[i].Ty, ny.structFields[i].Ty); err != nil {
				return err
			}
		}
		return nil
	case appEnum:
		if nx.enumName != ny.enumName || len(nx.enumVariants) != len(ny.enumVariants) {
			return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
		}
		for i := range nx.enumVariants {
			if nx.enumVariants[i] != ny.enumVariants[i] {
				return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
			}
			if err := c.Unify(nx.enumVariantTys[i], ny.enumVariantTys[i]); err != nil {
				return err
			}
		}
		return c.Unify(nx.enumDiscriminant, ny.enumDiscriminant)
	case appBits:
		if err := c.Unify(nx.bitsSignFlag, ny.bitsSignFlag); err != nil {
			return err
		}
		return c.Unify(nx.bitsLen, ny.bitsLen)
	case appSignal:
		if err := c.Unify(nx.sigData, ny.sigData); err != nil {
			return err
		}
		return c.Unify(nx.sigClock, ny.sigClock)
	default:
		return &UnificationError{X: c.Desc(x), Y: c.Desc(y)}
	}
}

func (c *UnifyContext) occurs(v, term TypeId) bool {
	if c.isVar(term) {
		if c.at(term).varNum == c.at(v).varNum {
			return true
		}
		if t, ok := c.lookupSubst(term); ok {
			return c.occurs(v, t)
		}
		return false
	}
	n := c.at(term)
	if n.tag != nodeApp {
		return false
	}
	for _, t := range c.subTypes(n) {
		if c.occurs(v, t) {
			return true
		}
	}
	return false
}

func (c *UnifyContext) subTypes(n *node) []TypeId {
	switch n.aTag {
	case appBits:
		return []TypeId{n.bitsSignFlag, n.bitsLen}
	case appSignal:
		return []TypeId{n.sigData, n.sigClock}
	case appArray:
		return []TypeId{n.arrBase, n.arrLen}
	case appStruct:
		out := make([]TypeId, len(n.structFields))
		for i, f := range n.structFields {
			out[i] = f.Ty
		}
		return out
	case appEnum:
		out := append([]TypeId{n.enumDiscriminant}, n.enumVariantTys...)
		return out
	default: // appTuple
		return n.tupleElems
	}
}
