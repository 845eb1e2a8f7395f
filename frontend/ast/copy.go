package ast

// CopyExpr deep-copies an expression tree. Macro templates are copied on
// every expansion because a rule may fire many times.
func CopyExpr(e Expr) Expr {
	return e.Transform(func(sub Expr) Expr { return sub })
}

// CopyPattern deep-copies a pattern tree.
func CopyPattern(p Pattern) Pattern {
	switch p := p.(type) {
	case *BindPattern:
		copied := *p
		return &copied
	case *LiteralPattern:
		copied := *p
		return &copied
	case *LabelPattern:
		copied := *p
		copied.Pattern = CopyPattern(p.Pattern)
		return &copied
	case *ChainPattern:
		copied := *p
		copied.Patterns = make([]Pattern, len(p.Patterns))
		for i, sub := range p.Patterns {
			copied.Patterns[i] = CopyPattern(sub)
		}
		return &copied
	default:
		panic("unhandled pattern in CopyPattern")
	}
}

// CopyArgPat deep-copies a macro signature.
func CopyArgPat(p ArgPat) ArgPat {
	switch p := p.(type) {
	case *KeywordPat:
		copied := *p
		return &copied
	case *BinderPat:
		copied := *p
		return &copied
	case *GroupPat:
		copied := *p
		copied.Elems = make([]ArgPat, len(p.Elems))
		for i, sub := range p.Elems {
			copied.Elems[i] = CopyArgPat(sub)
		}
		return &copied
	default:
		panic("unhandled argument pattern in CopyArgPat")
	}
}
