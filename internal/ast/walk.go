package ast

// Walk visits n and every descendant node, depth-first, calling fn on
// each one. It exists for analyses — like closure-capture detection —
// that only need a flat traversal rather than the double-dispatch
// Visitor contract every node already implements.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch node := n.(type) {
	case *Program:
		for _, s := range node.Statements {
			Walk(s, fn)
		}
	case *BlockStatement:
		for _, s := range node.Statements {
			Walk(s, fn)
		}
	case *IfStatement:
		Walk(node.Condition, fn)
		Walk(node.Then, fn)
		if node.Else != nil {
			Walk(node.Else, fn)
		}
	case *WhileStatement:
		Walk(node.Condition, fn)
		Walk(node.Body, fn)
	case *ForStatement:
		Walk(node.Iteree, fn)
		Walk(node.Body, fn)
	case *ReturnStatement:
		if node.Value != nil {
			Walk(node.Value, fn)
		}
	case *YieldStatement:
		if node.Value != nil {
			Walk(node.Value, fn)
		}
	case *ThrowStatement:
		Walk(node.Value, fn)
	case *TryCatchStatement:
		Walk(node.Try, fn)
		Walk(node.Catch, fn)
	case *PrintStatement:
		Walk(node.Value, fn)
	case *ExpressionStatement:
		Walk(node.Expression, fn)
	case *VariableDeclaration:
		if node.Prototype != nil {
			Walk(node.Prototype, fn)
		}
		if node.Value != nil {
			Walk(node.Value, fn)
		}
	case *AliasDeclaration:
		Walk(node.Aliasee, fn)
	case *TypeDeclaration:
		if node.Base != nil {
			Walk(node.Base, fn)
		}
		for _, m := range node.Members {
			if m.Default != nil {
				Walk(m.Default, fn)
			}
		}
	case *FunctionDeclaration:
		Walk(node.Fn, fn)
	case *ArrayExpression:
		for _, el := range node.Elements {
			Walk(el, fn)
		}
	case *ArrayAccess:
		Walk(node.Target, fn)
		Walk(node.Index, fn)
	case *MemberAccess:
		Walk(node.Target, fn)
	case *BinaryExpression:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	case *UnaryExpression:
		Walk(node.Operand, fn)
	case *AssignmentExpression:
		Walk(node.Target, fn)
		Walk(node.Value, fn)
	case *CallExpression:
		Walk(node.Callee, fn)
		for _, a := range node.Args {
			Walk(a, fn)
		}
	case *FunctionExpression:
		for _, p := range node.Params {
			if p.Default != nil {
				Walk(p.Default, fn)
			}
		}
		Walk(node.Body, fn)
	case *BlockExpression:
		Walk(node.Block, fn)
	case *NewExpression:
		Walk(node.TypeExpr, fn)
		for _, a := range node.Args {
			Walk(a, fn)
		}
	case *TypeExpression:
		if node.Base != nil {
			Walk(node.Base, fn)
		}
		for _, m := range node.Members {
			if m.Default != nil {
				Walk(m.Default, fn)
			}
		}
	case *TemplateExpression:
		Walk(node.Inner, fn)
	case *TemplateInstantiation:
		Walk(node.Template, fn)
		for _, a := range node.Args {
			Walk(a, fn)
		}
	case *HasExpression:
		Walk(node.Target, fn)
	case *TypeOfExpression:
		Walk(node.Target, fn)
	case *ValueOfExpression:
		Walk(node.Target, fn)
	case *ActionExpression:
		Walk(node.Iteree, fn)
		Walk(node.Callback, fn)
	}
}
