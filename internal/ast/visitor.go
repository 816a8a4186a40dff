package ast

// Visitor is implemented by each pipeline stage that walks the AST
// (the semantic analyzer and the emitter). Using a
// double-dispatch Accept/Visit pair instead of runtime type switches at
// every call site keeps each stage's node-kind coverage exhaustive and
// easy to audit — if a node kind is added here, every Visitor
// implementation fails to compile until it is handled.
type Visitor interface {
	VisitProgram(n *Program)

	// Statements
	VisitModuleDeclaration(n *ModuleDeclaration)
	VisitImportStatement(n *ImportStatement)
	VisitDirectiveStatement(n *DirectiveStatement)
	VisitVariableDeclaration(n *VariableDeclaration)
	VisitAliasDeclaration(n *AliasDeclaration)
	VisitTypeDeclaration(n *TypeDeclaration)
	VisitFunctionDeclaration(n *FunctionDeclaration)
	VisitBlockStatement(n *BlockStatement)
	VisitIfStatement(n *IfStatement)
	VisitWhileStatement(n *WhileStatement)
	VisitForStatement(n *ForStatement)
	VisitReturnStatement(n *ReturnStatement)
	VisitYieldStatement(n *YieldStatement)
	VisitThrowStatement(n *ThrowStatement)
	VisitTryCatchStatement(n *TryCatchStatement)
	VisitPrintStatement(n *PrintStatement)
	VisitBreakStatement(n *BreakStatement)
	VisitContinueStatement(n *ContinueStatement)
	VisitExpressionStatement(n *ExpressionStatement)

	// Expressions
	VisitIdentifier(n *Identifier)
	VisitIntegerLiteral(n *IntegerLiteral)
	VisitFloatLiteral(n *FloatLiteral)
	VisitStringLiteral(n *StringLiteral)
	VisitBoolLiteral(n *BoolLiteral)
	VisitNilLiteral(n *NilLiteral)
	VisitArrayExpression(n *ArrayExpression)
	VisitArrayAccess(n *ArrayAccess)
	VisitMemberAccess(n *MemberAccess)
	VisitBinaryExpression(n *BinaryExpression)
	VisitUnaryExpression(n *UnaryExpression)
	VisitAssignmentExpression(n *AssignmentExpression)
	VisitCallExpression(n *CallExpression)
	VisitFunctionExpression(n *FunctionExpression)
	VisitBlockExpression(n *BlockExpression)
	VisitNewExpression(n *NewExpression)
	VisitTypeExpression(n *TypeExpression)
	VisitTemplateExpression(n *TemplateExpression)
	VisitTemplateInstantiation(n *TemplateInstantiation)
	VisitHasExpression(n *HasExpression)
	VisitSelfExpression(n *SelfExpression)
	VisitTypeOfExpression(n *TypeOfExpression)
	VisitValueOfExpression(n *ValueOfExpression)
	VisitActionExpression(n *ActionExpression)
}
