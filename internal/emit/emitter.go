package emit

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/ir"
	"github.com/ajmd17/ace-lang-sub002/internal/sema"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

// Emitter lowers a resolved CompilationUnit into an ir.Chunk plus the
// bytecode.StaticTable the chunk's statics register into.
type Emitter struct {
	unit    *sema.CompilationUnit
	statics *bytecode.StaticTable
	errs    *diagnostics.List
}

func New(unit *sema.CompilationUnit, errs *diagnostics.List) *Emitter {
	return &Emitter{unit: unit, statics: &bytecode.StaticTable{}, errs: errs}
}

func (e *Emitter) Statics() *bytecode.StaticTable { return e.statics }

// Emit produces the top-level program chunk. The top level behaves
// like an implicit zero-argument function: its own frame, its own
// locals, terminated by an implicit EXIT rather than RET.
func (e *Emitter) Emit() *ir.Chunk {
	chunk := ir.NewChunk()
	fr := newFrame(nil, chunk)
	for _, stmt := range e.unit.Program.Statements {
		e.emitStatement(fr, chunk, stmt)
	}
	chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.EXIT)})
	return chunk
}

func (e *Emitter) errorf(tok token.Token, code, format string, args ...interface{}) {
	*e.errs = append(*e.errs, diagnostics.NewError(code, tok, format, args...))
}

// emitStatement lowers one statement into chunk, consulting the
// analyzer's Lowered side-table first so a for-statement emits its
// synthesized ActionExpression instead of being walked directly.
func (e *Emitter) emitStatement(fr *frame, chunk *ir.Chunk, stmt ast.Statement) {
	if lowered, ok := e.unit.Lowered[stmt]; ok {
		r := e.emitExpression(fr, chunk, lowered)
		fr.free(r)
		return
	}

	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		slot := fr.declareLocal(s.Name)
		if s.Value != nil {
			r := e.emitExpression(fr, chunk, s.Value)
			chunk.Append(&ir.StoreLocal{Slot: slot, Reg: r})
			fr.free(r)
		} else {
			r := fr.alloc()
			chunk.Append(&ir.ConstNull{Reg: r})
			chunk.Append(&ir.StoreLocal{Slot: slot, Reg: r})
			fr.free(r)
		}

	case *ast.AliasDeclaration:
		// An alias shares its aliasee's storage index; no
		// code is emitted, only a local-name binding to the same slot.
		if id, ok := s.Aliasee.(*ast.Identifier); ok {
			if slot, ok := fr.resolveLocal(id.Name); ok {
				fr.locals[s.Name] = slot
			}
		}

	case *ast.FunctionDeclaration:
		slot := fr.declareLocal(s.Name)
		r := e.emitFunctionExpression(fr, chunk, s.Fn)
		chunk.Append(&ir.StoreLocal{Slot: slot, Reg: r})
		fr.free(r)

	case *ast.TypeDeclaration:
		slot := fr.declareLocal(s.Name)
		names := make([]string, len(s.Members))
		for i, m := range s.Members {
			names[i] = m.Name
		}
		r := fr.alloc()
		chunk.Append(&ir.BuildableType{Reg: r, TypeName: s.Name, MemberNames: names})
		chunk.Append(&ir.StoreLocal{Slot: slot, Reg: r})
		fr.free(r)

	case *ast.BlockStatement:
		e.emitBlock(fr, chunk, s)

	case *ast.IfStatement:
		e.emitIf(fr, chunk, s)

	case *ast.WhileStatement:
		e.emitWhile(fr, chunk, s)

	case *ast.ForStatement:
		// Reaching here (rather than via Lowered) means sema didn't
		// lower this loop; nothing more to do than walk the body as a
		// fallback so diagnostics from inside it still surface.
		e.emitBlock(fr, chunk, s.Body)

	case *ast.ReturnStatement:
		if s.Value != nil {
			r := e.emitExpression(fr, chunk, s.Value)
			chunk.Append(&ir.Push{Reg: r})
			fr.free(r)
		}
		chunk.Append(&ir.Return{})

	case *ast.YieldStatement:
		r := byte(0)
		if s.Value != nil {
			r = e.emitExpression(fr, chunk, s.Value)
		} else {
			r = fr.alloc()
			chunk.Append(&ir.ConstNull{Reg: r})
		}
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.YIELD), Operands: []byte{r}})
		fr.free(r)

	case *ast.ThrowStatement:
		r := e.emitExpression(fr, chunk, s.Value)
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.THROW), Operands: []byte{r}})
		fr.free(r)

	case *ast.TryCatchStatement:
		e.emitTryCatch(fr, chunk, s)

	case *ast.PrintStatement:
		r := e.emitExpression(fr, chunk, s.Value)
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.ECHO), Operands: []byte{r}})
		fr.free(r)

	case *ast.BreakStatement:
		if fr.loopBreak != nil {
			chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: *fr.loopBreak})
		}

	case *ast.ContinueStatement:
		if fr.loopContinue != nil {
			chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: *fr.loopContinue})
		}

	case *ast.ExpressionStatement:
		r := e.emitExpression(fr, chunk, s.Expression)
		fr.free(r)

	case *ast.ImportStatement, *ast.DirectiveStatement, *ast.ModuleDeclaration:
		// Handled entirely by sema; nothing to emit.

	default:
		e.errorf(stmt.GetToken(), diagnostics.EmitInvariant, "emit: unhandled statement %T", stmt)
	}
}

func (e *Emitter) emitBlock(fr *frame, chunk *ir.Chunk, block *ast.BlockStatement) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		e.emitStatement(fr, chunk, stmt)
	}
}

func (e *Emitter) emitIf(fr *frame, chunk *ir.Chunk, s *ast.IfStatement) {
	cond := e.emitExpression(fr, chunk, s.Condition)
	zero := fr.alloc()
	chunk.Append(&ir.ConstBool{Reg: zero, Val: false})
	chunk.Append(&ir.Comparison{Left: cond, Right: zero})
	fr.free(zero)
	fr.free(cond)

	elseLabel := chunk.Labels.New()
	chunk.Append(&ir.Jump{Kind: ir.JumpIfEqual, Target: elseLabel})
	e.emitBlock(fr, chunk, s.Then)

	if s.Else != nil {
		endLabel := chunk.Labels.New()
		chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: endLabel})
		chunk.Append(&ir.LabelMarker{ID: elseLabel})
		switch elseBranch := s.Else.(type) {
		case *ast.BlockStatement:
			e.emitBlock(fr, chunk, elseBranch)
		default:
			e.emitStatement(fr, chunk, elseBranch)
		}
		chunk.Append(&ir.LabelMarker{ID: endLabel})
	} else {
		chunk.Append(&ir.LabelMarker{ID: elseLabel})
	}
}

func (e *Emitter) emitWhile(fr *frame, chunk *ir.Chunk, s *ast.WhileStatement) {
	top := chunk.Labels.New()
	end := chunk.Labels.New()

	prevBreak, prevContinue := fr.loopBreak, fr.loopContinue
	fr.loopBreak, fr.loopContinue = &end, &top
	defer func() { fr.loopBreak, fr.loopContinue = prevBreak, prevContinue }()

	chunk.Append(&ir.LabelMarker{ID: top})
	cond := e.emitExpression(fr, chunk, s.Condition)
	zero := fr.alloc()
	chunk.Append(&ir.ConstBool{Reg: zero, Val: false})
	chunk.Append(&ir.Comparison{Left: cond, Right: zero})
	fr.free(zero)
	fr.free(cond)
	chunk.Append(&ir.Jump{Kind: ir.JumpIfEqual, Target: end})
	e.emitBlock(fr, chunk, s.Body)
	chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: top})
	chunk.Append(&ir.LabelMarker{ID: end})
}

func (e *Emitter) emitTryCatch(fr *frame, chunk *ir.Chunk, s *ast.TryCatchStatement) {
	body := ir.NewChunk()
	e.emitBlock(fr, body, s.Try)

	catchLabel := chunk.Labels.New()
	chunk.Append(&ir.BuildableTryCatch{CatchTarget: catchLabel, Body: body})

	endLabel := chunk.Labels.New()
	chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: endLabel})
	chunk.Append(&ir.LabelMarker{ID: catchLabel})
	if s.CatchID != "" {
		slot := fr.declareLocal(s.CatchID)
		r := fr.alloc()
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.LOAD_REF), Operands: []byte{r}})
		chunk.Append(&ir.StoreLocal{Slot: slot, Reg: r})
		fr.free(r)
	}
	e.emitBlock(fr, chunk, s.Catch)
	chunk.Append(&ir.LabelMarker{ID: endLabel})
}
