package emit

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/ir"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

var arithOps = map[token.Type]byte{
	token.PLUS: byte(bytecode.ADD), token.MINUS: byte(bytecode.SUB),
	token.STAR: byte(bytecode.MUL), token.SLASH: byte(bytecode.DIV),
	token.PERCENT: byte(bytecode.MOD), token.AMP: byte(bytecode.AND),
	token.PIPE: byte(bytecode.OR), token.CARET: byte(bytecode.XOR),
	token.SHL: byte(bytecode.SHL), token.SHR: byte(bytecode.SHR),
}

var compareKinds = map[token.Type]ir.JumpKind{
	token.EQ:     ir.JumpIfEqual,
	token.NOT_EQ: ir.JumpIfNotEqual,
	token.GT:     ir.JumpIfGreater,
	token.GE:     ir.JumpIfGreaterEqual,
}

var assignOps = map[token.Type]token.Type{
	token.PLUS_ASSIGN:  token.PLUS,
	token.MINUS_ASSIGN: token.MINUS,
	token.STAR_ASSIGN:  token.STAR,
	token.SLASH_ASSIGN: token.SLASH,
	token.PCT_ASSIGN:   token.PERCENT,
	token.AND_ASSIGN:   token.AMP,
	token.OR_ASSIGN:    token.PIPE,
	token.XOR_ASSIGN:   token.CARET,
}

// emitExpression lowers expr into chunk and returns the register
// holding its value. The caller is responsible for freeing it via
// fr.free once done, restoring the allocator to its prior high-water
// mark ( operand-evaluation-order strategies).
func (e *Emitter) emitExpression(fr *frame, chunk *ir.Chunk, expr ast.Expression) byte {
	if expr == nil {
		r := fr.alloc()
		chunk.Append(&ir.ConstNull{Reg: r})
		return r
	}

	// Constant-folded values short-circuit straight to a literal load,
	// regardless of original shape.
	if v := expr.ValueOf(); v != nil && v != expr {
		return e.emitExpression(fr, chunk, v)
	}

	switch x := expr.(type) {
	case *ast.IntegerLiteral:
		r := fr.alloc()
		if x.Value.IsInt64() {
			chunk.Append(&ir.ConstI64{Reg: r, Val: x.Value.Int64()})
		} else {
			chunk.Append(&ir.ConstI32{Reg: r, Val: int32(x.Value.Int64())})
		}
		return r

	case *ast.FloatLiteral:
		r := fr.alloc()
		chunk.Append(&ir.ConstF64{Reg: r, Val: x.Value})
		return r

	case *ast.StringLiteral:
		r := fr.alloc()
		chunk.Append(&ir.BuildableString{Reg: r, Value: x.Value})
		return r

	case *ast.BoolLiteral:
		r := fr.alloc()
		chunk.Append(&ir.ConstBool{Reg: r, Val: x.Value})
		return r

	case *ast.NilLiteral:
		r := fr.alloc()
		chunk.Append(&ir.ConstNull{Reg: r})
		return r

	case *ast.Identifier:
		return e.emitIdentifierLoad(fr, chunk, x)

	case *ast.SelfExpression:
		r := fr.alloc()
		chunk.Append(&ir.StorageOperation{Target: ir.StorageLocal, Reg: r, Index: 0})
		return r

	case *ast.ArrayExpression:
		r := fr.alloc()
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.NEW_ARRAY), Operands: encodeU16Operand(r, uint16(len(x.Elements)))})
		for i, el := range x.Elements {
			v := e.emitExpression(fr, chunk, el)
			idxReg := fr.alloc()
			chunk.Append(&ir.ConstI32{Reg: idxReg, Val: int32(i)})
			chunk.Append(&ir.StorageOperation{Target: ir.StorageArrayIndex, Store: true, Reg: v, OtherReg: r, IndexReg: idxReg})
			fr.free(idxReg)
			fr.free(v)
		}
		return r

	case *ast.ArrayAccess:
		target := e.emitExpression(fr, chunk, x.Target)
		idx := e.emitExpression(fr, chunk, x.Index)
		r := fr.alloc()
		chunk.Append(&ir.StorageOperation{Target: ir.StorageArrayIndex, Reg: r, OtherReg: target, IndexReg: idx})
		fr.free(idx)
		fr.free(target)
		return r

	case *ast.MemberAccess:
		target := e.emitExpression(fr, chunk, x.Target)
		hash := stringHash(x.Member)
		r := fr.alloc()
		chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByHash, Reg: r, OtherReg: target, Index: hash})
		fr.free(target)
		return r

	case *ast.UnaryExpression:
		return e.emitUnary(fr, chunk, x)

	case *ast.BinaryExpression:
		return e.emitBinary(fr, chunk, x)

	case *ast.AssignmentExpression:
		return e.emitAssignment(fr, chunk, x)

	case *ast.CallExpression:
		return e.emitCall(fr, chunk, x)

	case *ast.FunctionExpression:
		return e.emitFunctionExpression(fr, chunk, x)

	case *ast.NewExpression:
		return e.emitNew(fr, chunk, x)

	case *ast.TypeExpression:
		names := make([]string, len(x.Members))
		for i, m := range x.Members {
			names[i] = m.Name
		}
		r := fr.alloc()
		chunk.Append(&ir.BuildableType{Reg: r, TypeName: x.Name, MemberNames: names})
		return r

	case *ast.BlockExpression:
		// Reified as an immediately-invoked synthesized closure: a
		// zero-argument function whose last statement's value becomes
		// the call's result.
		body := x.Block
		if n := len(body.Statements); n > 0 {
			if last, ok := body.Statements[n-1].(*ast.ExpressionStatement); ok {
				stmts := append(append([]ast.Statement(nil), body.Statements[:n-1]...),
					&ast.ReturnStatement{Token: last.Token, Value: last.Expression})
				body = &ast.BlockStatement{Token: body.Token, Statements: stmts}
			}
		}
		synth := &ast.FunctionExpression{Token: x.Token, Body: body}
		fnReg := e.emitFunctionExpression(fr, chunk, synth)
		r := fr.alloc()
		chunk.Append(&ir.FunctionCall{FnReg: fnReg, Nargs: 0})
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.MOV_REG), Operands: []byte{r, fnReg}})
		fr.free(fnReg)
		return r

	case *ast.ActionExpression:
		iteree := e.emitExpression(fr, chunk, x.Iteree)
		cb := e.emitFunctionExpression(fr, chunk, x.Callback)
		r := fr.alloc()
		chunk.Append(&ir.ConstNull{Reg: r})
		e.emitActionLoop(fr, chunk, iteree, cb, x.Callback.Params)
		fr.free(cb)
		fr.free(iteree)
		return r

	case *ast.HasExpression:
		target := e.emitExpression(fr, chunk, x.Target)
		r := fr.alloc()
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.LOAD_MEM_HASH), Operands: encodeU32Operands(r, target, stringHash(x.Member))})
		fr.free(target)
		return r

	case *ast.TypeOfExpression, *ast.ValueOfExpression, *ast.TemplateExpression, *ast.TemplateInstantiation:
		// Fully resolved at compile time by sema; if a literal value
		// wasn't folded above there is nothing left to emit at runtime.
		r := fr.alloc()
		chunk.Append(&ir.ConstNull{Reg: r})
		return r

	default:
		e.errorf(expr.GetToken(), diagnostics.EmitInvariant, "emit: unhandled expression %T", expr)
		r := fr.alloc()
		chunk.Append(&ir.ConstNull{Reg: r})
		return r
	}
}

func (e *Emitter) emitIdentifierLoad(fr *frame, chunk *ir.Chunk, id *ast.Identifier) byte {
	if slot, ok := fr.resolveLocal(id.Name); ok {
		r := fr.alloc()
		chunk.Append(&ir.StorageOperation{Target: ir.StorageLocal, Reg: r, Index: uint32(slot)})
		return r
	}
	// Outer-scope capture: loaded off the closure's self member by
	// name hash rather than a local slot.
	r := fr.alloc()
	self := fr.alloc()
	chunk.Append(&ir.StorageOperation{Target: ir.StorageLocal, Reg: self, Index: 0})
	chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByHash, Reg: r, OtherReg: self, Index: stringHash(id.Name)})
	fr.free(self)
	return r
}

func (e *Emitter) emitUnary(fr *frame, chunk *ir.Chunk, x *ast.UnaryExpression) byte {
	r := e.emitExpression(fr, chunk, x.Operand)
	switch x.Operator {
	case token.MINUS:
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.NEG), Operands: []byte{r}})
	case token.BANG:
		zero := fr.alloc()
		chunk.Append(&ir.ConstBool{Reg: zero, Val: false})
		chunk.Append(&ir.Comparison{Left: r, Right: zero})
		fr.free(zero)
		chunk.Append(&ir.ConstBool{Reg: r, Val: true})
	case token.TILDE:
		neg1 := fr.alloc()
		chunk.Append(&ir.ConstI64{Reg: neg1, Val: -1})
		chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.XOR), Operands: []byte{r, neg1}})
		fr.free(neg1)
	}
	return r
}

func (e *Emitter) emitBinary(fr *frame, chunk *ir.Chunk, x *ast.BinaryExpression) byte {
	if x.Operator == token.AND_AND || x.Operator == token.OR_OR {
		return e.emitShortCircuit(fr, chunk, x)
	}

	// Evaluate left-then-right when the right side has no side effects
	// that could invalidate an already-materialized left register,
	// otherwise evaluate the (side-effecting) right first and stash it
	// to a local before evaluating left.
	var left, right byte
	if !x.Right.MayHaveSideEffects() {
		left = e.emitExpression(fr, chunk, x.Left)
		right = e.emitExpression(fr, chunk, x.Right)
	} else {
		rtmp := e.emitExpression(fr, chunk, x.Right)
		stash := fr.declareLocal("")
		chunk.Append(&ir.StoreLocal{Slot: stash, Reg: rtmp})
		fr.free(rtmp)
		left = e.emitExpression(fr, chunk, x.Left)
		right = fr.alloc()
		chunk.Append(&ir.StorageOperation{Target: ir.StorageLocal, Reg: right, Index: uint32(stash)})
	}

	if op, ok := arithOps[x.Operator]; ok {
		chunk.Append(&ir.RawOperation{OpByte: op, Operands: []byte{left, right}})
		fr.free(right)
		return left
	}
	if kind, ok := compareKinds[x.Operator]; ok {
		return e.emitComparisonToBool(fr, chunk, left, right, kind, false)
	}
	if x.Operator == token.LT {
		return e.emitComparisonToBool(fr, chunk, left, right, ir.JumpIfGreater, true)
	}
	if x.Operator == token.LE {
		return e.emitComparisonToBool(fr, chunk, left, right, ir.JumpIfGreaterEqual, true)
	}
	fr.free(right)
	return left
}

// emitComparisonToBool materializes a Comparison into a boolean
// register using trueKind, the jump taken when the comparison holds,
// over the "load false" instruction — e.g. for `==` we jump-if-equal.
// swap compares right against left, so `a < b` lowers as `b > a`.
func (e *Emitter) emitComparisonToBool(fr *frame, chunk *ir.Chunk, left, right byte, trueKind ir.JumpKind, swap bool) byte {
	if swap {
		chunk.Append(&ir.Comparison{Left: right, Right: left})
	} else {
		chunk.Append(&ir.Comparison{Left: left, Right: right})
	}
	fr.free(right)
	isTrue := chunk.Labels.New()
	chunk.Append(&ir.Jump{Kind: trueKind, Target: isTrue})
	chunk.Append(&ir.ConstBool{Reg: left, Val: false})
	end := chunk.Labels.New()
	chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: end})
	chunk.Append(&ir.LabelMarker{ID: isTrue})
	chunk.Append(&ir.ConstBool{Reg: left, Val: true})
	chunk.Append(&ir.LabelMarker{ID: end})
	return left
}

func (e *Emitter) emitShortCircuit(fr *frame, chunk *ir.Chunk, x *ast.BinaryExpression) byte {
	left := e.emitExpression(fr, chunk, x.Left)
	falseVal := fr.alloc()
	chunk.Append(&ir.ConstBool{Reg: falseVal, Val: false})
	chunk.Append(&ir.Comparison{Left: left, Right: falseVal})
	fr.free(falseVal)

	end := chunk.Labels.New()
	if x.Operator == token.AND_AND {
		chunk.Append(&ir.Jump{Kind: ir.JumpIfEqual, Target: end}) // left is false, short-circuit
	} else {
		chunk.Append(&ir.Jump{Kind: ir.JumpIfNotEqual, Target: end}) // left is true, short-circuit
	}
	right := e.emitExpression(fr, chunk, x.Right)
	chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.MOV_REG), Operands: []byte{left, right}})
	fr.free(right)
	chunk.Append(&ir.LabelMarker{ID: end})
	return left
}

func (e *Emitter) emitAssignment(fr *frame, chunk *ir.Chunk, x *ast.AssignmentExpression) byte {
	value := x.Value
	if binOp, ok := assignOps[x.Operator]; ok {
		value = &ast.BinaryExpression{Token: x.Token, Operator: binOp, Left: x.Target, Right: x.Value}
	}
	v := e.emitExpression(fr, chunk, value)
	e.emitStoreTo(fr, chunk, x.Target, v)
	return v
}

func (e *Emitter) emitStoreTo(fr *frame, chunk *ir.Chunk, target ast.Expression, v byte) {
	switch t := target.(type) {
	case *ast.Identifier:
		if slot, ok := fr.resolveLocal(t.Name); ok {
			chunk.Append(&ir.StoreLocal{Slot: slot, Reg: v})
			return
		}
		self := fr.alloc()
		chunk.Append(&ir.StorageOperation{Target: ir.StorageLocal, Reg: self, Index: 0})
		chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByHash, Store: true, Reg: v, OtherReg: self, Index: stringHash(t.Name)})
		fr.free(self)
	case *ast.MemberAccess:
		base := e.emitExpression(fr, chunk, t.Target)
		chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByHash, Store: true, Reg: v, OtherReg: base, Index: stringHash(t.Member)})
		fr.free(base)
	case *ast.ArrayAccess:
		base := e.emitExpression(fr, chunk, t.Target)
		idx := e.emitExpression(fr, chunk, t.Index)
		chunk.Append(&ir.StorageOperation{Target: ir.StorageArrayIndex, Store: true, Reg: v, OtherReg: base, IndexReg: idx})
		fr.free(idx)
		fr.free(base)
	}
}

func (e *Emitter) emitCall(fr *frame, chunk *ir.Chunk, x *ast.CallExpression) byte {
	fn := e.emitExpression(fr, chunk, x.Callee)
	argRegs := make([]byte, 0, len(x.Args))
	for _, a := range x.Args {
		argRegs = append(argRegs, e.emitExpression(fr, chunk, a))
	}
	for i := len(argRegs) - 1; i >= 0; i-- {
		chunk.Append(&ir.Push{Reg: argRegs[i]})
		fr.free(argRegs[i])
	}
	chunk.Append(&ir.FunctionCall{FnReg: fn, Nargs: byte(len(x.Args))})
	return fn
}

// emitActionLoop is the counting loop both for-each and numeric-for
// lower to: it walks iteree by index from 0 to LEN(iteree), invoking
// cb once per element rather than once for the whole iteree. A call
// clobbers its FnReg with the callee's result (vm.ret writes the
// result into the caller's original fnReg), so cb is copied into a
// fresh register before every invocation rather than called directly.
func (e *Emitter) emitActionLoop(fr *frame, chunk *ir.Chunk, iteree, cb byte, params []*ast.Parameter) {
	n := fr.alloc()
	chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.LEN), Operands: []byte{n, iteree}})
	i := fr.alloc()
	chunk.Append(&ir.ConstI32{Reg: i, Val: 0})

	top := chunk.Labels.New()
	end := chunk.Labels.New()
	chunk.Append(&ir.LabelMarker{ID: top})
	chunk.Append(&ir.Comparison{Left: i, Right: n})
	chunk.Append(&ir.Jump{Kind: ir.JumpIfGreaterEqual, Target: end})

	elem := fr.alloc()
	chunk.Append(&ir.StorageOperation{Target: ir.StorageArrayIndex, Reg: elem, OtherReg: iteree, IndexReg: i})

	callReg := fr.alloc()
	chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.MOV_REG), Operands: []byte{callReg, cb}})

	var argRegs []byte
	switch {
	case len(params) >= 2:
		argRegs = []byte{i, elem} // (index, element)
	case len(params) == 1:
		argRegs = []byte{elem}
	}
	for k := len(argRegs) - 1; k >= 0; k-- {
		chunk.Append(&ir.Push{Reg: argRegs[k]})
	}
	chunk.Append(&ir.FunctionCall{FnReg: callReg, Nargs: byte(len(argRegs))})
	fr.free(elem)

	one := fr.alloc()
	chunk.Append(&ir.ConstI32{Reg: one, Val: 1})
	chunk.Append(&ir.RawOperation{OpByte: byte(bytecode.ADD), Operands: []byte{i, one}})
	fr.free(one)

	chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: top})
	chunk.Append(&ir.LabelMarker{ID: end})
	fr.free(n)
}

func (e *Emitter) emitNew(fr *frame, chunk *ir.Chunk, x *ast.NewExpression) byte {
	r := fr.alloc()
	typeName, memberNames := "", []string(nil)
	if te, ok := x.TypeExpr.(*ast.TypeExpression); ok {
		typeName = te.Name
		memberNames = make([]string, len(te.Members))
		for i, m := range te.Members {
			memberNames[i] = m.Name
		}
	}
	chunk.Append(&ir.NewObject{Reg: r, TypeName: typeName, MemberNames: memberNames})
	for i, a := range x.Args {
		v := e.emitExpression(fr, chunk, a)
		chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByIndex, Store: true, Reg: v, OtherReg: r, Index: uint32(i)})
		fr.free(v)
	}
	return r
}

// emitFunctionExpression builds fn's body as its own child Chunk,
// appends a BuildableFunction that registers its entry address (a
// label resolved once the body chunk lowers) as a static, and returns
// the register holding the resulting function value.
func (e *Emitter) emitFunctionExpression(fr *frame, chunk *ir.Chunk, fn *ast.FunctionExpression) byte {
	body := ir.NewChunk()
	childFrame := newFrame(fr, body)
	childFrame.declareLocal("self")
	for _, name := range fn.Captures {
		childFrame.captures[name] = true
	}
	for _, p := range fn.Params {
		childFrame.declareLocal(p.Name)
	}
	if fn.Body != nil {
		for _, stmt := range fn.Body.Statements {
			e.emitStatement(childFrame, body, stmt)
		}
	}
	body.Append(&ir.ConstNull{Reg: 0})
	body.Append(&ir.Return{})

	// The body is emitted inline in the surrounding code stream (its
	// entry address is just a position within it), so a definition must
	// jump over its own body rather than fall into it at declaration
	// time — only a CALL should ever transfer control to entry.
	entry := chunk.Labels.New()
	afterBody := chunk.Labels.New()
	chunk.Append(&ir.Jump{Kind: ir.JumpUnconditional, Target: afterBody})
	chunk.Append(&ir.LabelMarker{ID: entry})
	chunk.Append(body)
	chunk.Append(&ir.LabelMarker{ID: afterBody})

	nargs := byte(len(fn.Params))
	variadic := len(fn.Params) > 0 && fn.Params[len(fn.Params)-1].IsVariadic
	r := fr.alloc()
	chunk.Append(&ir.BuildableFunction{Reg: r, Entry: entry, Nargs: nargs, Variadic: variadic})
	if len(fn.Captures) == 0 {
		return r
	}

	// A closure needs somewhere to carry its captured values across the
	// call, since CALL only passes the explicit argument list. Wrap the
	// bare function value in an object whose members are the captured
	// names plus a reserved slot holding the function value itself;
	// emitIdentifierLoad reads captures back off this same object via
	// the implicit self local, and CALL recognizes the closureFnMember
	// member to find the real entry point.
	memberNames := append(append([]string(nil), fn.Captures...), closureFnMember)
	obj := fr.alloc()
	chunk.Append(&ir.NewObject{Reg: obj, TypeName: closureTypeName, MemberNames: memberNames})
	chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByHash, Store: true, Reg: r, OtherReg: obj, Index: stringHash(closureFnMember)})
	for _, name := range fn.Captures {
		v := e.emitIdentifierLoad(fr, chunk, &ast.Identifier{Name: name})
		chunk.Append(&ir.StorageOperation{Target: ir.StorageMemberByHash, Store: true, Reg: v, OtherReg: obj, Index: stringHash(name)})
		fr.free(v)
	}
	fr.free(r)
	return obj
}

// closureTypeName/closureFnMember mark a heap object as a bound
// closure rather than a plain user-defined instance.
const (
	closureTypeName = "@closure"
	closureFnMember = "@fn"
)

func encodeU32Operands(reg, otherReg byte, v uint32) []byte {
	return []byte{reg, otherReg, byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func encodeU16Operand(reg byte, v uint16) []byte {
	return []byte{reg, byte(v), byte(v >> 8)}
}

// stringHash is the FNV-1a hash Ace uses for member-name dispatch
//.
func stringHash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
