// Package hostrpc compiles native-function declarations that name an
// out-of-process host call into a descriptor the emitter can validate
// arity and types against. It builds the descriptor representation
// only — dispatching the call over the wire at run time is the
// embedding host's job, not this toolchain's (compile(path) -> bytes
// and run(bytes) -> exit_code are the only two operations this module
// exposes to callers; a live RPC transport sits outside that
// boundary), using jhump/protoreflect and
// google.golang.org/grpc for describing externally hosted calls
// without generating Go client code for each one.
package hostrpc

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/builder"
	"google.golang.org/grpc"
)

// ParamKind is the subset of Ace value kinds an RPC parameter may
// carry across the host boundary.
type ParamKind int

const (
	ParamInt ParamKind = iota
	ParamFloat
	ParamBool
	ParamString
	ParamBytes
)

// Descriptor is the compiled shape of one `native rpc` declaration: a
// fully built protobuf method descriptor (so a host implementation can
// be validated structurally, the way the original's cereal archive
// validates a serialized object's shape) plus the Ace-facing parameter
// kinds used to typecheck call sites.
type Descriptor struct {
	ServiceName string
	MethodName  string
	Params      []ParamKind
	Returns     ParamKind

	method *desc.MethodDescriptor
}

// Build constructs a method descriptor for (service, method) with the
// given parameter/return kinds, synthesizing the request/response
// message shapes rather than requiring a .proto file on disk — native
// declarations describe their own shape inline in source.
func Build(serviceName, methodName string, params []ParamKind, returns ParamKind) (*Descriptor, error) {
	reqBuilder := builder.NewMessage(methodName + "Request")
	for i, p := range params {
		field, err := builder.NewField(fmt.Sprintf("arg%d", i), fieldType(p))
		if err != nil {
			return nil, fmt.Errorf("hostrpc: build param %d: %w", i, err)
		}
		if err := reqBuilder.TryAddField(field); err != nil {
			return nil, fmt.Errorf("hostrpc: add param %d: %w", i, err)
		}
	}
	respBuilder := builder.NewMessage(methodName + "Response")
	retField, err := builder.NewField("result", fieldType(returns))
	if err != nil {
		return nil, fmt.Errorf("hostrpc: build return: %w", err)
	}
	if err := respBuilder.TryAddField(retField); err != nil {
		return nil, fmt.Errorf("hostrpc: add return: %w", err)
	}

	methodBuilder := builder.NewMethod(methodName, builder.RpcTypeMessage(reqBuilder, false), builder.RpcTypeMessage(respBuilder, false))
	svcBuilder := builder.NewService(serviceName).AddMethod(methodBuilder)

	svc, err := svcBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("hostrpc: build service descriptor: %w", err)
	}
	method := svc.FindMethodByName(methodName)
	if method == nil {
		return nil, fmt.Errorf("hostrpc: method %s not found after build", methodName)
	}

	return &Descriptor{
		ServiceName: serviceName,
		MethodName:  methodName,
		Params:      params,
		Returns:     returns,
		method:      method,
	}, nil
}

func fieldType(k ParamKind) *builder.FieldType {
	switch k {
	case ParamInt:
		return builder.FieldTypeInt64()
	case ParamFloat:
		return builder.FieldTypeDouble()
	case ParamBool:
		return builder.FieldTypeBool()
	case ParamString:
		return builder.FieldTypeString()
	case ParamBytes:
		return builder.FieldTypeBytes()
	}
	return builder.FieldTypeString()
}

// FullMethodName is the gRPC-style "/service/Method" path a live host
// connection would dial, kept for a future transport layer to consume
// without this package needing to know about connections itself.
func (d *Descriptor) FullMethodName() string {
	return "/" + d.ServiceName + "/" + d.MethodName
}

// Registry holds every native rpc descriptor a compilation unit
// declared, keyed by the Ace-facing function name the emitter resolves
// calls against.
type Registry struct {
	entries map[string]*Descriptor
	conn    *grpc.ClientConn
}

func NewRegistry() *Registry { return &Registry{entries: make(map[string]*Descriptor)} }

func (r *Registry) Declare(name string, d *Descriptor) { r.entries[name] = d }

func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.entries[name]
	return d, ok
}

// Dial records the transport a live host process would be reached
// through; no calls are issued by this package, which only compiles
// descriptors (see package doc).
func (r *Registry) Dial(target string, opts ...grpc.DialOption) (err error) {
	r.conn, err = grpc.NewClient(target, opts...)
	return err
}
