package fault

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/wayneeseguin/logspool/internal/utils"
)

// maxDepth bounds recursion for self-referencing Unwrap implementations.
const maxDepth = 64

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}

type multiUnwrapper interface {
	Unwrap() []error
}

// multierror shape used by hashicorp/go-multierror and errwrap.
type wrappedErrors interface {
	WrappedErrors() []error
}

type dataAccessCoder interface {
	DataAccessCode() int
}

type interopCoder interface {
	InteropCode() uint32
}

// FromError builds the fault tree for err. It returns nil for a nil error and
// never panics: an error whose methods panic is rendered as a generic leaf.
func FromError(err error) (node *Node) {
	if err == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			node = &Node{
				Kind:    KindGeneric,
				Type:    fmt.Sprintf("%T", err),
				Message: fmt.Sprintf("unserializable error: %v", r),
			}
		}
	}()
	return build(err, "", 0)
}

// build creates the node for err. stack is the deepest stack trace seen so
// far on this root-to-leaf path.
func build(err error, stack string, depth int) *Node {
	node := &Node{Kind: KindGeneric}

	// Collapse transparent wrappers (pkg/errors withStack, WithData) into
	// the node of the error they wrap, keeping their data and stack.
	var layers []error
	cur := err
	for len(layers) <= maxDepth {
		layers = append(layers, cur)
		if !transparent(cur) {
			break
		}
		next := unwrapOne(cur)
		if next == nil {
			break
		}
		cur = next
	}

	origin := ""
	var typed error
	for _, layer := range layers {
		if d, ok := layer.(DataCarrier); ok {
			for k, v := range d.FaultData() {
				if node.Data == nil {
					node.Data = make(map[string]string)
				}
				node.Data[k] = v
			}
		}
		if st, ok := layer.(stackTracer); ok {
			if trace := st.StackTrace(); len(trace) > 0 {
				stack = fmt.Sprintf("%+v", trace)
				if origin == "" {
					origin = frameFunction(trace[0])
				}
			}
		}
		if node.Kind == KindGeneric && classify(node, layer) {
			typed = layer
		}
	}

	if typed != nil {
		node.Type = fmt.Sprintf("%T", typed)
	} else {
		node.Type = typeName(layers)
	}
	node.Origin = origin

	if children := unwrapMany(cur); children != nil {
		node.Kind = KindAggregate
		node.DataAccess, node.Interop = nil, nil
		node.Message = aggregateMessage(cur, children)
		for _, child := range children {
			if child == nil {
				continue
			}
			node.Children = append(node.Children, build(child, stack, depth+1))
		}
		if len(node.Children) > 0 {
			return node
		}
		node.Kind = KindGeneric
	}

	next := unwrapOne(cur)
	node.Message = ownMessage(cur, next)
	if next != nil && depth < maxDepth {
		node.Cause = build(next, stack, depth+1)
		return node
	}

	node.StackTrace = stack
	return node
}

var (
	withStackType   = reflect.TypeOf(errors.WithStack(stderrors.New("")))
	withMessageType = reflect.TypeOf(errors.WithMessage(stderrors.New(""), ""))
)

// transparent reports whether err only decorates its cause without adding
// a message of its own.
func transparent(err error) bool {
	if _, ok := err.(*withData); ok {
		return true
	}
	return reflect.TypeOf(err) == withStackType
}

// typeName names the node built from layers: the outermost layer that is not
// a pkg/errors or WithData decoration, or the pkg/errors constructor when the
// layer is nothing but decoration.
func typeName(layers []error) string {
	stacked := false
	for _, layer := range layers {
		switch reflect.TypeOf(layer) {
		case withStackType:
			stacked = true
		case withMessageType:
			if stacked {
				return "errors.Wrap"
			}
			return "errors.WithMessage"
		default:
			if _, ok := layer.(*withData); !ok {
				return fmt.Sprintf("%T", layer)
			}
		}
	}
	return fmt.Sprintf("%T", layers[len(layers)-1])
}

func unwrapOne(err error) error {
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return e.Unwrap()
	case causer:
		return e.Cause()
	}
	return nil
}

func unwrapMany(err error) []error {
	switch e := err.(type) {
	case multiUnwrapper:
		return e.Unwrap()
	case wrappedErrors:
		return e.WrappedErrors()
	}
	return nil
}

func classify(node *Node, err error) bool {
	for _, c := range registeredClassifiers() {
		if cl, ok := c(err); ok {
			apply(node, cl)
			return true
		}
	}

	switch e := err.(type) {
	case *DataAccessError:
		node.Kind = KindDataAccess
		node.DataAccess = &DataAccessInfo{Code: e.Code, Server: e.Server, Operation: e.Operation}
	case *InteropError:
		node.Kind = KindInterop
		node.Interop = &InteropInfo{Code: e.Code}
	case syscall.Errno:
		node.Kind = KindInterop
		node.Interop = &InteropInfo{Code: uint32(e)}
	case dataAccessCoder:
		node.Kind = KindDataAccess
		node.DataAccess = &DataAccessInfo{Code: e.DataAccessCode()}
	case interopCoder:
		node.Kind = KindInterop
		node.Interop = &InteropInfo{Code: e.InteropCode()}
	default:
		return false
	}
	return true
}

func apply(node *Node, cl Classification) {
	node.Kind = cl.Kind
	switch cl.Kind {
	case KindDataAccess:
		node.DataAccess = cl.DataAccess
		if node.DataAccess == nil {
			node.DataAccess = &DataAccessInfo{}
		}
	case KindInterop:
		node.Interop = cl.Interop
		if node.Interop == nil {
			node.Interop = &InteropInfo{}
		}
	}
}

// ownMessage strips the cause's text that fmt.Errorf("...: %w") and
// errors.Wrap append, leaving only what this layer contributes.
func ownMessage(err, next error) string {
	msg := safeMessage(err)
	if next == nil {
		return msg
	}
	nextMsg := safeMessage(next)
	if nextMsg != "" && strings.HasSuffix(msg, ": "+nextMsg) {
		return strings.TrimSuffix(msg, ": "+nextMsg)
	}
	return msg
}

func aggregateMessage(err error, children []error) string {
	msgs := make([]string, 0, len(children))
	for _, child := range children {
		if child != nil {
			msgs = append(msgs, safeMessage(child))
		}
	}
	msg := safeMessage(err)
	if msg == strings.Join(msgs, "\n") {
		return fmt.Sprintf("%d errors occurred", len(msgs))
	}
	return msg
}

func safeMessage(err error) (msg string) {
	if err == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%T", err)
		}
	}()
	return err.Error()
}

// frameFunction returns the short function name of a pkg/errors frame.
func frameFunction(f errors.Frame) string {
	full := fmt.Sprintf("%+s", f)
	if i := strings.Index(full, "\n"); i >= 0 {
		full = full[:i]
	}
	if full == "unknown" {
		return ""
	}
	return utils.ShortFuncName(full)
}
