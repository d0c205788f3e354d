package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// CalleeNode returns the function child of a call expression.
func CalleeNode(call *sitter.Node) *sitter.Node {
	return call.ChildByFieldName("function")
}

// CalleeAttribute returns the call's function child when it is an attribute
// access (a method call), or nil for plain function calls.
func CalleeAttribute(call *sitter.Node) *sitter.Node {
	fn := CalleeNode(call)
	if fn != nil && fn.Type() == NodeAttribute {
		return fn
	}
	return nil
}

// CalleeName returns the called function or method name: the identifier for
// plain calls, the final attribute for method calls.
func CalleeName(call *sitter.Node, source []byte) string {
	fn := CalleeNode(call)
	if fn == nil {
		return ""
	}

	switch fn.Type() {
	case NodeIdentifier:
		return Text(fn, source)
	case NodeAttribute:
		return Text(fn.ChildByFieldName("attribute"), source)
	default:
		return ""
	}
}

// ReceiverChain resolves an attribute access's object expression into its
// dotted name parts, leftmost first. Chains through intermediate method
// calls are followed (self.client().x resolves to ["self", "client"]).
// Returns nil when the object is not a resolvable name chain.
func ReceiverChain(attr *sitter.Node, source []byte) []string {
	var reversed []string

	obj := attr.ChildByFieldName("object")
	for obj != nil {
		switch obj.Type() {
		case NodeIdentifier:
			reversed = append(reversed, Text(obj, source))
			chain := make([]string, len(reversed))
			for i, part := range reversed {
				chain[len(reversed)-1-i] = part
			}
			return chain

		case NodeAttribute:
			reversed = append(reversed, Text(obj.ChildByFieldName("attribute"), source))
			obj = obj.ChildByFieldName("object")

		case NodeCall:
			fn := CalleeNode(obj)
			if fn == nil || fn.Type() != NodeAttribute {
				return nil
			}
			reversed = append(reversed, Text(fn.ChildByFieldName("attribute"), source))
			obj = fn.ChildByFieldName("object")

		default:
			return nil
		}
	}

	return nil
}

// Receiver returns the dotted receiver path of an attribute access, or the
// raw object text when the chain cannot be resolved.
func Receiver(attr *sitter.Node, source []byte) string {
	if chain := ReceiverChain(attr, source); chain != nil {
		return strings.Join(chain, ".")
	}
	return Text(attr.ChildByFieldName("object"), source)
}

// IsSelfRooted reports whether an attribute access's receiver chain is
// rooted at self. Calls on such chains are legitimate internal access.
func IsSelfRooted(attr *sitter.Node, source []byte) bool {
	chain := ReceiverChain(attr, source)
	return len(chain) > 0 && chain[0] == "self"
}

// ArgumentNodes returns the named argument nodes of a call expression.
func ArgumentNodes(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	var nodes []*sitter.Node
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		if child.IsNamed() {
			nodes = append(nodes, child)
		}
	}
	return nodes
}
