package pyast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Imports returns every import statement in the tree, including imports
// inside function bodies.
func Imports(root *sitter.Node, source []byte) []Import {
	var imports []Import

	Walk(root, func(node *sitter.Node) bool {
		switch node.Type() {
		case NodeImportStatement:
			imports = append(imports, plainImports(node, source)...)
			return false
		case NodeImportFromStatement:
			imports = append(imports, fromImport(node, source))
			return false
		}
		return true
	})

	return imports
}

// plainImports handles "import a.b, c as d" — one Import per imported module.
func plainImports(node *sitter.Node, source []byte) []Import {
	var imports []Import
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			imports = append(imports, Import{Module: Text(child, source), Node: node})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			if name != nil {
				imports = append(imports, Import{Module: Text(name, source), Node: node})
			}
		}
	}
	return imports
}

// fromImport handles "from a.b import c, d as e" and wildcard imports.
func fromImport(node *sitter.Node, source []byte) Import {
	imp := Import{Node: node}

	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		imp.Module = Text(moduleNode, source)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if moduleNode != nil && child.Equal(moduleNode) {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			imp.Names = append(imp.Names, Text(child, source))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				imp.Names = append(imp.Names, Text(name, source))
			}
		case NodeWildcardImport:
			imp.Names = append(imp.Names, "*")
		}
	}

	return imp
}
