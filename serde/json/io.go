package json

import (
	"os"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
	"golang.org/x/xerrors"
)

// Parse materializes a JSON document. The whole tree is loaded eagerly so
// the returned node can be shared between readers.
func Parse(data []byte) (ast.Node, error) {
	root, err := sonic.Get(data)
	if err != nil {
		return ast.Node{}, xerrors.Errorf("failed to parse: %v", err)
	}

	err = root.LoadAll()
	if err != nil {
		return ast.Node{}, xerrors.Errorf("failed to load tree: %v", err)
	}

	return root, nil
}

// Load populates a document from a file.
func Load(path string) (ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ast.Node{}, xerrors.Errorf("failed to read file: %v", err)
	}

	root, err := Parse(data)
	if err != nil {
		return ast.Node{}, xerrors.Errorf("failed to decode %s: %v", path, err)
	}

	return root, nil
}

// Save writes a document to a file.
func Save(path string, node *ast.Node) error {
	data, err := node.MarshalJSON()
	if err != nil {
		return xerrors.Errorf("failed to encode: %v", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return xerrors.Errorf("failed to write file: %v", err)
	}

	return nil
}
