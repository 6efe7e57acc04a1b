package staticlint

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
)

const hitPackageSuffix = "internal/hit"

// HitEncodingAnalyzer запрещает url.QueryEscape и url.Values.Encode вне internal/hit.
var HitEncodingAnalyzer = &analysis.Analyzer{
	Name: "hitencoding",
	Doc:  "Запрещает кодирование параметров хита через net/url вне пакета internal/hit",
	Run:  runHitEncoding,
}

func runHitEncoding(pass *analysis.Pass) (any, error) {
	if strings.HasSuffix(pass.Pkg.Path(), hitPackageSuffix) {
		return nil, nil //nolint:nilnil
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			switch {
			case isFunc(pass, call, "net/url", "QueryEscape"):
				pass.Reportf(call.Pos(), "url.QueryEscape экранирует запятые, используйте hit.Serialize")
			case isValuesEncode(pass, call):
				pass.Reportf(call.Pos(), "url.Values.Encode меняет порядок параметров, используйте hit.Serialize")
			}

			return true
		})
	}

	return nil, nil //nolint:nilnil
}

func isValuesEncode(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Encode" {
		return false
	}

	selection, ok := pass.TypesInfo.Selections[sel]
	if !ok {
		return false
	}

	recv := selection.Recv()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}

	named, ok := recv.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}

	return named.Obj().Pkg().Path() == "net/url" && named.Obj().Name() == "Values"
}
