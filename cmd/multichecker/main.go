// Command multichecker запускает набор анализаторов для кода конструктора хитов.
//
//	go run ./cmd/multichecker ./...
package main

import (
	"strings"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/kisielk/errcheck/errcheck"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/staticcheck"

	"hitbuilder/cmd/staticlint"
)

func main() {
	multichecker.Main(analyzers()...)
}

// analyzers стандартные проходы vet, проверки staticcheck,
// публичные анализаторы и собственные анализаторы staticlint.
func analyzers() []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		shift.Analyzer,
		structtag.Analyzer,
		nilfunc.Analyzer,
	}

	for _, v := range staticcheck.Analyzers {
		if v.Analyzer == nil {
			continue
		}

		if strings.HasPrefix(v.Analyzer.Name, "S") || v.Analyzer.Name == "ST1008" {
			checks = append(checks, v.Analyzer)
		}
	}

	return append(checks,
		errcheck.Analyzer,
		bodyclose.Analyzer,
		ineffassign.Analyzer,
		staticlint.OsExitAnalyzer,
		staticlint.HitEncodingAnalyzer,
	)
}
