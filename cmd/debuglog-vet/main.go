// Command debuglog-vet reports declarations debuglog would instrument.
//
// It can be used standalone or as go vet -vettool.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/sirkon/debuglog/internal/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
