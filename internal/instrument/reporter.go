package instrument

import (
	"fmt"
	"go/token"
	"io"
	"sync"

	"github.com/sirkon/debuglog/internal/dlrules"
)

// Reporter collects diagnostics from units processed concurrently.
type Reporter struct {
	mu      sync.Mutex
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase   ReportPhase
	Code    dlrules.Code
	Pos     token.Position
	Package string
	Message string
	Details any
}

// ReportPhase marks the stage where a report was generated.
type ReportPhase int

const (
	reportPhaseInvalid ReportPhase = iota
	ReportConfig                   // option parsing and validation
	ReportRewrite                  // matching and synthesis
)

func (p ReportPhase) String() string {
	switch p {
	case ReportConfig:
		return "config"
	case ReportRewrite:
		return "rewrite"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// ReporterPhase binds a Reporter to a fixed phase.
type ReporterPhase struct {
	parent *Reporter
	phase  ReportPhase
}

// Phase returns a reporter bound to the given phase.
func (r *Reporter) Phase(p ReportPhase) *ReporterPhase {
	return &ReporterPhase{parent: r, phase: p}
}

// Report adds a new record.
func (r *Reporter) Report(rep Report) {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
}

// Report records an entry under the bound phase. The code description is used
// when the message is empty.
func (rp *ReporterPhase) Report(code dlrules.Code, pkg, message string, pos token.Position, details any) {
	if rp == nil {
		return
	}
	if message == "" {
		message = code.Description()
	}
	rp.parent.Report(Report{
		Phase:   rp.phase,
		Code:    code,
		Pos:     pos,
		Package: pkg,
		Message: message,
		Details: details,
	})
}

// Reports returns a snapshot of all collected records.
func (r *Reporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}

// HasErrors tells if any fatal code was reported.
func (r *Reporter) HasErrors() bool {
	for _, rep := range r.Reports() {
		if rep.Code.IsError() {
			return true
		}
	}

	return false
}

// PrintSummary prints all collected reports in a compact form.
func (r *Reporter) PrintSummary(w io.Writer) {
	for _, rep := range r.Reports() {
		_, _ = fmt.Fprintf(w, "[%s] %s - %s (%s:%d)\n",
			rep.Phase,
			rep.Code,
			rep.Message,
			rep.Pos.Filename,
			rep.Pos.Line,
		)
	}
}
