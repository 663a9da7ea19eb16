// Package dlrules defines the canonical diagnostic codes (DLG-series) emitted by debuglog.
//
// Codes follow the format “DLG<NNN>: <Name>” and are grouped by stage:
//
//	000–019  Configuration
//	020–099  Rewriting
//	100–149  Informational notes about instrumented declarations
//
// Example:
//
//	dlrules.DLG100Instrumented.String()      → "DLG100: Instrumented"
//	dlrules.DLG100Instrumented.Description() → "Declaration body is wrapped with entry/exit logging."
//
// Codes are stable, never renumber existing ones.
package dlrules
