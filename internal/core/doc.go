// Package core holds the column arranger's domain logic, independent of any
// transport. The web server, the terminal UI and the CLI all drive it.
//
// # Column model
//
// [ParseModel] turns file text into a [Model]: the header row becomes the
// column set and the remaining rows the data matrix. A Model is a value;
// [Model.Reorder], [Model.ToggleExcluded], [Model.AddCustomColumn],
// [Model.DeleteColumn], [Model.RenameColumn] and [Model.Reset] each return
// a new Model. [Serialize] renders the visible columns back to CSV.
//
// # Arrangements
//
// An [Arrangement] is a named column sequence. Its [ColumnOrder] is read in
// one of two shapes, fixed by the first element:
//
//	[2, 0, 1]                                          legacy
//	[{"originalIndex": 2, "name": "Age", ...}, ...]    current
//
// [ApplyArrangement] treats the two differently. A legacy order must cover
// every live column or the load fails with [ErrStructureMismatch]; a
// current order silently drops entries without a live column.
//
// [MatchArrangements] recommends stored arrangements for a new file by
// header name overlap, keeping those at or above [MatchThreshold] percent.
//
// # Service
//
// [Service] persists arrangements through an [ArrangementStore] and keeps
// open workspaces in memory for the HTTP server. Parses are bounded by a
// [ParseLimiter] and idle workspaces are swept by
// [Service.StartWorkspaceSweeper].
//
// # Error Handling
//
// Failures are sentinel errors wrapped with context; compare them with
// errors.Is. [MapError] turns any of them into a [UserMessage] with a
// support code:
//
//   - VAL001-VAL004: names and column positions
//   - ARR001-ARR003: saved arrangements
//   - FILE001-FILE005: uploaded files
//   - IMP001-IMP002: arrangement import
//   - UPL001-UPL005: workspaces and request lifecycle
package core
