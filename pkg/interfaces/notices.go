package interfaces

// NoticeSink collects operator-facing messages raised while an operation runs.
// Messages never reach end-user page output.
type NoticeSink interface {
	AddUpdate(message string)
	AddError(message string)
}
