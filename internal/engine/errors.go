package engine

// ErrorKind identifies the engine-defined failure classes.
type ErrorKind string

const (
	KindExecuteError      ErrorKind = "ExecuteError"
	KindMMRError          ErrorKind = "MMRError"
	KindInconsistentStore ErrorKind = "InconsistentStore"
	KindNoLeafFound       ErrorKind = "NoLeafFound"
	KindNoCiphertextFound ErrorKind = "NoCiphertextFound"
	KindTlockFailed       ErrorKind = "TlockFailed"
	KindInvalidBufferSize ErrorKind = "InvalidBufferSize"
	KindInvalidSeed       ErrorKind = "InvalidSeed"
	KindInvalidPubkey     ErrorKind = "InvalidPubkey"
)

// Error is an engine-reported failure.
type Error struct {
	Kind ErrorKind
}

func (e *Error) Error() string {
	return Translate(e.Kind)
}

// IsEngineError checks if err is an engine-reported failure.
func IsEngineError(err error) bool {
	_, ok := err.(*Error)
	return ok
}
