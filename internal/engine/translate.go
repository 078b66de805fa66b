package engine

// Translate maps an engine error kind to its user-facing message. The
// mapping is total: a kind the service does not recognize still produces the
// generic fallback, never an empty or raw value.
func Translate(kind ErrorKind) string {
	switch kind {
	case KindExecuteError:
		return "Timevault: Execute error"
	case KindMMRError:
		return "Timevault: MMR error"
	case KindInconsistentStore:
		return "Timevault: Inconsistent store"
	case KindNoLeafFound:
		return "Timevault: No leaf found"
	case KindNoCiphertextFound:
		return "Timevault: No ciphertext found"
	case KindTlockFailed:
		return "Timevault: Tlock failed"
	case KindInvalidBufferSize:
		return "Timevault: Invalid buffer size"
	case KindInvalidSeed:
		return "Timevault: Invalid seed"
	case KindInvalidPubkey:
		return "Timevault: Invalid pubkey"
	default:
		return "Timevault: Unknown error"
	}
}
