package wdb

// Wire markers. External callers match on these byte-for-byte, so they
// never change shape: "ok" optionally followed by a space and the payload,
// or "err" followed by a space and a diagnostic message.
const (
	successMarker = "ok"
	errorMarker   = "err"
)

// Format renders a Result as the wire response. The response is always
// well-formed: failures are encoded behind the error marker, never
// dropped or returned empty.
func Format(r Result) string {
	if r.IsOk() {
		if r.Payload() == "" {
			return successMarker
		}
		return successMarker + " " + r.Payload()
	}
	msg := r.Message()
	if msg == "" {
		msg = r.Kind().String()
	}
	return errorMarker + " " + msg
}
