package appointment

// ErrorKind classifies a failed Result.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindNotFound      ErrorKind = "not_found"
	KindRejected      ErrorKind = "rejected"
	KindStore         ErrorKind = "store_error"
	KindStoreProtocol ErrorKind = "store_protocol_error"
)

// Result is the outcome of every Service operation. Failures are reported
// here and never as a Go error or a panic.
type Result[T any] struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Kind    ErrorKind `json:"error,omitempty"`
	Data    T         `json:"data"`
}

func Ok[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data}
}

func Fail[T any](kind ErrorKind, message string) Result[T] {
	return Result[T]{Success: false, Kind: kind, Message: message}
}

// recordOutcome turns a procedure's outcome row into a Result. Procedures
// report business failures (double booking, unknown appointment, illegal
// transition) with success = false and a message column.
func recordOutcome(rec Record) Result[Record] {
	msg, _ := rec["message"].(string)
	if ok, present := rec["success"].(bool); present && !ok {
		if msg == "" {
			msg = "request rejected by store"
		}
		res := Fail[Record](KindRejected, msg)
		res.Data = rec
		return res
	}
	return Ok(rec, msg)
}
