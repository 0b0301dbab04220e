package dialogue

// Outcome says how a prompt step ended.
type Outcome int

const (
	Ok Outcome = iota
	Cancelled
	TimedOut
	Invalid
	// Failed is a session-level outcome for errors that are neither user
	// driven nor validation: transport or store failures.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed out"
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the value of a prompt step. Value is set only when Outcome is Ok;
// Reason explains Invalid and Failed.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Reason  error
	// Skipped marks an Ok produced by the skip keyword.
	Skipped bool
}

func ok[T any](v T) Result[T] { return Result[T]{Outcome: Ok, Value: v} }
func skipped[T any](v T) Result[T] { return Result[T]{Outcome: Ok, Value: v, Skipped: true} }
func cancelled[T any]() Result[T] { return Result[T]{Outcome: Cancelled} }
func timedOut[T any]() Result[T] { return Result[T]{Outcome: TimedOut} }
func invalid[T any](why error) Result[T] { return Result[T]{Outcome: Invalid, Reason: why} }
func failed[T any](err error) Result[T] { return Result[T]{Outcome: Failed, Reason: err} }

// stop converts a non-Ok result of one type into the same outcome of another.
func stop[T, U any](r Result[U]) Result[T] {
	return Result[T]{Outcome: r.Outcome, Reason: r.Reason}
}
