package bot

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidWeights    Error = "invalid evaluator weights"
	ErrInvalidProfile    Error = "invalid strategy profile"
	ErrUnknownProfile    Error = "unknown strategy profile"
	ErrNilRandom         Error = "random source is required"
	ErrBoardMismatch     Error = "board does not match engine dimensions"
	ErrInternalInvariant Error = "engine proposed an unplayable column"
)
