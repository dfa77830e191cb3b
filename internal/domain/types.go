package domain

type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Valid reports whether p is one of the two players.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return Empty
	}
}

// standard board dimensions
const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// NoMove is returned when there is no column left to play. Callers treat it as a draw.
const NoMove = -1

// to represent the game status
type GameStatus string

const (
	StatusActive GameStatus = "active"
	StatusWon    GameStatus = "won"
	StatusDraw   GameStatus = "draw"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidColumn Error = "column index out of range"
	ErrColumnFull    Error = "column is full"
	ErrColumnEmpty   Error = "column is empty"
	ErrInvalidPlayer Error = "invalid player"
	ErrInvalidBoard  Error = "invalid board"
)
