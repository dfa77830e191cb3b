package domain

// Game tracks a single game played to completion, e.g. inside a tournament.
type Game struct {
	Board         *Board
	CurrentPlayer PlayerID
	Status        GameStatus
	Winner        PlayerID
	Moves         []int
}

func NewGame(rows, columns, winLength int) (*Game, error) {
	board, err := NewBoard(rows, columns, winLength)
	if err != nil {
		return nil, err
	}
	return &Game{
		Board:         board,
		CurrentPlayer: Player1,
		Status:        StatusActive,
		Winner:        Empty,
	}, nil
}

// MakeMove drops a piece for the player to move and advances the turn.
func (g *Game) MakeMove(column int) (int, error) {
	if g.Status != StatusActive {
		return -1, Error("game is already finished")
	}

	row, err := g.Board.Drop(column, g.CurrentPlayer)
	if err != nil {
		return -1, err
	}
	g.Moves = append(g.Moves, column)

	if g.Board.IsTerminalWin(row, column) {
		g.Status = StatusWon
		g.Winner = g.CurrentPlayer
		return row, nil
	}

	if g.Board.IsFull() {
		g.Status = StatusDraw
		return row, nil
	}

	g.CurrentPlayer = g.CurrentPlayer.Opponent()
	return row, nil
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusWon || g.Status == StatusDraw
}
