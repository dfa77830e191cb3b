package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/tournament"
	"github.com/muesli/termenv"
)

const (
	colorWin  = "2"
	colorLoss = "1"
	colorDraw = "3"
)

// progress prints one line per finished game. Games finish on worker
// goroutines, so writes are serialized.
type progress struct {
	mu     sync.Mutex
	out    *termenv.Output
	total  int
	played int
}

func newProgress(w io.Writer, total int, opts ...termenv.OutputOption) *progress {
	return &progress{out: termenv.NewOutput(w, opts...), total: total}
}

func (p *progress) OnStart(id string, cfg tournament.Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s vs %s, %d games\n",
		p.out.String(id).Faint(), cfg.ProfileA.Name, cfg.ProfileB.Name, cfg.Games)
}

func (p *progress) OnGameFinished(_ string, game tournament.GameRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played++

	outcome := p.out.String("draw").Foreground(p.out.Color(colorDraw))
	if !game.IsDraw() {
		outcome = p.out.String(game.Winner + " wins").Foreground(p.out.Color(colorWin))
	}
	fmt.Fprintf(p.out, "[%d/%d] game %d: %s (first) vs %s, %d moves, %s\n",
		p.played, p.total, game.Index+1, game.First, game.Second, len(game.Moves), outcome)
}

func (p *progress) OnEnd(*tournament.Result) {}

// printStandings writes the final score table.
func printStandings(w io.Writer, r *tournament.Result, opts ...termenv.OutputOption) {
	out := termenv.NewOutput(w, opts...)

	fmt.Fprintln(out)
	fmt.Fprintln(out, out.String("Standings").Bold())
	fmt.Fprintf(out, "%-20s %5s %5s %5s %7s %6s\n", "profile", "wins", "loss", "draw", "score", "elo")

	row := func(name string, wins, losses int, score float64, rating int) {
		color := colorDraw
		switch {
		case wins > losses:
			color = colorWin
		case wins < losses:
			color = colorLoss
		}
		line := fmt.Sprintf("%-20s %5d %5d %5d %7.1f %6d", name, wins, losses, r.Draws, score, rating)
		fmt.Fprintln(out, out.String(line).Foreground(out.Color(color)))
	}
	row(r.ProfileA, r.AWins, r.BWins, r.ScoreA(), r.RatingA)
	row(r.ProfileB, r.BWins, r.AWins, float64(r.Total())-r.ScoreA(), r.RatingB)

	fmt.Fprintf(out, "%d games in %s\n", r.Total(), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
