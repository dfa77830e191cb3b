package tournament

// Listener receives arena progress. OnGameFinished may be called from several
// goroutines at once and in any game order.
type Listener interface {
	OnStart(tournamentID string, cfg Config)
	OnGameFinished(tournamentID string, game GameRecord)
	OnEnd(result *Result)
}

type nopListener struct{}

func (nopListener) OnStart(string, Config) {}
func (nopListener) OnGameFinished(string, GameRecord) {}
func (nopListener) OnEnd(*Result) {}

// Listeners fans callbacks out to several listeners in order.
type Listeners []Listener

func (ls Listeners) OnStart(id string, cfg Config) {
	for _, l := range ls {
		l.OnStart(id, cfg)
	}
}

func (ls Listeners) OnGameFinished(id string, game GameRecord) {
	for _, l := range ls {
		l.OnGameFinished(id, game)
	}
}

func (ls Listeners) OnEnd(result *Result) {
	for _, l := range ls {
		l.OnEnd(result)
	}
}
