package uid

import "github.com/google/uuid"

// GenerateGameID returns a random identifier for one game
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateTournamentID identifies a whole head-to-head series
func GenerateTournamentID() string {
	return "t-" + uuid.NewString()
}

// IsValid reports whether id came from GenerateGameID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// GenerateRequestID tags one move request in logs and events
func GenerateRequestID() string {
	return "r-" + uuid.NewString()
}
