package services

import (
	"math"
	"strconv"
)

// Notifier pushes engine events to connected clients. Satisfied by
// *brackets.Hub; kept as an interface so services can be tested without a
// running hub.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

// noopNotifier stands in when no hub is wired.
type noopNotifier struct{}

func (noopNotifier) BroadcastToRoom(string, interface{}) {}

func tournamentRoom(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}

// round2 rounds to two decimal places (win rates, per-match averages).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
