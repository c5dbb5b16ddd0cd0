// Package notifier pushes a notification whenever a new track starts
// playing. It only ever reads the published views so a flaky Pushover API
// can never hold up the update pipeline.
package notifier

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gregdel/pushover"

	"github.com/fogline/earshot/playback"
)

type Notifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	lastTrack string
}

func New(token, recipient string) *Notifier {
	return &Notifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(recipient),
	}
}

// Listen is a playback listener. Notifications fire once per track, on the
// first playing view that carries it.
func (n *Notifier) Listen(view playback.Snapshot, ok bool) {
	if !ok || view.Title == nil || view.Playing == nil || !*view.Playing {
		return
	}
	trackId := view.TrackID()
	if trackId == n.lastTrack {
		return
	}
	n.lastTrack = trackId

	body := *view.Title
	if view.Artist != nil {
		body = fmt.Sprintf("%s by %s", *view.Title, *view.Artist)
	}
	message := &pushover.Message{
		Message:    body,
		Title:      "Now playing",
		Priority:   pushover.PriorityNormal,
		Timestamp:  time.Now().Unix(),
		DeviceName: "Earshot",
	}
	if _, err := n.app.SendMessage(message, n.recipient); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to send pushover notification")
	}
}
