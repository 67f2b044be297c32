package notify

import "embed"

// Event identifies which transition a notification is about.
type Event string

const (
	// EventError is a transition into the failed status.
	EventError Event = "error"
	// EventNormal is a recovery transition back to the finished status.
	EventNormal Event = "normal"
	// EventEnable is an enabled edge on the job definition.
	EventEnable Event = "enable"
	// EventDisable is a disabled edge on the job definition.
	EventDisable Event = "disable"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// defaultTemplate returns the built-in body template for an event. Used when
// no template resource is configured or the configured one cannot be loaded.
func defaultTemplate(event Event) []byte {
	content, err := templatesFS.ReadFile("templates/template-" + string(event) + ".txt")
	if err != nil {
		// The embedded templates are part of the binary; a miss here is a
		// programming error for an unknown event.
		return nil
	}
	return content
}
