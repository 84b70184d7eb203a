package platform

import "time"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath points to an image shown with the notification where the
	// platform supports it.
	IconPath string
	// Category is a freedesktop notification category such as
	// "transfer.complete". Platforms without categories show it as a subtitle.
	Category string
	// Timeout is how long the notification stays up. Zero uses DefaultTimeout.
	Timeout time.Duration
}

const appName = "labelpaint"

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
