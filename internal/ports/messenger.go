package ports

import "context"

// Messenger posts plain-text messages to a chat channel.
type Messenger interface {
	PostMessage(ctx context.Context, channelID, text string) error
}
