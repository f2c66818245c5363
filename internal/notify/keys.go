package notify

// DefaultChannelPrefix is used when no prefix is configured.
const DefaultChannelPrefix = "marksync:events"

// ChannelKey returns the pub/sub channel carrying ownerID's events.
func ChannelKey(prefix, ownerID string) string {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return prefix + ":" + ownerID
}
