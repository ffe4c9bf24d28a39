package sharding

import (
	"fmt"
	"hash/crc32"
)

// ShardCount is the fixed number of partitions for event subjects.
const ShardCount = 1024

// AnonymousUser is the subject token for changes made while signed out.
const AnonymousUser = "anonymous"

// GetShardID calculates the deterministic shard ID for a given entity ID.
func GetShardID(entityID string) int {
	checksum := crc32.ChecksumIEEE([]byte(entityID))
	return int(checksum % ShardCount)
}

// UserEventSubject returns the subject todo changes of userID are published on.
// Format: app.event.{shard_id}.user.{user_id}
func UserEventSubject(userID string) string {
	userID = SubjectToken(userID)
	return fmt.Sprintf("app.event.%d.user.%s", GetShardID(userID), userID)
}

// UserEventFilter matches UserEventSubject(userID) on any shard.
func UserEventFilter(userID string) string {
	return "app.event.*.user." + SubjectToken(userID)
}

// AllUsersEventFilter matches todo changes of every user.
func AllUsersEventFilter() string {
	return "app.event.*.user.*"
}

// SubjectToken makes id safe to use as a single NATS subject token.
func SubjectToken(id string) string {
	if id == "" {
		return AnonymousUser
	}
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		switch c := id[i]; c {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
