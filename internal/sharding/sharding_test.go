package sharding

import (
	"fmt"
	"testing"
)

func TestGetShardID(t *testing.T) {
	tests := []struct {
		entityID string
		want     int
	}{
		{"user-1", 532},
		{"user-2", 942},
		{"todo-abc", 748},
	}

	for _, tt := range tests {
		t.Run(tt.entityID, func(t *testing.T) {
			if got := GetShardID(tt.entityID); got != tt.want {
				t.Errorf("GetShardID(%q) = %v, want %v", tt.entityID, got, tt.want)
			}
		})
	}
}

func TestUserEventSubject(t *testing.T) {
	if got, want := UserEventSubject("user-1"), "app.event.532.user.user-1"; got != want {
		t.Errorf("UserEventSubject = %v, want %v", got, want)
	}
	want := fmt.Sprintf("app.event.%d.user.anonymous", GetShardID(AnonymousUser))
	if got := UserEventSubject(""); got != want {
		t.Errorf("anonymous subject = %v, want %v", got, want)
	}
}

func TestSubjectTokenEscapesWildcards(t *testing.T) {
	if got := SubjectToken("a.b*c>d e"); got != "a_b_c_d_e" {
		t.Errorf("SubjectToken = %q", got)
	}
	if got := UserEventFilter("42"); got != "app.event.*.user.42" {
		t.Errorf("UserEventFilter = %q", got)
	}
}

func TestStableSharding(t *testing.T) {
	id := "test-stable-id"
	shard1 := GetShardID(id)
	shard2 := GetShardID(id)

	if shard1 != shard2 {
		t.Errorf("Sharding is not deterministic! %d != %d", shard1, shard2)
	}
}

func TestDistribution(t *testing.T) {
	distribution := make(map[int]int)
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("key-%d", i)
		shard := GetShardID(key)
		distribution[shard]++
	}

	if len(distribution) < 100 {
		t.Errorf("Sharding distribution is too poor. Only %d unique shards used for 1000 keys", len(distribution))
	}
}
