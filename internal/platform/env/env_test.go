package env

import (
	"testing"
	"time"
)

func TestFallbacks(t *testing.T) {
	t.Setenv("ENV_TEST_INT", "nope")
	t.Setenv("ENV_TEST_DURATION", "-1s")
	t.Setenv("ENV_TEST_BOOL", "maybe")

	if got := String("ENV_TEST_MISSING", "x"); got != "x" {
		t.Fatalf("String = %q", got)
	}
	if got := Int("ENV_TEST_INT", 7); got != 7 {
		t.Fatalf("Int = %d", got)
	}
	if got := Duration("ENV_TEST_DURATION", time.Second); got != time.Second {
		t.Fatalf("Duration = %s", got)
	}
	if got := Bool("ENV_TEST_BOOL", true); !got {
		t.Fatal("Bool should fall back")
	}
}

func TestParsedValues(t *testing.T) {
	t.Setenv("ENV_TEST_INT", "42")
	t.Setenv("ENV_TEST_DURATION", "3s")
	t.Setenv("ENV_TEST_BOOL", "true")

	if Int("ENV_TEST_INT", 0) != 42 || Duration("ENV_TEST_DURATION", 0) != 3*time.Second || !Bool("ENV_TEST_BOOL", false) {
		t.Fatal("unexpected parsed values")
	}
}
