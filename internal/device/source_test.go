package device

import (
	"testing"

	"github.com/dshills/keyremap/internal/keycode"
)

func TestActionFromValue(t *testing.T) {
	tests := []struct {
		value  int32
		want   keycode.Action
		wantOK bool
	}{
		{0, keycode.Release, true},
		{1, keycode.Press, true},
		{2, keycode.Repeat, true},
		{3, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		got, ok := actionFromValue(tt.value)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("actionFromValue(%d) = (%v, %v), want (%v, %v)", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInputNodeForRejectsOddLayout(t *testing.T) {
	if _, err := inputNodeFor("/nonexistent/event99"); err == nil {
		t.Fatal("expected an error for a path outside sysfs")
	}
}
