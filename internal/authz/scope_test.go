package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopePermits(t *testing.T) {
	tests := []struct {
		name    string
		scope   Scope
		ownerID int64
		want    bool
	}{
		{"same owner", Owner(7), 7, true},
		{"other owner", Owner(7), 8, false},
		{"zero scope", Scope{}, 0, false},
		{"zero scope never matches owner", Scope{}, 7, false},
		{"negative scope", Owner(-1), -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Permits(tt.ownerID))
		})
	}
}

func TestScopePermitsAny(t *testing.T) {
	s := Owner(3)
	assert.True(t, s.PermitsAny(1, 3))
	assert.False(t, s.PermitsAny(1, 2))
	assert.False(t, s.PermitsAny())
	assert.False(t, Scope{}.PermitsAny(0, 0))
}
