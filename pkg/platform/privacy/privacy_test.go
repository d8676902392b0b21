package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4", "203.0.113.5", "203.0.113.0/24"},
		{"ipv6", "2001:db8:abcd:12::1", "2001:db8:abcd::/48"},
		{"sentinel", "0.0.0.0", "0.0.0.0/24"},
		{"empty", "", ""},
		{"garbage", "not-an-ip", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}
