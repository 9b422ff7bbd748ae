package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passthrough", "Built billing systems", "Built billing systems"},
		{"collapses whitespace", "Built   billing\n\nsystems", "Built billing systems"},
		{"strips tags", "<p>Built <b>billing</b> systems</p>", "Built billing systems"},
		{"drops script and style", "<style>p{}</style><p>Hi</p><script>x()</script>", "Hi"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
