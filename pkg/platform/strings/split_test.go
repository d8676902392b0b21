package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"empty", "", nil},
		{"blank", "  ", nil},
		{"single", "localhost:9092", []string{"localhost:9092"}},
		{"trims and drops empties", " a:9092 ,, b:9092 ,", []string{"a:9092", "b:9092"}},
		{"dedupes keeping first", "b:9092,a:9092,b:9092", []string{"b:9092", "a:9092"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.value, ","))
		})
	}
}
