package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{in: "", want: NativeOnly},
		{in: "native", want: NativeOnly},
		{in: "AI", want: AIOnly},
		{in: " native-with-ai-fallback ", want: NativeWithAIFallback},
		{in: "fallback", want: NativeWithAIFallback},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseStrategy("docker")
	assert.Error(t, err)
}

func TestStrategyRoundTrip(t *testing.T) {
	for _, s := range []Strategy{NativeOnly, AIOnly, NativeWithAIFallback} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, "Strategy(9)", Strategy(9).String())
}
