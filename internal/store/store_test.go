package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLikePattern(t *testing.T) {
	require.Equal(t, "%acme%", likePattern("acme"))
	require.Equal(t, `%100\%%`, likePattern("100%"))
	require.Equal(t, `%under\_review%`, likePattern("under_review"))
	require.Equal(t, `%C:\\temp%`, likePattern(`C:\temp`))
	require.Equal(t, "%%", likePattern(""))
}
