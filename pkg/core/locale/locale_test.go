package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNew_Fallbacks(t *testing.T) {
	assert.Equal(t, language.English, New("").Tag())
	assert.Equal(t, language.English, New("ja").Tag())
	assert.Equal(t, language.English, New("!!not a tag!!").Tag())
}

func TestSet_MatchesRegionalVariants(t *testing.T) {
	s := New("en")

	tag, err := s.Set("so-SO")
	require.NoError(t, err)
	assert.Equal(t, "so", tag.String())
	assert.Equal(t, "so", s.Tag().String())

	tag, err = s.Set("ar-EG,en;q=0.5")
	require.NoError(t, err)
	assert.Equal(t, language.Arabic, tag)
}

func TestSet_InvalidKeepsPrevious(t *testing.T) {
	s := New("so")

	_, err := s.Set("!!")
	require.Error(t, err)
	assert.Equal(t, "so", s.Tag().String())
}

func TestFormatAmount_English(t *testing.T) {
	s := New("en")
	assert.Equal(t, "1,234.50", s.FormatAmount(1234.5))
	assert.Equal(t, "0.00", s.FormatAmount(0))
}
