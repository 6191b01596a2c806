package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthtube/internal/models"
)

func TestParseVideoRef(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch without scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch with extra params first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"http scheme", "http://youtube.com/watch?v=a-b_c1234XY", "a-b_c1234XY"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with timestamp", "youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ \n", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseVideoRef(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.ID)
		})
	}
}

func TestParseVideoRefSameVideoSameID(t *testing.T) {
	a, err := ParseVideoRef("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.NoError(t, err)
	b, err := ParseVideoRef("youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestParseVideoRefInvalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"other host", "https://vimeo.com/123456789"},
		{"lookalike host", "https://notyoutube.com/watch?v=dQw4w9WgXcQ"},
		{"missing id", "https://www.youtube.com/watch"},
		{"short id", "https://youtu.be/abc"},
		{"long id", "https://www.youtube.com/watch?v=dQw4w9WgXcQQ"},
		{"bad characters", "https://www.youtube.com/watch?v=dQw4w9WgX!Q"},
		{"channel page", "https://www.youtube.com/@somechannel"},
		{"ftp scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"garbage", "not a url at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVideoRef(tt.url)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrInvalidURL)
		})
	}
}
