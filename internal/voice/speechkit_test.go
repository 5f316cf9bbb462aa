package voice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSpeechKit(t *testing.T, handler http.HandlerFunc) *SpeechKit {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sk := NewSpeechKit("test-key", "test-folder", zap.NewNop())
	sk.sttURL = srv.URL
	sk.ttsURL = srv.URL
	return sk
}

func TestRecognize(t *testing.T) {
	sk := testSpeechKit(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Api-Key test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-folder", r.URL.Query().Get("folderId"))
		assert.Equal(t, "oggopus", r.URL.Query().Get("format"))
		assert.Equal(t, "ru-RU", r.URL.Query().Get("lang"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("fake-ogg"), body)

		io.WriteString(w, "result=запишите меня к кардиологу\n")
	})

	text, err := sk.Recognize(context.Background(), []byte("fake-ogg"))
	require.NoError(t, err)
	assert.Equal(t, "запишите меня к кардиологу", text)
}

func TestRecognizeEmptyResult(t *testing.T) {
	sk := testSpeechKit(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "some=other\n")
	})

	text, err := sk.Recognize(context.Background(), []byte("fake-ogg"))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRecognizeServerError(t *testing.T) {
	sk := testSpeechKit(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := sk.Recognize(context.Background(), []byte("fake-ogg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSynthesize(t *testing.T) {
	sk := testSpeechKit(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "добрый день", r.PostForm.Get("text"))
		assert.Equal(t, "ermil", r.PostForm.Get("voice"))
		assert.Equal(t, "oggopus", r.PostForm.Get("format"))

		w.Write([]byte("ogg-bytes"))
	})

	audio, err := sk.Synthesize(context.Background(), "добрый день")
	require.NoError(t, err)
	assert.Equal(t, []byte("ogg-bytes"), audio)
}

func TestNotConfigured(t *testing.T) {
	sk := NewSpeechKit("", "", zap.NewNop())
	assert.False(t, sk.Enabled())

	_, err := sk.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = sk.Synthesize(context.Background(), "текст")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
