package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultSTTURL = "https://stt.api.cloud.yandex.net/speech/v1/stt:recognize"
	defaultTTSURL = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

	requestTimeout = 60 * time.Second
)

// ErrNotConfigured ключ SpeechKit не задан, голосовые функции выключены
var ErrNotConfigured = errors.New("speechkit is not configured")

// SpeechKit клиент Yandex SpeechKit: распознавание и синтез речи.
// Формат всегда oggopus, язык ru-RU.
type SpeechKit struct {
	apiKey   string
	folderID string
	sttURL   string
	ttsURL   string
	client   *http.Client
	logger   *zap.Logger
}

func NewSpeechKit(apiKey, folderID string, logger *zap.Logger) *SpeechKit {
	return &SpeechKit{
		apiKey:   apiKey,
		folderID: folderID,
		sttURL:   defaultSTTURL,
		ttsURL:   defaultTTSURL,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Enabled проверяет, настроен ли SpeechKit
func (s *SpeechKit) Enabled() bool {
	return s.apiKey != "" && s.folderID != ""
}

// Recognize распознаёт голосовое сообщение (ogg/opus) в текст.
// Пустая строка без ошибки - речь не распознана.
func (s *SpeechKit) Recognize(ctx context.Context, ogg []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}

	params := url.Values{
		"folderId":        {s.folderID},
		"lang":            {"ru-RU"},
		"format":          {"oggopus"},
		"profanityFilter": {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sttURL+"?"+params.Encode(), bytes.NewReader(ogg))
	if err != nil {
		return "", fmt.Errorf("build stt request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read stt response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// Ответ приходит строками вида key=value, текст лежит в result=
	for _, line := range strings.Split(string(body), "\n") {
		if after, ok := strings.CutPrefix(line, "result="); ok {
			return strings.TrimSpace(after), nil
		}
	}

	return "", nil
}

// Synthesize озвучивает текст голосом "ermil", возвращает ogg/opus
func (s *SpeechKit) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}

	form := url.Values{
		"text":     {text},
		"lang":     {"ru-RU"},
		"voice":    {"ermil"},
		"emotion":  {"neutral"},
		"speed":    {"1.0"},
		"format":   {"oggopus"},
		"folderId": {s.folderID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ttsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Authorization", "Api-Key "+s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
