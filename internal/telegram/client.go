// Пакет telegram — HTTP-клиент Telegram Bot API.
//
// Используется единственный метод sendDocument: пересылка контента
// файла в виде document-вложения. Bot API для TeleFile — чёрный ящик:
// клиент не интерпретирует ответ глубже, чем нужно для получения
// file_id пересланного документа.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// DocumentRef — ссылка на пересланный документ из ответа Bot API.
type DocumentRef struct {
	FileID   string
	FileName string
}

// Client — HTTP-клиент Bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New создаёт клиент Bot API.
// baseURL — базовый URL API (https://api.telegram.org; в тестах —
// httptest-сервер). timeout — таймаут на исходящий запрос целиком.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With(slog.String("component", "telegram_client")),
	}
}

// apiResponse — ответ Bot API на sendDocument.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      *struct {
		Document *struct {
			FileID   string `json:"file_id"`
			FileName string `json:"file_name"`
		} `json:"document"`
	} `json:"result"`
}

// SendDocument пересылает контент файла методом sendDocument.
// chatID — получатель (channelId из настроек; пустая строка — не передаётся).
// Возвращает DocumentRef при однозначно успешном ответе; любой
// неуспешный или неполный ответ — ошибка, пересылка считается
// не состоявшейся.
func (c *Client) SendDocument(ctx context.Context, botToken, chatID, filename, mimeType string, data []byte) (*DocumentRef, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if chatID != "" {
		if err := writer.WriteField("chat_id", chatID); err != nil {
			return nil, fmt.Errorf("формирование multipart: %w", err)
		}
	}

	// Свой заголовок part'а, чтобы передать реальный Content-Type файла
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="document"; filename="%s"`, escapeQuotes(filename)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("формирование multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("формирование multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("формирование multipart: %w", err)
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendDocument", c.baseURL, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса sendDocument: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос sendDocument: %w", err)
	}
	defer resp.Body.Close()

	// Тело ограничиваем: ответ sendDocument небольшой
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("чтение ответа sendDocument: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("Bot API вернул %d: %s", resp.StatusCode, snippet(raw))
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("некорректный JSON в ответе Bot API: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("Bot API отклонил запрос: %s", parsed.Description)
	}
	// Двусмысленный успех (нет result.document) — не считаем пересылку
	// состоявшейся: маркер по такому ответу не ставится.
	if parsed.Result == nil || parsed.Result.Document == nil || parsed.Result.Document.FileID == "" {
		return nil, fmt.Errorf("в ответе Bot API отсутствует result.document.file_id")
	}

	c.logger.Debug("Документ переслан",
		slog.String("filename", filename),
		slog.String("tg_file_id", parsed.Result.Document.FileID),
	)

	return &DocumentRef{
		FileID:   parsed.Result.Document.FileID,
		FileName: parsed.Result.Document.FileName,
	}, nil
}

// escapeQuotes экранирует кавычки в имени файла для Content-Disposition.
func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}

// snippet обрезает тело ответа для сообщения об ошибке.
func snippet(raw []byte) string {
	const maxLen = 200
	s := strings.TrimSpace(string(raw))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
