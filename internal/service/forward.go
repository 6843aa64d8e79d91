// forward.go — идемпотентная пересылка файла в Telegram.
//
// Состояния файла: Unforwarded -> Forwarding -> Forwarded.
// Forwarding не персистится (это in-flight вызов): падение процесса
// посреди вызова оставляет файл Unforwarded, повтор безопасен.
// Маркер telegram ставится не более одного раза и никогда
// не перезаписывается повторной пересылкой.
package service

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/bigkaa/telefile/internal/api/middleware"
	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/telegram"
)

// ForwardService — сервис пересылки файлов в Telegram.
type ForwardService struct {
	stores *Stores
	tg     *telegram.Client
	logger *slog.Logger
}

// NewForwardService создаёт сервис пересылки.
func NewForwardService(stores *Stores, tg *telegram.Client, logger *slog.Logger) *ForwardService {
	return &ForwardService{
		stores: stores,
		tg:     tg,
		logger: logger.With(slog.String("component", "forward_service")),
	}
}

// Forward пересылает контент файла в Telegram и ставит маркер.
//
// Контракт:
//   - файл неизвестен — NOT_FOUND;
//   - botToken не настроен — NOT_CONFIGURED;
//   - маркер уже стоит — no-op, текущее состояние, без внешнего вызова;
//   - контента нет — NO_CONTENT;
//   - неуспешный или двусмысленный ответ Bot API — FORWARD_FAILED,
//     файл остаётся непересланным;
//   - успех — атомарный патч маркера и обновлённое состояние.
func (s *ForwardService) Forward(ctx context.Context, fileID string) (*model.File, *Error) {
	file, found, err := s.stores.Files.Get(ctx, fileID)
	if err != nil {
		return nil, errStorage(err)
	}
	if !found {
		return nil, errNotFound("Файл %s не найден", fileID)
	}

	settings, err := s.stores.CurrentSettings(ctx)
	if err != nil {
		return nil, errStorage(err)
	}
	if settings.BotToken == "" {
		return nil, errNotConfigured("Пересылка не настроена: отсутствует botToken")
	}

	// Идемпотентность: повторная пересылка — no-op
	if file.Telegram != nil {
		middleware.ForwardTotal.WithLabelValues("skipped").Inc()
		return &file, nil
	}

	if file.Content == nil {
		return nil, errNoContent("У файла %s нет сохранённого контента", fileID)
	}

	data, decodeErr := base64.StdEncoding.DecodeString(*file.Content)
	if decodeErr != nil {
		return nil, errInternal("Контент файла " + fileID + " повреждён")
	}

	ref, sendErr := s.tg.SendDocument(ctx, settings.BotToken, settings.ChannelID, file.Name, file.Mime, data)
	if sendErr != nil {
		middleware.ForwardTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("Пересылка не удалась",
			slog.String("file_id", fileID),
			slog.String("error", sendErr.Error()),
		)
		return nil, errForward("Пересылка не удалась: %s", sendErr.Error())
	}

	// Ставим маркер атомарно; при гонке двух пересылок выигрывает
	// первый записавший — существующий маркер не перезаписывается.
	updated, err := s.stores.Files.Mutate(ctx, fileID, func(f model.File) model.File {
		if f.Telegram == nil {
			f.Telegram = &model.TelegramRef{FileID: ref.FileID, FileName: ref.FileName}
		}
		return f
	})
	if err != nil {
		return nil, errStorage(err)
	}

	middleware.ForwardTotal.WithLabelValues("success").Inc()
	s.logger.Info("Файл переслан в Telegram",
		slog.String("file_id", fileID),
		slog.String("tg_file_id", ref.FileID),
	)

	return &updated, nil
}
