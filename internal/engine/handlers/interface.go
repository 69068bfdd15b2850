package handlers

import (
	"encoding/json"

	"cogsguard-agent/pkg/api"
)

// Session описывает состояние эпизода, которым управляют хендлеры.
// engine.Service неявно реализует этот интерфейс.
type Session interface {
	StartEpisode(msg api.EpisodeMsg) error
	StepEpisode(msg api.ObsMsg) (api.ActMsg, error)
	EndEpisode(msg api.EndMsg) error
}

// Result - ответ хендлера. Reply == nil: отвечать среде нечего.
type Result struct {
	Reply interface{}
}

// HandlerFunc - это контракт для любого сообщения среды (EPISODE, OBS, END).
type HandlerFunc func(s Session, raw json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
