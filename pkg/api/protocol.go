package api

import (
	"encoding/json"
	"fmt"
)

// Version - версия протокола привязки к среде.
const Version = "1.0"

// Типы сообщений.
const (
	TypeHello   = "HELLO"
	TypeEpisode = "EPISODE"
	TypeObs     = "OBS"
	TypeAct     = "ACT"
	TypeEnd     = "END"
)

// --- КЛИЕНТ -> СРЕДА ---

// HelloMsg открывает сессию и перечисляет агентов, которыми управляет процесс.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Client — строка вида "cogsguard-agent/<build>".
	Client string `json:"client"`
	Agents []int  `json:"agents"`
}

// ActMsg - ответ на OBS: ровно одно действие на агента.
type ActMsg struct {
	Type      string        `json:"type"`
	EpisodeID string        `json:"episode_id"`
	Tick      int           `json:"tick"`
	Actions   []AgentAction `json:"actions"`
}

// AgentAction - id действия из таблицы action_names эпизода.
type AgentAction struct {
	AgentID  int `json:"agent_id"`
	ActionID int `json:"action_id"`
}

// --- СРЕДА -> КЛИЕНТ ---

// EpisodeMsg - конфигурация эпизода. Неизменна до END.
type EpisodeMsg struct {
	Type        string        `json:"type"`
	EpisodeID   string        `json:"episode_id"`
	NumAgents   int           `json:"num_agents"`
	ObsRadius   int           `json:"obs_radius"`
	MaxTokens   int           `json:"max_tokens"`
	Features    []FeatureSpec `json:"features"`
	Tags        []string      `json:"tags"`
	ActionNames []string      `json:"action_names"`
	VibeNames   []string      `json:"vibe_names,omitempty"`
	Collectives *Collectives  `json:"collectives,omitempty"`
	Seed        int64         `json:"seed,omitempty"`
}

// FeatureSpec описывает один признак наблюдения.
type FeatureSpec struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Normalization int    `json:"normalization,omitempty"`
}

// Collectives - id коллективов своей команды и противника.
type Collectives struct {
	Cogs  int `json:"cogs"`
	Clips int `json:"clips"`
}

// ObsMsg - наблюдения всех агентов процесса за один тик.
type ObsMsg struct {
	Type      string     `json:"type"`
	EpisodeID string     `json:"episode_id"`
	Tick      int        `json:"tick"`
	Agents    []AgentObs `json:"agents"`
}

// AgentObs - буфер токенов одного агента. В JSON токены идут строкой base64.
type AgentObs struct {
	AgentID int    `json:"agent_id"`
	Tokens  []byte `json:"tokens"`
	// Team — общий пул команды, если среда его сообщает.
	Team map[string]int `json:"team,omitempty"`
}

// EndMsg завершает эпизод.
type EndMsg struct {
	Type      string `json:"type"`
	EpisodeID string `json:"episode_id"`
	Reason    string `json:"reason,omitempty"`
}

// Base - общее поле всех сообщений.
type Base struct {
	Type string `json:"type"`
}

// DecodeBase читает только тип сообщения.
func DecodeBase(raw []byte) (Base, error) {
	var b Base
	if err := json.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("decode message type: %w", err)
	}
	return b, nil
}
