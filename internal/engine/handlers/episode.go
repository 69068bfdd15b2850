package handlers

import "cogsguard-agent/pkg/api"

// HandleEpisode строит агентов под новый эпизод.
func HandleEpisode(s Session, msg api.EpisodeMsg) (Result, error) {
	if err := s.StartEpisode(msg); err != nil {
		return Result{}, err
	}
	return EmptyResult(), nil
}

// HandleObs выполняет тик и отвечает ACT.
func HandleObs(s Session, msg api.ObsMsg) (Result, error) {
	act, err := s.StepEpisode(msg)
	if err != nil {
		return Result{}, err
	}
	return Result{Reply: act}, nil
}

// HandleEnd сбрасывает состояние эпизода.
func HandleEnd(s Session, msg api.EndMsg) (Result, error) {
	if err := s.EndEpisode(msg); err != nil {
		return Result{}, err
	}
	return EmptyResult(), nil
}
