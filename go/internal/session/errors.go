// Package session holds what the game sessions share.
package session

import "errors"

var (
	ErrClosed         = errors.New("session closed")
	ErrNotPlaying     = errors.New("round is not accepting input")
	ErrNotAnswered    = errors.New("round has not been answered")
	ErrUnknownOption  = errors.New("answer is not one of the options")
	ErrNoClip         = errors.New("game has no audio clip")
	ErrClipNotReady   = errors.New("clip is not ready to play")
	ErrClipPlayed     = errors.New("clip already played this round")
	ErrSongNotFound   = errors.New("song not found")
	ErrNoSongChosen   = errors.New("no song chosen")
	ErrInvalidCommand = errors.New("command not valid in current phase")
)
