package align

import "errors"

var (
	// ErrEmptyLyrics means the reference text contains no alignable lines
	// after annotation and blank-line handling.
	ErrEmptyLyrics = errors.New("lyrics contain no alignable lines")

	// ErrEmptyTranscript means zero transcribed words were supplied.
	ErrEmptyTranscript = errors.New("transcript contains no words")

	// ErrAlignmentFailed means the aligner matched zero reference words.
	// Align recovers from it by spreading the lyrics uniformly over the
	// audio and flagging the result; it is returned only by lower stages.
	ErrAlignmentFailed = errors.New("no reference word matched the transcript")
)
