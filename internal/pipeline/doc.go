// Package pipeline renders the soundbites of one episode.
//
// For every selected soundbite the pipeline resolves the time range, slices
// the episode audio, aligns the transcript, and then composes and encodes
// each enabled format. Soundbites run concurrently up to
// concurrency.soundbites; formats of one soundbite up to concurrency.formats.
//
// Failures are contained at the narrowest scope services.FailureScope
// allows: an encode error fails one format, a bad soundbite declaration
// fails that soundbite, and an audio decode error stops the episode. A
// malformed transcript never fails anything; captions fall back to the
// soundbite title. Dry runs stop after range resolution and alignment.
package pipeline
