// Package feed turns a podcast RSS document into podcast.Podcast and
// podcast.Episode values.
//
// gofeed does the XML work. The podcast namespace (soundbite, transcript),
// iTunes fields (duration, image, keywords), and Media RSS thumbnails are read
// from its extension maps. Episodes are numbered from the oldest item, and
// manual soundbites from configuration are merged ahead of the feed's own.
package feed
