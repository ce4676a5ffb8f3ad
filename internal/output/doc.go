// Package output owns everything written next to the rendered videos: file
// naming, caption text, SRT subtitles, and the lock that keeps two runs from
// writing into the same directory at once.
package output
