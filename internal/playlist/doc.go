// Package playlist exports catalog playlists as Windows Media Player (WPL)
// files.
//
// A WPL file is SMIL-flavoured XML: a head with a title and meta elements
// and a body holding one <media src="..."/> per entry inside a <seq>.
// Build takes a SourceFunc so the caller decides what src means, usually
// the on-disk path of the entry's asset.
package playlist
