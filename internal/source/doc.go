// Package source loads the text to type from files, directories, stdin,
// URLs or the clipboard. Markdown is flattened to plain prose first, since
// the typewriter reveals characters and markup would be typed literally.
package source
