// Package media probes image files for dimensions and format and
// renders thumbnails. Decoding prefers libvips when it has been
// initialized, falling back to pure-Go decoders otherwise.
package media
