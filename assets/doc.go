// Package assets fetches and prepares the raster images placed in
// documents: theme and chapter images from URLs or files, and QR codes.
//
// A [Fetcher] retrieves raw bytes; [HTTPFetcher] is rate limited, bounded
// in size and checks both the declared content type and the magic bytes of
// what it receives. [Decode] turns PNG, JPEG, GIF, WebP or BMP data into an
// [Image] ready for embedding, downscaling oversized pictures.
//
// Callers treat every error from this package as recoverable: a failed
// image becomes a placeholder of the same footprint.
package assets
