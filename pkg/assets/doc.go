// Package assets retrieves and decodes the sticker images.
//
// # Locators
//
// A sticker is named by a locator string, parsed with [ParseLocator]:
//
//   - data:image/png;base64,...  embedded bytes
//   - https://host/a.png         fetched over HTTP
//   - ./stickers/a.png           read from disk (file:// also accepted)
//
// # Loading
//
// [Load] fetches and decodes an ordered list of locators concurrently and
// returns the images in input order. The batch is all or nothing: the first
// failure cancels the rest and is returned as a single ASSET_LOAD error. A
// partially loaded list is never returned, because placements address images
// by index.
//
// [Cache] runs one Load in the background and exposes its completion, which
// is how the worker learns that it is serviceable.
//
// # Discovery
//
// [Discover] lists the image files in a directory. With filtering enabled it
// keeps only images whose corners look cut out, using [HasTransparentCorners].
package assets
