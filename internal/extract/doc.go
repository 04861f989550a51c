// Package extract turns connection pages into model.FetchResult values.
//
// The parsers work on page markup only, never on a live browser, so they can
// be tested against saved pages. They use golang.org/x/net/html rather than
// regular expressions because the markup served by social sites is large,
// deeply nested and frequently malformed.
//
// Site layouts change often. Every parser anchors on attributes that carry
// meaning (roles, tab order, link targets) instead of generated class names.
package extract
