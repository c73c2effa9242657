// Package archive reads zstd-compressed archives of JSON-lines comment records
//
// Design choices:
//   - Multi-frame zstd streams are decoded as one continuous byte stream.
//   - Lines are framed with a bufio-backed FrameReader rather than bufio.Scanner so that
//     end-of-input is reported as a zero-length read and interrupted reads are retried.
//   - A per-line size cap (32MB default) keeps a corrupt archive from growing one line forever.
//   - The first frame header is sniffed for the declared uncompressed size, used for byte progress.
package archive
