// Package sanitizer normalizes user-supplied text before validation and
// storage.
//
// All functions are idempotent and never return errors: invalid input comes
// back as an empty string (phones) or is left for the validator to reject.
//
//   - Phone numbers: E.164, parsed with Taiwan as the default region so that
//     local mobile numbers like 0912-345-678 are accepted.
//   - Names and free text: collapse whitespace, trim.
//   - Identifiers: trim only. Duplicates are preserved so the validator can
//     reject them.
package sanitizer
