// SPDX-License-Identifier: MPL-2.0

// Package keys decodes raw terminal input bytes into logical key events.
//
// The Decoder is an explicit state machine: each byte advances the state and
// may complete an Event. Escape sequences that are cut short by the end of
// input degrade to Escape or Unknown instead of blocking.
package keys
