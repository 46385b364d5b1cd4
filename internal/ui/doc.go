// Package ui runs the story browser on the local terminal as a Bubble Tea
// program, for use without an SSH client.
//
// Message flow:
//   - Key presses are translated to navigator keys through a bubbles/key
//     keymap and applied to the navigator. Every change schedules a frame
//     load.
//   - Frames are built by a tea.Cmd on a clone of the navigator, so cache
//     misses never block Update. Each load carries a sequence number and
//     only the latest one is kept; a spinner runs while it is in flight.
//   - When a backend.Warmer is attached, its completed cycles trigger a
//     reload so the list picks up refreshed content.
//
// The frame is formatted by the same renderer the SSH sessions use, without
// the clear-screen prefix since Bubble Tea owns the screen.
package ui
