// Package sqlite provides the console persistence adapter backed by SQLite.
//
// The store owns three tables: player_registrations (seeded out of band by
// the RFID registration tooling), game_plays (append-only score history),
// and player_bests (one row per player/game/level triple, best score only).
package sqlite
