// Package tracker streams live trip updates over a websocket.
//
// A Watcher dials the trip channel with the current bearer token and decodes
// JSON frames into Updates on a bounded channel. A rejected handshake gets
// the same single-shot treatment as a rejected HTTP call: one token refresh,
// one redial, then give up.
package tracker
