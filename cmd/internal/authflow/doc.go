// Package authflow orchestrates the multi-step credential flows: staged
// registration with email verification, login, logout, and PIN reset.
//
// Flow state that must survive process restarts (the pending email, the
// registration exchange token) lives in the keyring, so a user can verify a
// code in one invocation and complete registration in the next. The exchange
// token is deleted the moment it is read; it is never usable twice.
package authflow
