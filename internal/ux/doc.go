// Package ux manages user-facing display preferences for shopchat.
//
// Settings are explicit values threaded to every view that renders; there is
// no process-wide appearance toggle. The manager persists them to
// .shopchat/preferences.json and can be reloaded when the file changes on disk.
package ux
