// Package journal keeps a local history of connectivity transitions.
//
// Every change reported by the connectivity tracker is written to the
// connectivity_events table (see migrations/) so that operators can see when
// the device dropped off the network even after a restart. The status API
// serves the newest entries; a retention loop prunes old ones.
//
// Recording happens on the tracker's notification path. Storage failures are
// logged and swallowed so that a broken disk never blocks connectivity
// tracking.
package journal
