// Package engine implements the remapping pipeline's hard core: the
// modifier tracker, multipurpose (tap-vs-hold) resolver, suspend buffer,
// combo resolver, and output sequencer, wired together by a
// single-threaded cooperative event loop.
//
// Events flow Source → modmap substitution → modifier tracking /
// multipurpose resolution → suspend buffering → combo resolution →
// output sequencing → Sink. Timer firings (multipurpose decisions,
// suspend commits, submap expiry, diagnostics, emergency eject) are
// serialized with input events on the same loop, so no lock discipline
// is needed beyond the channel boundaries.
package engine
