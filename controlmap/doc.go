// Package controlmap implements the bidirectional mapping between UVC
// camera-terminal/processing-unit controls and the capture device's V4L2
// controls (spec.md §3 ControlMapping, §4.3 Control mapping).
//
// A Table is built once at source-discovery time from a static list of
// known (unit, UVC control code) <-> (capture control id) pairs, then
// populated with live ranges by Discover. Host-issued writes go through
// Apply, which rescales the host-visible zero-based value back into the
// capture device's native range and implements the red/blue-balance
// mirror special case.
package controlmap
