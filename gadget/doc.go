// Package gadget implements the daemon's Endpoint data model (spec.md §3):
// the capture/framebuffer/image source variants and the UVC output
// endpoint, their buffer rings, and the §4.7 lifecycle coordinator state
// machine that allocates/frees buffer sets and starts/stops streaming in
// response to host-driven UVC events.
//
// Endpoint is a single struct tagged by Kind rather than a class
// hierarchy: exactly one of its Capture/Framebuffer/Image/UvcOutput
// fields is populated, matching the variant the Kind names.
package gadget
