// Package pipeline implements the cooperative select-loop pipeline shared
// by the three source variants (spec.md §4.5): capture-to-UVC zero-copy,
// framebuffer-to-UVC paced conversion, and image-to-UVC paced memcpy. The
// Loop type holds the skeleton every variant shares; a Variant supplies
// the per-source "push a frame" and "post-process" steps.
package pipeline
