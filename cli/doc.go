// Package cli embeds the purrvt core in a real terminal: it runs a
// shell on a pseudo-terminal, feeds the shell's output through the VT
// core, and renders the resulting grid into the host terminal through
// tcell. It is the reference implementation of the renderer and input
// adapter contracts the core exposes.
package cli
