// Package slides holds the seven domain modules the engine cycles through.
//
// Each module bundles a render data type, a decoder for provider payloads, a
// renderer and a ticker formatter. Renderers draw into a surface.Surface and
// never fail: missing or malformed data degrades to explicit NO DATA
// placeholders.
//
// Timing state lives in a [Reveal] owned by each renderer instance and keyed
// by slide ID. The engine calls Reset whenever a slide becomes active; the
// next Render captures a fresh first-seen time from the frame.
package slides
