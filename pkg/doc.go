// Package pkg provides the core libraries for keyforge keyboard layout design.
//
// # Overview
//
// Keyforge counts which characters follow which in a body of text and places
// characters on a grid of keys so that frequent pairs sit close together.
// The pkg directory is organized into three areas:
//
//  1. core - Domain logic ([core/transition] matrices, [core/layout] search,
//     [core/keyboard] labelled results)
//  2. infra - Caching, persistence and configuration ([cache], [store],
//     [config], [observability])
//  3. orchestration - [pipeline] runs layout and rendering with caching;
//     [workspace] manages named alphabets, matrices and keyboards
//
// # Architecture
//
// The typical data flow:
//
//	Text / word list / matrix JSON
//	         ↓
//	  [core/transition] → Matrix
//	         ↓
//	  [core/layout]     → Grid (greedy, then branch and bound)
//	         ↓
//	  [core/keyboard]   → Keyboard
//	         ↓
//	  [render]          → text / JSON / DOT / SVG / PNG / PDF
//
// [pipeline.Runner] caches the layout step by a hash of the matrix and the
// search options, and the render step by a hash of the keyboard and render
// options.
//
// [core/transition]: github.com/matzehuels/keyforge/pkg/core/transition
// [core/layout]: github.com/matzehuels/keyforge/pkg/core/layout
// [core/keyboard]: github.com/matzehuels/keyforge/pkg/core/keyboard
// [cache]: github.com/matzehuels/keyforge/pkg/cache
// [store]: github.com/matzehuels/keyforge/pkg/store
// [config]: github.com/matzehuels/keyforge/pkg/config
// [observability]: github.com/matzehuels/keyforge/pkg/observability
// [pipeline]: github.com/matzehuels/keyforge/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/keyforge/pkg/pipeline#Runner
// [workspace]: github.com/matzehuels/keyforge/pkg/workspace
// [render]: github.com/matzehuels/keyforge/pkg/render
package pkg
