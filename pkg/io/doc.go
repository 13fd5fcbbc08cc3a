// Package io provides JSON import and export for transition matrices and
// keyboards.
//
// # Matrix Format
//
// A matrix file is a JSON object with a square "counts" array and an
// optional "alphabet" naming the characters each index stands for:
//
//	{
//	  "alphabet": {"name": "abc", "chars": "ABC"},
//	  "counts": [
//	    [0, 3, 1],
//	    [2, 0, 0],
//	    [1, 4, 0]
//	  ]
//	}
//
// counts[a][b] is how often character b directly follows character a.
// Without an alphabet the matrix is unlabelled: it can still be laid out,
// but the result is a grid of indices rather than a keyboard.
//
// # Keyboard Format
//
// Keyboards are written exactly as they are stored, so an exported
// keyboard can be edited by hand and re-imported:
//
//	{
//	  "name": "mine",
//	  "alphabet": "abc",
//	  "keys": [["B", "A"], ["C", ""]],
//	  "cost": 1.93
//	}
//
// # Import and Export
//
// [ReadMatrix] and [ReadKeyboard] decode from any io.Reader; [ImportMatrix]
// and [ImportKeyboard] open a file first. [WriteMatrix], [WriteKeyboard],
// [ExportMatrix] and [ExportKeyboard] are their inverses and write indented
// JSON. A path of "-" means stdin or stdout.
package io
