// Package gfc scans and extracts instance records from GFC data text.
//
// A GFC document is a STEP-like stream of records of the form
//
//	#12=GFCWALL('name',#3,(1.0,2.0),$);
//
// Two passes are offered. Scan is the cheap whole-text pass that only
// recognises instance headers and is meant to be re-run after every edit.
// InstanceAt is the on-demand pass that finds the matching close paren of a
// single record and splits its parameter list.
//
// All offsets are byte offsets into the text handed in by the caller.
package gfc
