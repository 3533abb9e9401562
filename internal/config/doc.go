// Package config loads and validates the run configuration.
//
// A configuration is a directory of CUE files unified with the embedded
// #Config schema. The files carry no package clause; every .cue file in the
// directory is part of the configuration. Schema violations are reported with CUE positions; semantic
// problems (unknown fillers, unknown trigger categories, missing filler
// dependencies) are all collected before returning.
package config
