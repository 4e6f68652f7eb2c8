// Package config defines the format-agnostic run model for the
// application, along with the Loader interface implemented by concrete
// configuration front ends such as the HCL loader.
//
// The config.Model is the single source of truth for the dispatch
// driver: it carries the one offload decision a process executes.
package config
